package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("accept invite: %w", NotFound("invite not found"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestUpstream_MessageEmbedsCause(t *testing.T) {
	err := Upstream("failed to initiate payment", errors.New("gateway said no"))
	assert.Equal(t, "failed to initiate payment: gateway said no", err.Error())
}
