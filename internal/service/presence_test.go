package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-service/internal/service"
)

func TestPresence_TouchExpiresAndClear(t *testing.T) {
	mr, rdb := newRedis(t)
	p := service.NewRedisPresence(rdb, "presence", time.Minute)
	ctx := context.Background()
	u := uuid.New()

	online, err := p.IsOnline(ctx, u)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, p.Touch(ctx, u))
	online, _ = p.IsOnline(ctx, u)
	assert.True(t, online)

	mr.FastForward(2 * time.Minute)
	online, _ = p.IsOnline(ctx, u)
	assert.False(t, online)

	require.NoError(t, p.Touch(ctx, u))
	require.NoError(t, p.Clear(ctx, u))
	online, _ = p.IsOnline(ctx, u)
	assert.False(t, online)
}
