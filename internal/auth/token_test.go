package auth

import (
	"errors"
	"testing"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager("secret")
	id := uuid.New()

	tok, err := m.Issue(id, "client", time.Hour)
	require.NoError(t, err)

	c, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, c.UserID)
	assert.Equal(t, "client", c.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), c.Expiry, 5*time.Second)
}

func TestParse_Rejects(t *testing.T) {
	m := NewTokenManager("secret")

	expired, err := m.Issue(uuid.New(), "client", -time.Minute)
	require.NoError(t, err)
	_, err = m.Parse(expired)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other, _ := NewTokenManager("other").Issue(uuid.New(), "client", time.Hour)
	_, err = m.Parse(other)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	noExp := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, jwtstd.MapClaims{"sub": uuid.NewString()})
	s, _ := noExp.SignedString([]byte("secret"))
	_, err = m.Parse(s)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	badSub := jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, jwtstd.MapClaims{
		"sub": "42", "exp": time.Now().Add(time.Hour).Unix(),
	})
	s, _ = badSub.SignedString([]byte("secret"))
	_, err = m.Parse(s)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = m.Parse("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestEmptyKey(t *testing.T) {
	_, err := NewTokenManager("").Issue(uuid.New(), "client", time.Hour)
	assert.ErrorIs(t, err, ErrNeedKey)
}
