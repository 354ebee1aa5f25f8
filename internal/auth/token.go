// Package auth verifies the bearer tokens issued by the accounts service.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNeedKey      = errors.New("token signing key is empty")
	ErrInvalidToken = errors.New("invalid token")
)

type Claims struct {
	UserID uuid.UUID
	Role   string
	Expiry time.Time
}

type TokenManager struct {
	key string
}

func NewTokenManager(key string) *TokenManager {
	return &TokenManager{key: key}
}

// Issue signs an HS256 access token for userID.
func (m *TokenManager) Issue(userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	if m.key == "" {
		return "", ErrNeedKey
	}
	now := time.Now()
	claims := jwtstd.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims).SignedString([]byte(m.key))
}

// Parse validates signature and expiry and extracts the user id.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	if m.key == "" {
		return nil, ErrNeedKey
	}

	token, err := jwtstd.Parse(tokenString, func(token *jwtstd.Token) (any, error) {
		return []byte(m.key), nil
	},
		jwtstd.WithValidMethods([]string{jwtstd.SigningMethodHS256.Alg()}),
		jwtstd.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwtstd.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := mc.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}

	c := &Claims{UserID: id}
	if role, ok := mc["role"].(string); ok {
		c.Role = role
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.Expiry = exp.Time
	}
	return c, nil
}
