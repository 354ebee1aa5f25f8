package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cret")
	t.Setenv("POSTGRES_DSN", "postgres://u:p@db:5432/m?sslmode=disable")
	t.Setenv("QUEUE_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://u:p@db:5432/m?sslmode=disable", cfg.Postgres.GetDSN())
	assert.Equal(t, 8, cfg.Queue.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Queue.VisibilityTimeout)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Auth.PresenceTTL)
	assert.Equal(t, "KES", cfg.Payment.Currency)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestPostgresConfig_GetDSNFromParts(t *testing.T) {
	p := PostgresConfig{User: "app", Password: "pw", Host: "pg", Port: 5433, Database: "mk", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:pw@pg:5433/mk?sslmode=disable", p.GetDSN())
}
