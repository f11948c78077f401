package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	for _, key := range []string{"APP_ENV", "DB_DRIVER", "DATABASE_URL", "DB_NAME", "JWT_ACCESS_TTL", "JWT_REFRESH_TTL", "BCRYPT_COST"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTRefreshTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.IsProduction())
	assert.Contains(t, cfg.DSN(), "dbname=workboard")
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestLoad_SameSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setSecrets(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("S3_USE_PATH_STYLE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessTTL)
	assert.True(t, cfg.S3UsePathStyle)
	assert.Contains(t, cfg.DSN(), "@tcp(")
}

func TestLoad_InvalidDriver(t *testing.T) {
	setSecrets(t)
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}
