package config

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// unset clears keys for the duration of the test.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "") // registers the restore
		require.NoError(t, os.Unsetenv(k))
	}
}

var allKeys = []string{
	"APP_ENV", "APP_PORT", "DB_DSN", "JWT_SECRET", "TOKEN_TTL", "BCRYPT_COST",
	"RABBITMQ_URL", "EVENTS_ENABLED", "ALLOW_REVIEW_SEEDING", "LOG_LEVEL", "LOG_DIR",
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	unset(t, allKeys...)

	cfg, err := Load(quiet())
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.False(t, cfg.EventsEnabled)
	assert.False(t, cfg.AllowReviewSeeding)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	unset(t, allKeys...)
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", strings.Repeat("k", 40))
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("ALLOW_REVIEW_SEEDING", "true")

	cfg, err := Load(quiet())
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.True(t, cfg.AllowReviewSeeding)
}

func TestLoadRejectsFallbackSecretInProduction(t *testing.T) {
	t.Chdir(t.TempDir())
	unset(t, allKeys...)
	t.Setenv("APP_ENV", "production")

	_, err := Load(quiet())
	require.EqualError(t, err, "JWT_SECRET must be set in production")
}

func TestValidate(t *testing.T) {
	base := Config{Env: "development", Port: "5000", DBDSN: "dsn", JWTSecret: "short", TokenTTL: time.Hour}
	require.NoError(t, base.Validate())

	prod := base
	prod.Env = "production"
	require.Error(t, prod.Validate())
	prod.JWTSecret = strings.Repeat("s", MinProductionSecretLen)
	require.NoError(t, prod.Validate())

	noTTL := base
	noTTL.TokenTTL = 0
	require.Error(t, noTTL.Validate())

	noDSN := base
	noDSN.DBDSN = ""
	require.Error(t, noDSN.Validate())
}
