package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MPESA_CONSUMER_KEY", "key")
	t.Setenv("MPESA_CONSUMER_SECRET", "secret")
	t.Setenv("MPESA_SHORT_CODE", "174379")
	t.Setenv("MPESA_PASSKEY", "passkey")
	t.Setenv("MPESA_CALLBACK_BASE_URL", "https://example.com")
	t.Setenv("TMDB_ACCESS_TOKEN", "tmdb-token")
	t.Setenv("JWT_SECRET", "jwt-secret")
}

// Deployments configure secrets through the environment alone, with no
// config.yaml on disk. Load must pick them up.
func TestLoad_EnvOnly(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Mpesa.ConsumerKey)
	assert.Equal(t, "secret", cfg.Mpesa.ConsumerSecret)
	assert.Equal(t, "174379", cfg.Mpesa.ShortCode)
	assert.Equal(t, "passkey", cfg.Mpesa.Passkey)
	assert.Equal(t, "https://example.com", cfg.Mpesa.CallbackBaseURL)
	assert.Equal(t, "tmdb-token", cfg.TMDB.AccessToken)
	assert.Equal(t, "jwt-secret", cfg.JWT.Secret)

	// defaults still apply alongside env overrides
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, float64(1000), cfg.Subscription.PremiumCutoff)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("REDIS_PASSWORD", "redis-pass")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis-pass", cfg.Redis.Password)
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Mpesa.ConsumerKey = "key"
	cfg.JWT.Secret = "jwt-secret"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MPESA_CONSUMER_SECRET")
	assert.Contains(t, err.Error(), "MPESA_SHORT_CODE")
	assert.Contains(t, err.Error(), "MPESA_PASSKEY")
	assert.Contains(t, err.Error(), "MPESA_CALLBACK_BASE_URL")
	assert.Contains(t, err.Error(), "TMDB_ACCESS_TOKEN")
	assert.NotContains(t, err.Error(), "MPESA_CONSUMER_KEY")
	assert.NotContains(t, err.Error(), "JWT_SECRET")
}
