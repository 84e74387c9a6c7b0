// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.test/api/")
	t.Setenv("STORE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://api.test/api", cfg.API.BaseURL)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Chat.PollEvery())
	assert.Equal(t, 500*time.Millisecond, cfg.Chat.ReconcileAfter())
	assert.Equal(t, float64(1300), cfg.Payment.USDToKRWRate)
	assert.Equal(t, int64(1290), cfg.Payment.ProcessingFeeKRW)
	assert.Equal(t, "http://127.0.0.1:8787", cfg.Payment.CallbackBaseURL())
}

func TestValidate(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("STRIPE_SECRET_KEY", "")
	_, err = Load()
	assert.ErrorContains(t, err, "stripe")

	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("ARCHIVE_SINK", "s3")
	t.Setenv("AWS_S3_BUCKET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "bucket")

	t.Setenv("AWS_S3_BUCKET", "vibing-archive")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "stripe", cfg.Payment.Provider)
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("CHAT_AUTO_POLL", "FALSE")
	assert.False(t, getEnvAsBool("CHAT_AUTO_POLL", true))

	t.Setenv("CHAT_AUTO_POLL", "nonsense")
	assert.True(t, getEnvAsBool("CHAT_AUTO_POLL", true))
}
