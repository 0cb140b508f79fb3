package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EXCHANGE_RATE_TIMEOUT_SECONDS", "")
	t.Setenv("PENDING_ENROLLMENT_TTL_HOURS", "")

	cfg := FromEnv()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 5, cfg.ExchangeRateTimeout)
	assert.Equal(t, 48, cfg.PendingEnrollmentTTL)
	assert.Equal(t, "https://api.dolarvzla.com/public/exchange-rate", cfg.ExchangeRateAPIURL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("VIDEO_PROCESSING_DELAY_SECONDS", "2")

	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "s3cret", cfg.WebhookSecret)
	assert.Equal(t, 2, cfg.VideoProcessingDelay)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("PENDING_ENROLLMENT_TTL_HOURS", "two days")

	assert.Equal(t, 48, getEnvInt("PENDING_ENROLLMENT_TTL_HOURS", 48))
}
