package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().validate())
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("VIERNES_MAX_CONCURRENCY", "5")
	t.Setenv("VIERNES_MAX_QUEUE_SIZE", "20")
	t.Setenv("VIERNES_MAX_RETRY_ATTEMPTS", "7")
	t.Setenv("VIERNES_RETRY_DELAY_MS", "1500")
	t.Setenv("VIERNES_MAX_RETRY_DELAY_MS", "9000")
	t.Setenv("VIERNES_EXPONENTIAL_BACKOFF", "false")

	cfg, err := ConfigFromEnv("VIERNES")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxConcurrency)
	assert.Equal(t, 20, cfg.MaxQueueSize)
	assert.Equal(t, 7, cfg.MaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, cfg.BaseDelay)
	assert.Equal(t, 9*time.Second, cfg.MaxDelay)
	assert.False(t, cfg.ExponentialBackoff)
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv("QUEUETEST_UNSET")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnvMalformedValue(t *testing.T) {
	t.Setenv("VIERNES_MAX_RETRY_ATTEMPTS", "lots")
	_, err := ConfigFromEnv("VIERNES")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIERNES_MAX_RETRY_ATTEMPTS")
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, "max concurrency"},
		{"zero queue size", func(c *Config) { c.MaxQueueSize = 0 }, "max queue size"},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }, "max attempts"},
		{"attempts over ceiling", func(c *Config) { c.MaxAttempts = 51 }, "ceiling"},
		{"non-positive base delay", func(c *Config) { c.BaseDelay = 0 }, "base delay"},
		{"max delay below base", func(c *Config) { c.MaxDelay = c.BaseDelay - 1 }, "max delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigAttemptCeilingAccepted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAttempts = 50
	assert.NoError(t, cfg.validate())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrency = -1
	_, err := New[int](cfg)
	assert.Error(t, err)
}
