package queue

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Hard ceiling on the retry budget regardless of configuration.
const maxAttemptsCeiling = 50

// Config controls queue sizing and retry behavior. All fields can be
// overridden through the environment via ConfigFromEnv.
type Config struct {
	// MaxConcurrency caps the number of in-flight units of work.
	MaxConcurrency int

	// MaxQueueSize caps pending (not yet dispatched) units; enqueues past
	// the cap are rejected immediately.
	MaxQueueSize int

	// MaxAttempts is the retry budget for rate-limited units.
	MaxAttempts int

	// BaseDelay is the first retry delay.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration

	// ExponentialBackoff selects growing delays with jitter; when false the
	// delay is constant at BaseDelay.
	ExponentialBackoff bool
}

// DefaultConfig returns the queue defaults used when no environment
// overrides are present.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency:     3,
		MaxQueueSize:       50,
		MaxAttempts:        10,
		BaseDelay:          30 * time.Second,
		MaxDelay:           120 * time.Second,
		ExponentialBackoff: true,
	}
}

// ConfigFromEnv builds a Config from environment variables under the given
// prefix (e.g. prefix "VIERNES" reads VIERNES_MAX_RETRY_ATTEMPTS). Unset
// variables keep their defaults; malformed values are reported as errors
// rather than silently ignored.
func ConfigFromEnv(prefix string) (Config, error) {
	cfg := DefaultConfig()

	read := func(name string, apply func(string) error) error {
		value := os.Getenv(prefix + "_" + name)
		if value == "" {
			return nil
		}
		if err := apply(value); err != nil {
			return fmt.Errorf("invalid %s_%s %q: %w", prefix, name, value, err)
		}
		return nil
	}

	intInto := func(dst *int) func(string) error {
		return func(v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		}
	}
	millisInto := func(dst *time.Duration) func(string) error {
		return func(v string) error {
			ms, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			*dst = time.Duration(ms) * time.Millisecond
			return nil
		}
	}

	for _, e := range []struct {
		name  string
		apply func(string) error
	}{
		{"MAX_CONCURRENCY", intInto(&cfg.MaxConcurrency)},
		{"MAX_QUEUE_SIZE", intInto(&cfg.MaxQueueSize)},
		{"MAX_RETRY_ATTEMPTS", intInto(&cfg.MaxAttempts)},
		{"RETRY_DELAY_MS", millisInto(&cfg.BaseDelay)},
		{"MAX_RETRY_DELAY_MS", millisInto(&cfg.MaxDelay)},
		{"EXPONENTIAL_BACKOFF", func(v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			cfg.ExponentialBackoff = b
			return nil
		}},
	} {
		if err := read(e.name, e.apply); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.MaxQueueSize < 1 {
		return fmt.Errorf("max queue size must be at least 1, got %d", c.MaxQueueSize)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.MaxAttempts > maxAttemptsCeiling {
		return fmt.Errorf("max attempts %d exceeds the ceiling of %d", c.MaxAttempts, maxAttemptsCeiling)
	}
	if c.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive, got %s", c.BaseDelay)
	}
	if c.MaxDelay < c.BaseDelay {
		return fmt.Errorf("max delay %s is below base delay %s", c.MaxDelay, c.BaseDelay)
	}
	return nil
}
