package fault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"configuration", &ConfigurationError{Provider: "viernes", Message: "missing API key"}, KindConfiguration},
		{"rate limit", &RateLimitError{StatusCode: 429}, KindRateLimit},
		{"retries exhausted", &RetriesExhaustedError{Attempts: 10}, KindRetriesExhausted},
		{"queue full", &QueueFullError{QueueSize: 50}, KindQueueFull},
		{"provider api", &ProviderAPIError{Provider: "vapi", StatusCode: 500}, KindProviderAPI},
		{"network", &NetworkError{Provider: "vapi", Err: errors.New("timeout")}, KindNetwork},
		{"transcript parse", &TranscriptParseError{Provider: "viernes"}, KindTranscriptParse},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil-adjacent wrapped", fmt.Errorf("context: %w", &RateLimitError{StatusCode: 429}), KindRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsRateLimit(t *testing.T) {
	assert.True(t, IsRateLimit(&RateLimitError{StatusCode: 429}))
	assert.True(t, IsRateLimit(fmt.Errorf("wrapped: %w", &RateLimitError{StatusCode: 429})))
	assert.False(t, IsRateLimit(&ProviderAPIError{StatusCode: 500}))
	assert.False(t, IsRateLimit(errors.New("other")))
}

func TestRetriesExhaustedUnwrap(t *testing.T) {
	inner := &RateLimitError{StatusCode: 429, Message: "concurrency limit exceeded"}
	err := &RetriesExhaustedError{Attempts: 10, Last: inner}

	assert.ErrorContains(t, err, "10 attempts")
	var rl *RateLimitError
	assert.True(t, errors.As(err, &rl))
}
