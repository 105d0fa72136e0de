// Package fault defines the typed errors that cross the core boundary.
// Every error carries a machine-readable kind discriminator plus structured
// details for logging by the outer layers; the core never formats
// user-facing text itself.
package fault

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable error discriminator.
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindRateLimit        Kind = "rate_limit"
	KindRetriesExhausted Kind = "retries_exhausted"
	KindQueueFull        Kind = "queue_full"
	KindProviderAPI      Kind = "provider_api"
	KindNetwork          Kind = "network"
	KindTranscriptParse  Kind = "transcript_parse"
	KindUnknown          Kind = "unknown"
)

// kinder is implemented by all fault error types.
type kinder interface {
	Kind() Kind
}

// KindOf returns the kind of err, walking wrapped errors. Errors outside the
// taxonomy report KindUnknown.
func KindOf(err error) Kind {
	var k kinder
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindUnknown
}

// IsRateLimit reports whether err is a rate-limit rejection. This is the
// only error class the retry queue retries.
func IsRateLimit(err error) bool {
	return KindOf(err) == KindRateLimit
}

// ConfigurationError indicates a required identifier or credential is
// missing. Raised synchronously before any I/O.
type ConfigurationError struct {
	Provider string
	Message  string
}

func (e *ConfigurationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s configuration error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Kind() Kind { return KindConfiguration }

// RateLimitError indicates the backend rejected a request due to
// concurrency or throughput limits.
type RateLimitError struct {
	StatusCode int
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rate limited (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rate limited (status %d)", e.StatusCode)
}

func (e *RateLimitError) Kind() Kind { return KindRateLimit }

// RetriesExhaustedError is terminal: a rate-limited unit of work spent its
// whole retry budget.
type RetriesExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetriesExhaustedError) Kind() Kind { return KindRetriesExhausted }

func (e *RetriesExhaustedError) Unwrap() error { return e.Last }

// QueueFullError indicates an enqueue was rejected because the queue is at
// capacity. This is local back-pressure, distinct from a remote rate limit,
// and is never retried.
type QueueFullError struct {
	QueueSize int
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("request queue is full (%d pending)", e.QueueSize)
}

func (e *QueueFullError) Kind() Kind { return KindQueueFull }

// ProviderAPIError is any other non-success response from a provider API.
type ProviderAPIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

func (e *ProviderAPIError) Kind() Kind { return KindProviderAPI }

// NetworkError means no response was received at all.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Kind() Kind { return KindNetwork }

func (e *NetworkError) Unwrap() error { return e.Err }

// TranscriptParseError indicates a provider response contained no
// recognizable conversation structure. Never fatal to a batch; the adapter
// degrades to an empty-conversation result.
type TranscriptParseError struct {
	Provider string
}

func (e *TranscriptParseError) Error() string {
	return fmt.Sprintf("%s returned no recognizable conversation structure", e.Provider)
}

func (e *TranscriptParseError) Kind() Kind { return KindTranscriptParse }
