package vapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/agent-testing/internal/provider"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// ProviderName is the registry identifier for Vapi.
const ProviderName = "vapi"

// batchConcurrency bounds simultaneous Vapi calls. Vapi enforces no shared
// concurrency ceiling, so a small static limit on our side is enough.
const batchConcurrency = 5

// Provider executes tests as Vapi calls. Calls run directly against the
// API without a retry queue; Vapi queues calls server-side.
type Provider struct {
	client *Client
}

// NewProvider creates a Vapi provider.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Name() string { return ProviderName }

// IsConfigured reports whether an API key is present.
func (p *Provider) IsConfigured() bool {
	return p.client != nil && p.client.APIKey() != ""
}

// ExecuteTest runs one test as a call and polls it to completion. Ordinary
// failures come back as a failed TestResult, never as an error.
func (p *Provider) ExecuteTest(ctx context.Context, test *testsuite.TestDefinition) *testsuite.TestResult {
	start := time.Now()

	if err := provider.ValidateTest(ProviderName, test); err != nil {
		return testsuite.FailedResult(test, nil, err, time.Since(start))
	}

	req := buildCallRequest(test)

	call, err := p.client.RunCall(ctx, req)
	if err != nil {
		slog.Warn("vapi call failed", "test", test.Name, "error", err)
		return testsuite.FailedResult(test, nil, err, time.Since(start))
	}

	return toTestResult(call, test, time.Since(start))
}

// ExecuteBatch runs tests with a bounded worker group.
func (p *Provider) ExecuteBatch(ctx context.Context, tests []*testsuite.TestDefinition) []*testsuite.TestResult {
	return provider.RunBatch(ctx, tests, batchConcurrency, p.ExecuteTest)
}
