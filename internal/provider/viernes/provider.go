package viernes

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/agent-testing/internal/provider"
	"github.com/giantswarm/agent-testing/internal/queue"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// ProviderName is the registry identifier for Viernes.
const ProviderName = "viernes"

// Provider orchestrates test execution against Viernes. All simulation
// calls pass through one retry queue so the organization-wide concurrency
// ceiling is respected across concurrent batches.
type Provider struct {
	client *Client
	queue  *queue.Queue[*SimulationResponse]
}

// NewProvider creates a Viernes provider with its own queue instance.
// Queue tuning comes from the VIERNES_* environment variables.
func NewProvider(client *Client) (*Provider, error) {
	cfg, err := queue.ConfigFromEnv("VIERNES")
	if err != nil {
		return nil, err
	}
	q, err := queue.New[*SimulationResponse](cfg)
	if err != nil {
		return nil, err
	}
	return &Provider{client: client, queue: q}, nil
}

func (p *Provider) Name() string { return ProviderName }

// IsConfigured reports whether an API key is present.
func (p *Provider) IsConfigured() bool {
	return p.client != nil && p.client.APIKey() != ""
}

// Shutdown rejects all queued simulations. Call from the host's signal
// handling; in-flight simulations are left to finish.
func (p *Provider) Shutdown() {
	p.queue.Shutdown()
}

// ExecuteTest runs one test through the queue. Ordinary failures come back
// as a failed TestResult, never as an error.
func (p *Provider) ExecuteTest(ctx context.Context, test *testsuite.TestDefinition) *testsuite.TestResult {
	start := time.Now()

	if err := provider.ValidateTest(ProviderName, test); err != nil {
		return testsuite.FailedResult(test, nil, err, time.Since(start))
	}

	req := buildRequest(test, p.client.OrganizationID())

	resp, err := p.queue.Enqueue(ctx, func(ctx context.Context) (*SimulationResponse, error) {
		return p.client.RunSimulation(ctx, req)
	}, func(msg string) {
		slog.Debug("viernes queue progress", "test", test.Name, "status", msg)
	})
	if err != nil {
		slog.Warn("viernes simulation failed", "test", test.Name, "error", err)
		return testsuite.FailedResult(test, nil, err, time.Since(start))
	}

	return toTestResult(resp, test, time.Since(start))
}

// ExecuteBatch enqueues all tests at once; the queue provides the
// concurrency bound, so the batch itself runs unbounded.
func (p *Provider) ExecuteBatch(ctx context.Context, tests []*testsuite.TestDefinition) []*testsuite.TestResult {
	return provider.RunBatch(ctx, tests, 0, p.ExecuteTest)
}
