package chatsim

import (
	"context"
	"log/slog"
	"time"

	"github.com/giantswarm/agent-testing/internal/llm"
	"github.com/giantswarm/agent-testing/internal/provider"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// ProviderName is the registry identifier for chat simulation.
const ProviderName = "chatsim"

// DefaultJudgeModel is used for criterion evaluation unless overridden.
const DefaultJudgeModel = "gpt-4o"

// batchConcurrency bounds simultaneous simulations. Each simulation fans
// out into many chat completions, so this stays small.
const batchConcurrency = 3

// Provider runs tests entirely client-side. The agent under test is an
// OpenAI-compatible chat endpoint addressed by agent id; a second endpoint
// drives the simulated user and the judge.
type Provider struct {
	agentClient llm.Client
	simClient   llm.Client
	judgeModel  string
}

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithJudgeModel overrides the judge model.
func WithJudgeModel(model string) Option {
	return func(p *Provider) { p.judgeModel = model }
}

// NewProvider creates a chat-simulation provider. agentClient talks to the
// agent under test; simClient drives the simulated user and the judge.
func NewProvider(agentClient, simClient llm.Client, opts ...Option) *Provider {
	p := &Provider{
		agentClient: agentClient,
		simClient:   simClient,
		judgeModel:  DefaultJudgeModel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string { return ProviderName }

// IsConfigured reports whether both chat endpoints are wired.
func (p *Provider) IsConfigured() bool {
	return p.agentClient != nil && p.simClient != nil
}

// ExecuteTest generates the conversation and judges it. Ordinary failures
// come back as a failed TestResult, never as an error.
func (p *Provider) ExecuteTest(ctx context.Context, test *testsuite.TestDefinition) *testsuite.TestResult {
	start := time.Now()

	if err := provider.ValidateTest(ProviderName, test); err != nil {
		return testsuite.FailedResult(test, nil, err, time.Since(start))
	}

	turns, err := p.conversation(ctx, test)
	if err != nil {
		slog.Warn("chat simulation failed", "test", test.Name, "error", err)
		return testsuite.FailedResult(test, turns, err, time.Since(start))
	}

	evals := p.judge(ctx, test, turns)

	return testsuite.NewTestResult(test, turns, evals, true, true, time.Since(start))
}

// ExecuteBatch runs tests with a bounded worker group.
func (p *Provider) ExecuteBatch(ctx context.Context, tests []*testsuite.TestDefinition) []*testsuite.TestResult {
	return provider.RunBatch(ctx, tests, batchConcurrency, p.ExecuteTest)
}
