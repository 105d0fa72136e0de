// Package provider defines the contract every conversational-agent backend
// implements, plus the registry the CLI and MCP server select backends from.
// Everything provider-specific lives behind this boundary; downstream
// consumers only ever see the unified TestResult shape.
package provider

import (
	"context"
	"sort"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// Provider executes tests against one conversational-agent backend.
type Provider interface {
	// Name returns the provider identifier (e.g. "viernes").
	Name() string

	// IsConfigured reports whether required credentials and identifiers are
	// present. Cheap; callers use it to short-circuit before real calls.
	IsConfigured() bool

	// ExecuteTest runs one test. It never returns an error for ordinary
	// failures: validation, network and provider-API errors all come back
	// as a TestResult with Success=false and the error message attached.
	ExecuteTest(ctx context.Context, test *testsuite.TestDefinition) *testsuite.TestResult

	// ExecuteBatch runs all tests with fault isolation. The returned slice
	// has the same length and order as tests regardless of completion
	// order; one test's failure never prevents the others from completing.
	ExecuteBatch(ctx context.Context, tests []*testsuite.TestDefinition) []*testsuite.TestResult
}

// UnsupportedProviderError is returned when an unknown provider is requested.
type UnsupportedProviderError struct {
	Name string
}

func (e *UnsupportedProviderError) Error() string {
	return "unsupported provider: " + e.Name
}

// Registry holds the configured provider instances for a process.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider under its own name, replacing any previous
// registration.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, &UnsupportedProviderError{Name: name}
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
