package provider

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// RunBatch executes fn for every test with at most limit running at once
// (limit <= 0 means unbounded). Result i always corresponds to test i even
// though completion order is unconstrained. fn is expected to absorb its own
// failures into the returned TestResult, so sibling failures never abort the
// join.
func RunBatch(ctx context.Context, tests []*testsuite.TestDefinition, limit int, fn func(ctx context.Context, test *testsuite.TestDefinition) *testsuite.TestResult) []*testsuite.TestResult {
	results := make([]*testsuite.TestResult, len(tests))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, test := range tests {
		g.Go(func() error {
			results[i] = fn(gctx, test)
			return nil
		})
	}
	// No goroutine returns an error; Wait only joins.
	_ = g.Wait()

	return results
}
