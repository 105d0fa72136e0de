// Package runner executes a loaded test suite against one provider and
// persists the results.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/giantswarm/agent-testing/internal/aggregate"
	"github.com/giantswarm/agent-testing/internal/fault"
	"github.com/giantswarm/agent-testing/internal/provider"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// ProgressFunc is called to report progress during test execution.
type ProgressFunc func(testName string, index, total int)

// RunRecord describes one completed run and where its artifacts live.
type RunRecord struct {
	ID        string                  `json:"id"`
	Suite     string                  `json:"suite"`
	Provider  string                  `json:"provider"`
	Timestamp time.Time               `json:"timestamp"`
	Duration  time.Duration           `json:"duration"`
	OutputDir string                  `json:"-"`
	Files     []string                `json:"files"`
	Summary   aggregate.Summary       `json:"summary"`
	Results   []*testsuite.TestResult `json:"-"`
}

// Runner orchestrates the execution of a test suite against a provider.
type Runner struct {
	provider  provider.Provider
	outputDir string
	progress  ProgressFunc
}

// NewRunner creates a runner writing artifacts under outputDir.
func NewRunner(p provider.Provider, outputDir string) *Runner {
	return &Runner{provider: p, outputDir: outputDir}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// Run executes every test in the suite sequentially and writes one JSON
// file per test plus a resultset.json manifest. Tests keep running when
// individual tests fail; only systemic problems abort the run. Context
// cancellation is honored between tests, never mid-test.
func (r *Runner) Run(ctx context.Context, suite *testsuite.TestSuite) (*RunRecord, error) {
	if len(suite.Tests) == 0 {
		return nil, fmt.Errorf("suite %s has no tests", suite.Name)
	}
	if !r.provider.IsConfigured() {
		return nil, &fault.ConfigurationError{
			Provider: r.provider.Name(),
			Message:  "provider is not configured, check its credentials",
		}
	}

	timestamp := time.Now()
	runID := fmt.Sprintf("%s_%s_%s",
		strings.ReplaceAll(suite.Name, " ", "_"),
		timestamp.Format("20060102-150405"),
		uuid.NewString()[:8],
	)

	outputPath := filepath.Join(r.outputDir, runID)
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	record := &RunRecord{
		ID:        runID,
		Suite:     suite.Name,
		Provider:  r.provider.Name(),
		Timestamp: timestamp,
		OutputDir: outputPath,
	}

	slog.Info("running test suite",
		"suite", suite.Name,
		"provider", r.provider.Name(),
		"tests", len(suite.Tests),
	)

	for i, test := range suite.Tests {
		if err := ctx.Err(); err != nil {
			slog.Warn("test run cancelled", "completed", i, "total", len(suite.Tests))
			break
		}

		if r.progress != nil {
			r.progress(test.Name, i+1, len(suite.Tests))
		}

		result := r.provider.ExecuteTest(ctx, test)
		record.Results = append(record.Results, result)

		file, err := writeResultFile(outputPath, test.Name, result)
		if err != nil {
			return nil, err
		}
		record.Files = append(record.Files, file)

		slog.Info("test complete",
			"test", test.Name,
			"success", result.Success,
			"duration", result.ExecutionTime,
		)
	}

	record.Duration = time.Since(timestamp)
	record.Summary = aggregate.Summarize(record.Results)

	if err := writeManifest(outputPath, record); err != nil {
		return nil, fmt.Errorf("failed to write run manifest: %w", err)
	}

	return record, nil
}

func writeResultFile(outputPath, testName string, result *testsuite.TestResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result for %s: %w", testName, err)
	}

	file := filepath.Join(outputPath, sanitizeFilename(testName)+".json")
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result for %s: %w", testName, err)
	}
	return file, nil
}

func writeManifest(outputPath string, record *RunRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outputPath, "resultset.json"), data, 0o644)
}

// sanitizeFilename replaces characters unsafe for filenames with underscores.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	return replacer.Replace(name)
}
