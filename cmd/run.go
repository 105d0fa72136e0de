package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/agent-testing/internal/runner"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

func newRunCmd() *cobra.Command {
	var (
		providerName string
		agentID      string
		outputDir    string
		suitesDir    string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <test-suite>",
		Short: "Run a test suite against a conversational agent",
		Long: `Execute every test in a suite through the selected provider and record the results.

Each test is written to the output directory as a JSON file alongside a
resultset.json manifest with aggregate statistics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			suite, err := testsuite.Load(args[0], suitesDir)
			if err != nil {
				return fmt.Errorf("failed to load test suite: %w", err)
			}
			if agentID != "" {
				suite.AgentID = agentID
				for _, t := range suite.Tests {
					t.AgentID = agentID
				}
			}

			registry, shutdown, err := newProviderRegistry()
			if err != nil {
				return err
			}
			defer shutdown()

			p, err := registry.Get(providerName)
			if err != nil {
				return err
			}

			r := runner.NewRunner(p, outputDir)
			r.SetProgressFunc(func(testName string, idx, total int) {
				fmt.Printf("\r  [%d/%d] %s...", idx, total, testName)
			})

			fmt.Printf("Test Suite: %s\n", suite.Name)
			fmt.Printf("Description: %s\n", suite.Description)
			fmt.Printf("Provider: %s\n", p.Name())
			fmt.Printf("Tests: %d\n\n", len(suite.Tests))

			record, err := r.Run(ctx, suite)
			if err != nil {
				return err
			}

			fmt.Printf("\n\nTest suite completed.\n")
			fmt.Printf("Run ID: %s\n", record.ID)
			fmt.Printf("Duration: %s\n", record.Duration)
			fmt.Printf("Passed: %d/%d", record.Summary.Passed, record.Summary.Total)
			if record.Summary.PassRate != nil {
				fmt.Printf(" (%.2f%%)", *record.Summary.PassRate)
			}
			fmt.Printf("\nResults: %s\n", record.OutputDir)

			slog.Info("test run complete", "run_id", record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", defaultProviderName, "Execution provider: viernes, vapi or chatsim")
	cmd.Flags().StringVar(&agentID, "agent-id", "", "Agent id to test (overrides suite config)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for test results")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External test suites directory")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the test run (e.g. 30m, 1h). 0 means no timeout")

	return cmd
}
