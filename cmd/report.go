package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/giantswarm/agent-testing/internal/runner"
)

func newReportCmd() *cobra.Command {
	var (
		outputDir string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Summarize a completed test run",
		Long: `Print the aggregate statistics for a past run. Without a run id, the
available runs are listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				runs, err := runner.ListRuns(outputDir)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Println("No runs found.")
					return nil
				}
				fmt.Printf("Available runs:\n\n")
				for _, id := range runs {
					fmt.Printf("  - %s\n", id)
				}
				return nil
			}

			record, err := runner.LoadRun(filepath.Join(outputDir, args[0]))
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(record.Summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}

			fmt.Printf("Run: %s\n", record.ID)
			fmt.Printf("Suite: %s\n", record.Suite)
			fmt.Printf("Provider: %s\n", record.Provider)
			fmt.Printf("Passed: %d/%d", record.Summary.Passed, record.Summary.Total)
			if record.Summary.PassRate != nil {
				fmt.Printf(" (%.2f%%)", *record.Summary.PassRate)
			}
			fmt.Println()
			if record.Summary.MeanExecutionTime != nil {
				fmt.Printf("Mean test duration: %.1fs\n", *record.Summary.MeanExecutionTime)
			}
			if record.Summary.TotalCost != nil {
				fmt.Printf("Total provider cost: %.4f\n", *record.Summary.TotalCost)
			}

			if len(record.Summary.Criteria) > 0 {
				fmt.Printf("\nCriteria:\n")
				for _, c := range record.Summary.Criteria {
					fmt.Printf("  %-24s passed %d, failed %d, unknown %d\n",
						c.CriteriaID, c.Passed, c.Failed, c.Unknown)
				}
			}

			failed := false
			for _, r := range record.Results {
				if !r.Success {
					if !failed {
						fmt.Printf("\nFailed tests:\n")
						failed = true
					}
					fmt.Printf("  - %s", r.TestName)
					if r.Error != "" {
						fmt.Printf(" (%s)", r.Error)
					}
					fmt.Println()
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory with test results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}
