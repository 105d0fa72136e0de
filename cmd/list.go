package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

func newListCmd() *cobra.Command {
	var suitesDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available test suites",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := testsuite.List(suitesDir)
			if err != nil {
				return fmt.Errorf("failed to list test suites: %w", err)
			}

			if len(names) == 0 {
				fmt.Println("No test suites found.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SUITE\tAGENT\tTESTS\tDESCRIPTION")
			for _, name := range names {
				suite, err := testsuite.Load(name, suitesDir)
				if err != nil {
					fmt.Fprintf(w, "%s\t-\t-\tload failed: %v\n", name, err)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", suite.Name, suite.AgentID, len(suite.Tests), suite.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External test suites directory")

	return cmd
}
