package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/agent-testing/internal/generator"
)

func newGenerateCmd() *cobra.Command {
	var (
		description string
		agentID     string
		focusAreas  []string
		testCount   int
		model       string
		endpoint    string
		apiKey      string
		suitesDir   string
	)

	cmd := &cobra.Command{
		Use:   "generate <suite-name>",
		Short: "Generate a test suite from an agent description",
		Long: `Use an LLM to generate conversation test scenarios for an agent.

The generated suite is written as YAML into the suites directory, from where
'run' can execute it directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if description == "" {
				return fmt.Errorf("--description is required")
			}
			if suitesDir == "" {
				return fmt.Errorf("--suites-dir is required, generated suites have nowhere to go")
			}

			client := newLLMClientFromFlags(endpoint, apiKey)
			g := generator.NewGenerator(client, generator.Config{
				Model:     model,
				TestCount: testCount,
			})

			suite, err := g.Generate(cmd.Context(), generator.Request{
				SuiteName:        args[0],
				AgentID:          agentID,
				AgentDescription: description,
				FocusAreas:       focusAreas,
			})
			if err != nil {
				return err
			}

			path, err := generator.WriteSuite(suite, suitesDir)
			if err != nil {
				return err
			}

			fmt.Printf("Generated %d tests.\n", len(suite.Tests))
			for _, t := range suite.Tests {
				fmt.Printf("  - %s: %s\n", t.Name, t.Description)
			}
			fmt.Printf("\nSuite written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "What the agent does, its capabilities and constraints (required)")
	cmd.Flags().StringVar(&agentID, "agent-id", "", "Agent id to target in the generated tests")
	cmd.Flags().StringSliceVar(&focusAreas, "focus", nil, "Areas the scenarios should focus on (repeatable)")
	cmd.Flags().IntVar(&testCount, "count", 5, "Number of scenarios to generate")
	cmd.Flags().StringVar(&model, "model", "", "Model used for generation")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "LLM API endpoint URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or set OPENAI_API_KEY)")
	cmd.Flags().StringVar(&suitesDir, "suites-dir", "", "External test suites directory (required)")

	return cmd
}
