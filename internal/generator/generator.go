// Package generator produces test suites from a natural-language agent
// description using an LLM.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giantswarm/agent-testing/internal/llm"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// DefaultModel is used for suite generation unless overridden.
const DefaultModel = "gpt-4o"

// Config holds generation parameters.
type Config struct {
	Model     string
	TestCount int
}

// Request describes the suite to generate.
type Request struct {
	SuiteName        string
	AgentID          string
	AgentDescription string
	FocusAreas       []string
}

// Generator turns agent descriptions into runnable test suites.
type Generator struct {
	client llm.Client
	config Config
}

// NewGenerator creates a Generator.
func NewGenerator(client llm.Client, config Config) *Generator {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.TestCount <= 0 {
		config.TestCount = 5
	}
	return &Generator{client: client, config: config}
}

// Generate asks the model for test scenarios and assembles a validated
// suite. The model responds with JSON; markdown fences around it are
// tolerated since most chat models add them regardless of instructions.
func (g *Generator) Generate(ctx context.Context, req Request) (*testsuite.TestSuite, error) {
	if req.AgentDescription == "" {
		return nil, fmt.Errorf("agent description is required")
	}

	prompt := buildPrompt(req, g.config.TestCount)

	slog.Info("generating test suite",
		"suite", req.SuiteName,
		"model", g.config.Model,
		"tests", g.config.TestCount,
	)

	resp, err := g.client.ChatCompletion(ctx, llm.ChatRequest{
		Model: g.config.Model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: generationSystemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: llm.Float64Ptr(0.7),
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	scenarios, err := parseScenarios(resp.Content)
	if err != nil {
		return nil, err
	}

	suite := &testsuite.TestSuite{
		Name:    req.SuiteName,
		Version: "1",
		AgentID: req.AgentID,
		Tests:   make([]*testsuite.TestDefinition, 0, len(scenarios)),
	}
	for _, sc := range scenarios {
		suite.Tests = append(suite.Tests, sc.toDefinition(req.AgentID))
	}

	if err := testsuite.Validate(suite); err != nil {
		return nil, fmt.Errorf("generated suite is invalid: %w", err)
	}
	return suite, nil
}

// WriteSuite marshals the suite as YAML into dir/<name>/suite.yaml, the
// layout the loader expects.
func WriteSuite(suite *testsuite.TestSuite, dir string) (string, error) {
	suiteDir := filepath.Join(dir, strings.ReplaceAll(suite.Name, " ", "-"))
	if err := os.MkdirAll(suiteDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create suite directory: %w", err)
	}

	data, err := yaml.Marshal(suite)
	if err != nil {
		return "", fmt.Errorf("failed to marshal suite: %w", err)
	}

	path := filepath.Join(suiteDir, "suite.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write suite: %w", err)
	}
	return path, nil
}

// scenario is the JSON shape the model is asked to produce. It is kept
// separate from TestDefinition so changes to the YAML schema never silently
// change the generation contract.
type scenario struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Persona      string `json:"persona"`
	FirstMessage string `json:"first_message"`
	Criteria     []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Prompt string `json:"prompt"`
	} `json:"criteria"`
}

func (sc scenario) toDefinition(agentID string) *testsuite.TestDefinition {
	def := &testsuite.TestDefinition{
		Name:        sc.Name,
		Description: sc.Description,
		AgentID:     agentID,
		SimulatedUser: testsuite.SimulatedUser{
			Prompt:       sc.Persona,
			FirstMessage: sc.FirstMessage,
		},
	}
	for _, c := range sc.Criteria {
		def.EvaluationCriteria = append(def.EvaluationCriteria, testsuite.EvaluationCriterion{
			ID:     c.ID,
			Name:   c.Name,
			Prompt: c.Prompt,
		})
	}
	return def
}

// parseScenarios extracts the scenario array from model output, stripping
// a surrounding markdown code fence if present.
func parseScenarios(text string) ([]scenario, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	var scenarios []scenario
	if err := json.Unmarshal([]byte(text), &scenarios); err != nil {
		return nil, fmt.Errorf("failed to parse generated scenarios: %w", err)
	}
	if len(scenarios) == 0 {
		return nil, fmt.Errorf("model produced no scenarios")
	}
	return scenarios, nil
}
