package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/agent-testing/internal/runner"
	"github.com/giantswarm/agent-testing/internal/server"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

func handleRunTestSuite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	suiteName, ok := args["test_suite"].(string)
	if !ok || suiteName == "" {
		return mcp.NewToolResultError("test_suite is required"), nil
	}

	suite, err := testsuite.Load(suiteName, sc.SuitesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load test suite: %v", err)), nil
	}

	if agentID, ok := args["agent_id"].(string); ok && agentID != "" {
		suite.AgentID = agentID
		for _, t := range suite.Tests {
			t.AgentID = agentID
		}
	}

	providerName := sc.DefaultProvider
	if name, ok := args["provider"].(string); ok && name != "" {
		providerName = name
	}
	p, err := sc.Providers.Get(providerName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("provider selection failed: %v", err)), nil
	}

	r := runner.NewRunner(p, sc.OutputDir)
	record, err := r.Run(ctx, suite)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("test run failed: %v", err)), nil
	}

	files := make([]string, 0, len(record.Files))
	for _, f := range record.Files {
		files = append(files, filepath.Base(f))
	}

	summary := map[string]interface{}{
		"run_id":   record.ID,
		"suite":    record.Suite,
		"provider": record.Provider,
		"duration": record.Duration.String(),
		"summary":  record.Summary,
		"files":    files,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
