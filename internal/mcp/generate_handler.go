package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/agent-testing/internal/generator"
	"github.com/giantswarm/agent-testing/internal/server"
)

func handleGenerateTestSuite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	suiteName, ok := args["suite_name"].(string)
	if !ok || suiteName == "" {
		return mcp.NewToolResultError("suite_name is required"), nil
	}
	description, ok := args["agent_description"].(string)
	if !ok || description == "" {
		return mcp.NewToolResultError("agent_description is required"), nil
	}
	if sc.LLMClient == nil {
		return mcp.NewToolResultError("no LLM client configured for generation"), nil
	}
	if sc.SuitesDir == "" {
		return mcp.NewToolResultError("no external suites directory configured, generated suites have nowhere to go"), nil
	}

	req := generator.Request{
		SuiteName:        suiteName,
		AgentDescription: description,
	}
	if agentID, ok := args["agent_id"].(string); ok {
		req.AgentID = agentID
	}
	if focus, ok := args["focus_areas"].(string); ok && focus != "" {
		for _, area := range strings.Split(focus, ",") {
			if area = strings.TrimSpace(area); area != "" {
				req.FocusAreas = append(req.FocusAreas, area)
			}
		}
	}

	cfg := generator.Config{}
	if count, ok := args["test_count"].(float64); ok {
		cfg.TestCount = int(count)
	}

	g := generator.NewGenerator(sc.LLMClient, cfg)
	suite, err := g.Generate(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	path, err := generator.WriteSuite(suite, sc.SuitesDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write suite: %v", err)), nil
	}

	summary := map[string]interface{}{
		"suite":      suite.Name,
		"test_count": len(suite.Tests),
		"path":       path,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
