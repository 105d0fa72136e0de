// Package mcp exposes the test framework's operations as MCP tools.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/agent-testing/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listTool := mcp.NewTool("list_test_suites",
		mcp.WithDescription("List available agent test suites with metadata"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListTestSuites(ctx, request, sc)
	})

	runTool := mcp.NewTool("run_test_suite",
		mcp.WithDescription("Execute a test suite against a conversational agent via the selected provider"),
		mcp.WithString("test_suite",
			mcp.Required(),
			mcp.Description("Name of the test suite to run (e.g. 'billing-support')"),
		),
		mcp.WithString("provider",
			mcp.Description("Execution provider: viernes, vapi or chatsim (default: server default)"),
		),
		mcp.WithString("agent_id",
			mcp.Description("Agent id to test (overrides suite config)"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunTestSuite(ctx, request, sc)
	})

	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve results and summaries for past test runs"),
		mcp.WithString("run_id",
			mcp.Description("Specific run ID to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	generateTool := mcp.NewTool("generate_test_suite",
		mcp.WithDescription("Generate a test suite from a natural-language agent description"),
		mcp.WithString("suite_name",
			mcp.Required(),
			mcp.Description("Name for the generated suite"),
		),
		mcp.WithString("agent_description",
			mcp.Required(),
			mcp.Description("What the agent does, its capabilities and constraints"),
		),
		mcp.WithString("agent_id",
			mcp.Description("Agent id to target in the generated tests"),
		),
		mcp.WithString("focus_areas",
			mcp.Description("Comma-separated areas the scenarios should focus on"),
		),
		mcp.WithNumber("test_count",
			mcp.Description("Number of scenarios to generate (default: 5)"),
		),
	)
	s.AddTool(generateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGenerateTestSuite(ctx, request, sc)
	})

	return nil
}
