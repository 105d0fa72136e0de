package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/agent-testing/internal/runner"
	"github.com/giantswarm/agent-testing/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	runID, _ := args["run_id"].(string)

	if runID != "" {
		return getSpecificRun(sc.OutputDir, runID)
	}
	return listRuns(sc.OutputDir)
}

func listRuns(outputDir string) (*mcp.CallToolResult, error) {
	runs, err := runner.ListRuns(outputDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list runs: %v", err)), nil
	}
	if runs == nil {
		return mcp.NewToolResultText("[]"), nil
	}

	type runInfo struct {
		RunID    string `json:"run_id"`
		Suite    string `json:"suite"`
		Provider string `json:"provider"`
		Total    int    `json:"total"`
		Passed   int    `json:"passed"`
	}

	var infos []runInfo
	for _, id := range runs {
		runPath, err := resolveRunPath(outputDir, id)
		if err != nil {
			continue
		}
		record, err := runner.LoadRun(runPath)
		if err != nil {
			continue
		}
		infos = append(infos, runInfo{
			RunID:    record.ID,
			Suite:    record.Suite,
			Provider: record.Provider,
			Total:    record.Summary.Total,
			Passed:   record.Summary.Passed,
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal runs: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getSpecificRun(outputDir, runID string) (*mcp.CallToolResult, error) {
	runPath, err := resolveRunPath(outputDir, runID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := runner.LoadRun(runPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("run %q not found: %v", runID, err)), nil
	}

	payload := map[string]interface{}{
		"run_id":   record.ID,
		"suite":    record.Suite,
		"provider": record.Provider,
		"summary":  record.Summary,
		"results":  record.Results,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
