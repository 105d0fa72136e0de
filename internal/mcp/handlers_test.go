package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/agent-testing/internal/provider"
	"github.com/giantswarm/agent-testing/internal/runner"
	"github.com/giantswarm/agent-testing/internal/server"
	"github.com/giantswarm/agent-testing/internal/testsuite"
	"github.com/giantswarm/agent-testing/internal/testutil"
)

// passProvider answers every test with a passing result.
type passProvider struct{}

func (passProvider) Name() string       { return "pass" }
func (passProvider) IsConfigured() bool { return true }

func (passProvider) ExecuteTest(_ context.Context, test *testsuite.TestDefinition) *testsuite.TestResult {
	return testsuite.NewTestResult(test, nil, nil, true, true, time.Millisecond)
}

func (p passProvider) ExecuteBatch(ctx context.Context, tests []*testsuite.TestDefinition) []*testsuite.TestResult {
	results := make([]*testsuite.TestResult, len(tests))
	for i, test := range tests {
		results[i] = p.ExecuteTest(ctx, test)
	}
	return results
}

func registryWith(p provider.Provider) *provider.Registry {
	r := provider.NewRegistry()
	r.Register(p)
	return r
}

func TestHandleListTestSuites(t *testing.T) {
	sc := &server.ServerContext{
		SuitesDir: "",
	}

	result, err := handleListTestSuites(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	require.NotNil(t, result)

	// At least the embedded billing-support suite must be listed.
	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "billing")

	var suites []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content.Text), &suites))
	require.GreaterOrEqual(t, len(suites), 1)

	s := suites[0]
	assert.Contains(t, s, "name")
	assert.Contains(t, s, "description")
	assert.Contains(t, s, "agent_id")
	assert.Contains(t, s, "test_count")
}

func TestHandleRunTestSuiteMissingRequired(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleRunTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "test_suite is required")
}

func TestHandleRunTestSuiteInvalidSuite(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"test_suite": "nonexistent-suite",
	}

	result, err := handleRunTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "failed to load test suite")
}

func TestHandleRunTestSuiteUnknownProvider(t *testing.T) {
	sc := &server.ServerContext{
		Providers:       registryWith(passProvider{}),
		DefaultProvider: "pass",
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"test_suite": "billing-support",
		"provider":   "does-not-exist",
	}

	result, err := handleRunTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "provider selection failed")
}

func TestHandleRunTestSuiteEndToEnd(t *testing.T) {
	sc := &server.ServerContext{
		Providers:       registryWith(passProvider{}),
		DefaultProvider: "pass",
		OutputDir:       t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"test_suite": "billing-support",
		"agent_id":   "agent-override",
	}

	result, err := handleRunTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(content.Text), &payload))
	assert.Equal(t, "pass", payload["provider"])
	assert.NotEmpty(t, payload["run_id"])

	// The run must be retrievable afterwards.
	getReq := mcp.CallToolRequest{}
	getReq.Params.Arguments = map[string]interface{}{
		"run_id": payload["run_id"],
	}
	getResult, err := handleGetResults(context.Background(), getReq, sc)
	require.NoError(t, err)

	getContent := getResult.Content[0].(mcp.TextContent)
	assert.Contains(t, getContent.Text, "agent-override")
}

func TestHandleGetResultsEmptyDir(t *testing.T) {
	sc := &server.ServerContext{
		OutputDir: t.TempDir(),
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Equal(t, "[]", content.Text)
}

func TestHandleGetResultsNonexistentDir(t *testing.T) {
	sc := &server.ServerContext{
		OutputDir: "/nonexistent/directory",
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Equal(t, "[]", content.Text)
}

func TestHandleGetResultsPathTraversal(t *testing.T) {
	sc := &server.ServerContext{
		OutputDir: t.TempDir(),
	}

	for _, runID := range []string{"..", "../other", "a/b"} {
		request := mcp.CallToolRequest{}
		request.Params.Arguments = map[string]interface{}{
			"run_id": runID,
		}

		result, err := handleGetResults(context.Background(), request, sc)
		require.NoError(t, err)

		content := result.Content[0].(mcp.TextContent)
		assert.Contains(t, content.Text, "not allowed", "run_id %q", runID)
	}
}

func TestHandleGenerateTestSuiteMissingRequired(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"suite_name": "x",
	}

	result, err := handleGenerateTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "agent_description is required")
}

func TestHandleGenerateTestSuiteNoClient(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"suite_name":        "x",
		"agent_description": "desc",
	}

	result, err := handleGenerateTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "no LLM client configured")
}

func TestHandleGenerateTestSuiteEndToEnd(t *testing.T) {
	suitesDir := t.TempDir()
	mock := &testutil.MockLLMClient{DefaultResponse: `[
		{"name": "one", "description": "d", "persona": "You are a tester", "first_message": "hi",
		 "criteria": [{"id": "c1", "name": "n", "prompt": "Agent should respond"}]}
	]`}

	sc := &server.ServerContext{
		LLMClient: mock,
		SuitesDir: suitesDir,
	}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"suite_name":        "generated-suite",
		"agent_description": "Answers billing questions",
		"focus_areas":       "refunds, invoices",
		"test_count":        float64(1),
	}

	result, err := handleGenerateTestSuite(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, "generated-suite")

	suite, err := testsuite.Load("generated-suite", suitesDir)
	require.NoError(t, err)
	assert.Len(t, suite.Tests, 1)
}

// Guard against the manifest loader being bypassed: a run written by the
// runner must round-trip through the results handler.
func TestResultsHandlerUsesRunnerManifest(t *testing.T) {
	outputDir := t.TempDir()
	r := runner.NewRunner(passProvider{}, outputDir)

	suite := &testsuite.TestSuite{
		Name: "manifest check",
		Tests: []*testsuite.TestDefinition{
			{Name: "only test", AgentID: "a1"},
		},
	}
	record, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	sc := &server.ServerContext{OutputDir: outputDir}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{}

	result, err := handleGetResults(context.Background(), request, sc)
	require.NoError(t, err)

	content := result.Content[0].(mcp.TextContent)
	assert.Contains(t, content.Text, record.ID)
}
