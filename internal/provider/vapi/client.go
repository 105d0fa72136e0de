// Package vapi implements the Vapi backend: calls are created
// asynchronously and polled until they end, and results come back as
// structured message arrays with an analysis block keyed by criterion id.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/giantswarm/agent-testing/internal/fault"
)

const defaultBaseURL = "https://api.vapi.ai"

// CallRequest creates one test call against an assistant.
type CallRequest struct {
	AssistantID        string              `json:"assistantId"`
	AssistantOverrides *AssistantOverrides `json:"assistantOverrides,omitempty"`
	Simulation         SimulationPlan      `json:"simulation"`
	AnalysisPlan       AnalysisPlan        `json:"analysisPlan"`
}

// AssistantOverrides carries per-call assistant settings.
type AssistantOverrides struct {
	FirstMessage   string            `json:"firstMessage,omitempty"`
	VariableValues map[string]string `json:"variableValues,omitempty"`
}

// SimulationPlan configures the simulated caller.
type SimulationPlan struct {
	Persona     string  `json:"persona"`
	Language    string  `json:"language,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature"`
}

// AnalysisPlan asks Vapi to evaluate the finished call against a rubric.
// Unlike Viernes, Vapi echoes rubric ids back in its analysis results.
type AnalysisPlan struct {
	Rubric []RubricItem `json:"successEvaluationRubric"`
}

// RubricItem is one evaluation criterion in the analysis plan.
type RubricItem struct {
	ID       string `json:"id"`
	Criteria string `json:"criteria"`
}

// Call is the Vapi call resource returned by create and get.
type Call struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	EndedReason string    `json:"endedReason,omitempty"`
	Messages    []Message `json:"messages,omitempty"`
	Analysis    *Analysis `json:"analysis,omitempty"`
	Cost        *float64  `json:"cost,omitempty"`
}

// Message is one structured conversation entry. Vapi uses "bot" for the
// agent side.
type Message struct {
	Role    string  `json:"role"`
	Message string  `json:"message"`
	Time    float64 `json:"time,omitempty"`
}

// Analysis holds the post-call evaluation. SuccessEvaluation is a string
// ("true"/"false") in the Vapi schema.
type Analysis struct {
	SuccessEvaluation string           `json:"successEvaluation"`
	Results           []AnalysisResult `json:"evaluationResults,omitempty"`
	StructuredData    map[string]any   `json:"structuredData,omitempty"`
}

// AnalysisResult is one judged rubric item, keyed by the id from the plan.
type AnalysisResult struct {
	ID        string `json:"id"`
	Passed    bool   `json:"passed"`
	Rationale string `json:"rationale,omitempty"`
}

// callEnded is the terminal call status.
const callEnded = "ended"

// Client is a thin HTTP wrapper around the Vapi API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithPollInterval sets how often call status is polled.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *Client) { c.pollInterval = d }
}

// WithPollTimeout caps how long RunCall waits for a call to end.
func WithPollTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.pollTimeout = d }
}

// NewClient creates a Vapi API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      defaultBaseURL,
		apiKey:       apiKey,
		pollInterval: 2 * time.Second,
		pollTimeout:  10 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIKey returns the configured API key.
func (c *Client) APIKey() string { return c.apiKey }

// RunCall creates a call and polls it until it ends or the poll budget is
// spent. The client-level timeout is independent of any retry budget a
// caller may apply on top.
func (c *Client) RunCall(ctx context.Context, req *CallRequest) (*Call, error) {
	call, err := c.CreateCall(ctx, req)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(c.pollTimeout)
	for call.Status != callEnded {
		if time.Now().After(deadline) {
			return nil, &fault.NetworkError{Provider: "vapi", Err: fmt.Errorf("call %s did not end within %s", call.ID, c.pollTimeout)}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		call, err = c.GetCall(ctx, call.ID)
		if err != nil {
			return nil, err
		}
	}
	return call, nil
}

// CreateCall starts a test call.
func (c *Client) CreateCall(ctx context.Context, req *CallRequest) (*Call, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/call", bytes.NewReader(body))
}

// GetCall fetches the current state of a call.
func (c *Client) GetCall(ctx context.Context, id string) (*Call, error) {
	return c.do(ctx, http.MethodGet, "/call/"+id, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*Call, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &fault.NetworkError{Provider: "vapi", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &fault.NetworkError{Provider: "vapi", Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &fault.RateLimitError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &fault.ProviderAPIError{Provider: "vapi", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var call Call
	if err := json.Unmarshal(payload, &call); err != nil {
		return nil, &fault.ProviderAPIError{Provider: "vapi", StatusCode: resp.StatusCode, Body: "unparseable response"}
	}
	return &call, nil
}
