// Package viernes implements the Viernes simulation backend: an API that
// runs the whole simulated conversation server-side and returns a flat text
// transcript plus positionally ordered judge verdicts. Viernes enforces a
// global concurrency ceiling per organization, so all requests go through a
// shared retry queue.
package viernes

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

const defaultBaseURL = "https://api.viernes.app"

// SimulationRequest is the Viernes wire request for one simulation run.
type SimulationRequest struct {
	AgentID        string           `json:"agent_id"`
	OrganizationID string           `json:"organization_id,omitempty"`
	Simulation     SimulationConfig `json:"simulation"`
	Questions      []JudgeQuestion  `json:"questions"`
}

// SimulationConfig drives the simulated user.
type SimulationConfig struct {
	PersonaPrompt string  `json:"persona_prompt"`
	FirstMessage  string  `json:"first_message"`
	Language      string  `json:"language,omitempty"`
	Temperature   float64 `json:"temperature"`
	MaxTokens     int     `json:"max_tokens"`
	Model         string  `json:"model,omitempty"`
}

// JudgeQuestion is one yes/no question the Viernes judge evaluates at the
// end of the simulation. Viernes does not echo question identifiers back;
// verdicts come back in request order.
type JudgeQuestion struct {
	Name     string `json:"name"`
	Question string `json:"question"`
}

// SimulationResponse is the Viernes wire response.
type SimulationResponse struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"`
	CallSuccessful bool           `json:"call_successful"`
	Transcript     string         `json:"transcript"`
	Evaluations    []JudgeVerdict `json:"evaluations"`
}

// JudgeVerdict is one judged question, in request order.
type JudgeVerdict struct {
	Question  string `json:"question"`
	Passed    bool   `json:"passed"`
	Rationale string `json:"rationale"`
}

// Client is a thin HTTP wrapper around the Viernes simulation API. It makes
// exactly one attempt per call; retry policy lives in the queue above it.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	organizationID string
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithOrganizationID sets the organization attached to every request.
func WithOrganizationID(id string) ClientOption {
	return func(c *Client) { c.organizationID = id }
}

// WithHTTPClient replaces the underlying HTTP client (e.g. to change the
// per-request timeout).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Viernes API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIKey reports whether the client has a key configured.
func (c *Client) APIKey() string { return c.apiKey }

// OrganizationID returns the configured organization id.
func (c *Client) OrganizationID() string { return c.organizationID }

// RunSimulation starts a simulation and blocks until Viernes reports a
// terminal status. Rate-limit rejections come back as fault.RateLimitError
// so the queue can retry them; everything else is terminal.
func (c *Client) RunSimulation(ctx context.Context, req *SimulationRequest) (*SimulationResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode simulation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/simulations/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build simulation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &fault.NetworkError{Provider: "viernes", Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &fault.NetworkError{Provider: "viernes", Err: err}
	}

	if isRateLimited(resp.StatusCode, payload) {
		return nil, &fault.RateLimitError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(payload))}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &fault.ProviderAPIError{Provider: "viernes", StatusCode: resp.StatusCode, Body: snippet(payload)}
	}

	var simResp SimulationResponse
	if err := json.Unmarshal(payload, &simResp); err != nil {
		return nil, &fault.ProviderAPIError{Provider: "viernes", StatusCode: resp.StatusCode, Body: "unparseable response: " + snippet(payload)}
	}
	return &simResp, nil
}

// isRateLimited recognizes both the HTTP 429 status and the error body
// Viernes returns when the organization-wide concurrency ceiling is hit.
// The keyword check only applies to error responses; a successful
// transcript is free to contain the phrase.
func isRateLimited(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status >= 200 && status <= 299 {
		return false
	}
	return strings.Contains(strings.ToLower(string(body)), "concurrency limit exceeded")
}

func snippet(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
