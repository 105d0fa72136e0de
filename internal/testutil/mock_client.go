// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"sync"

	"github.com/giantswarm/agent-testing/internal/llm"
)

// MockLLMClient is a configurable mock for llm.Client used across test
// packages. Matching goes by the content of the last message in the
// request, which is the user-visible "question" in every caller.
type MockLLMClient struct {
	mu sync.Mutex

	// Responses maps the last message content to a canned response.
	Responses map[string]string

	// Script is consumed one entry per call before Responses is consulted.
	// Useful for multi-turn conversations where content varies.
	Script []string

	// DefaultResponse is returned when nothing else matches.
	DefaultResponse string

	// Err, when set, fails every call.
	Err error

	// Calls tracks the number of ChatCompletion invocations.
	Calls int

	// Requests stores every ChatRequest for inspection.
	Requests []llm.ChatRequest
}

func (m *MockLLMClient) ChatCompletion(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.Script) > 0 {
		next := m.Script[0]
		m.Script = m.Script[1:]
		return &llm.ChatResponse{Content: next}, nil
	}

	if len(req.Messages) > 0 {
		last := req.Messages[len(req.Messages)-1].Content
		if resp, ok := m.Responses[last]; ok {
			return &llm.ChatResponse{Content: resp}, nil
		}
	}

	if m.DefaultResponse != "" {
		return &llm.ChatResponse{Content: m.DefaultResponse}, nil
	}

	return &llm.ChatResponse{Content: "mock response"}, nil
}

// LastRequest returns the most recent ChatRequest, or the zero value when
// no call has been made.
func (m *MockLLMClient) LastRequest() llm.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return llm.ChatRequest{}
	}
	return m.Requests[len(m.Requests)-1]
}
