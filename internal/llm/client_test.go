package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletionAgainstStubServer(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "hello back"}}]
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithModel("test-model"),
		WithTemperature(0.7),
	)

	resp, err := client.ChatCompletion(t.Context(), ChatRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "be nice"},
			{Role: RoleUser, Content: "hi"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", resp.Content)

	// Client-level defaults are applied when the request has none.
	assert.Equal(t, "test-model", captured["model"])
	assert.InDelta(t, 0.7, captured["temperature"], 0.001)

	msgs := captured["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestChatCompletionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL))
	_, err := client.ChatCompletion(t.Context(), ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestExplicitZeroTemperatureReachesTheWire(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL))
	_, err := client.ChatCompletion(t.Context(), ChatRequest{
		Model:       "test-model",
		Temperature: Float64Ptr(0),
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	// A requested temperature of exactly 0 must not be dropped in favor
	// of the provider default.
	temp, ok := captured["temperature"].(float64)
	require.True(t, ok, "temperature missing from request body")
	assert.InDelta(t, 0, temp, 1e-6)
}

func TestPerRequestSettingsTakePrecedence(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(WithBaseURL(srv.URL), WithModel("default-model"))
	_, err := client.ChatCompletion(t.Context(), ChatRequest{
		Model:       "override-model",
		Temperature: Float64Ptr(0.2),
		MaxTokens:   64,
		Messages:    []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "override-model", captured["model"])
	assert.InDelta(t, 0.2, captured["temperature"], 0.001)
	assert.InDelta(t, 64, captured["max_tokens"], 0.001)
}
