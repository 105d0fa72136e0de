package viernes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

func fastQueueEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VIERNES_RETRY_DELAY_MS", "1")
	t.Setenv("VIERNES_MAX_RETRY_DELAY_MS", "10")
	t.Setenv("VIERNES_MAX_RETRY_ATTEMPTS", "3")
}

func successResponse() SimulationResponse {
	return SimulationResponse{
		ID:             "sim-1",
		Status:         "completed",
		CallSuccessful: true,
		Transcript:     "User: Hi\nAgent: Hello!",
		Evaluations:    []JudgeVerdict{{Passed: true, Rationale: "greeted"}},
	}
}

func greetTest() *testsuite.TestDefinition {
	return &testsuite.TestDefinition{
		Name:    "greet",
		AgentID: "agent-1",
		SimulatedUser: testsuite.SimulatedUser{
			Prompt:       "friendly user",
			FirstMessage: "Hi",
			Language:     "en",
		},
		EvaluationCriteria: []testsuite.EvaluationCriterion{
			{ID: "c1", Name: "Greeting", Prompt: "Did the agent greet back?"},
		},
	}
}

func TestExecuteTestHappyPath(t *testing.T) {
	fastQueueEnv(t)

	var gotRequest SimulationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/simulations/run", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))
		_ = json.NewEncoder(w).Encode(successResponse())
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)
	require.True(t, p.IsConfigured())

	result := p.ExecuteTest(context.Background(), greetTest())

	assert.True(t, result.Success)
	assert.Equal(t, "greet", result.TestName)
	assert.Equal(t, testsuite.OutcomeSuccess, result.EvaluationResults["c1"].Result)
	assert.Len(t, result.Conversation, 2)
	assert.Equal(t, "friendly user", gotRequest.Simulation.PersonaPrompt)
}

func TestExecuteTestRetriesRateLimit(t *testing.T) {
	fastQueueEnv(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": "concurrency limit exceeded"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(successResponse())
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	result := p.ExecuteTest(context.Background(), greetTest())

	assert.True(t, result.Success)
	assert.Equal(t, int32(3), calls.Load())
}

func TestExecuteTestRateLimitPhraseInTranscriptNotRetried(t *testing.T) {
	fastQueueEnv(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		resp := successResponse()
		resp.Transcript = "User: Hi\nAgent: The backend reported concurrency limit exceeded earlier, all good now."
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	result := p.ExecuteTest(context.Background(), greetTest())

	assert.True(t, result.Success)
	assert.Equal(t, int32(1), calls.Load(), "a successful response mentioning the phrase must not be treated as rate limited")
}

func TestExecuteTestExhaustsRetries(t *testing.T) {
	fastQueueEnv(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	result := p.ExecuteTest(context.Background(), greetTest())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "retries exhausted")
	// Initial attempt plus three retries.
	assert.Equal(t, int32(4), calls.Load())
}

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   bool
	}{
		{"429 without body", http.StatusTooManyRequests, "", true},
		{"503 with concurrency message", http.StatusServiceUnavailable, `{"error": "Concurrency limit exceeded"}`, true},
		{"503 without concurrency message", http.StatusServiceUnavailable, "overloaded", false},
		{"200 with phrase in transcript", http.StatusOK, `{"transcript": "concurrency limit exceeded"}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isRateLimited(tc.status, []byte(tc.body)))
		})
	}
}

func TestExecuteTestServerErrorNotRetried(t *testing.T) {
	fastQueueEnv(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("backend exploded"))
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	result := p.ExecuteTest(context.Background(), greetTest())

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "backend exploded")
	assert.Equal(t, int32(1), calls.Load())
}

func TestExecuteTestValidationFailsBeforeIO(t *testing.T) {
	fastQueueEnv(t)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	test := greetTest()
	test.SimulatedUser.FirstMessage = ""
	result := p.ExecuteTest(context.Background(), test)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no first message")
	assert.Equal(t, int32(0), calls.Load(), "no network call may happen on validation failure")
}

func TestExecuteBatchOrderAndIsolation(t *testing.T) {
	fastQueueEnv(t)
	t.Setenv("VIERNES_MAX_CONCURRENCY", "2")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req SimulationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Simulation.FirstMessage == "explode" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(successResponse())
	}))
	defer srv.Close()

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	bad := greetTest()
	bad.Name = "bad"
	bad.SimulatedUser.FirstMessage = "explode"
	tests := []*testsuite.TestDefinition{greetTest(), bad, greetTest()}
	tests[2].Name = "third"

	results := p.ExecuteBatch(context.Background(), tests)

	require.Len(t, results, 3)
	assert.Equal(t, "greet", results[0].TestName)
	assert.Equal(t, "bad", results[1].TestName)
	assert.Equal(t, "third", results[2].TestName)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.True(t, results[2].Success)
}

func TestShutdownRejectsQueuedTests(t *testing.T) {
	fastQueueEnv(t)
	t.Setenv("VIERNES_MAX_CONCURRENCY", "1")

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_ = json.NewEncoder(w).Encode(successResponse())
	}))
	defer srv.Close()
	defer close(release)

	p, err := NewProvider(NewClient("secret", WithBaseURL(srv.URL)))
	require.NoError(t, err)

	first := make(chan *testsuite.TestResult, 1)
	go func() { first <- p.ExecuteTest(context.Background(), greetTest()) }()

	queued := make(chan *testsuite.TestResult, 1)
	go func() { queued <- p.ExecuteTest(context.Background(), greetTest()) }()

	// Wait until one test is in flight and one is queued behind it.
	require.Eventually(t, func() bool {
		return p.queue.ActiveCount() == 1 && p.queue.Size() == 1
	}, time.Second, time.Millisecond)

	p.Shutdown()

	result := <-queued
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "shutting down")

	// The in-flight test still settles once the backend responds.
	release <- struct{}{}
	assert.True(t, (<-first).Success)
}
