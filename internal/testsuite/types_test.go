package testsuite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleTest() *TestDefinition {
	return &TestDefinition{
		Name:    "greet",
		AgentID: "agent-1",
		SimulatedUser: SimulatedUser{
			Prompt:       "friendly user",
			FirstMessage: "Hi",
			Language:     "en",
		},
		EvaluationCriteria: []EvaluationCriterion{
			{ID: "c1", Name: "Greeting", Prompt: "Did the agent greet back?"},
		},
	}
}

func TestNewTestResultAllSuccess(t *testing.T) {
	evals := map[string]EvaluationResult{
		"c1": {CriteriaID: "c1", Result: OutcomeSuccess, Rationale: "greeted"},
	}

	result := NewTestResult(sampleTest(), nil, evals, true, true, time.Second)

	assert.True(t, result.Success)
	assert.Equal(t, "greet", result.TestName)
	assert.Equal(t, "agent-1", result.AgentID)
}

func TestNewTestResultSingleFailureForcesFalse(t *testing.T) {
	evals := map[string]EvaluationResult{
		"c1": {CriteriaID: "c1", Result: OutcomeSuccess},
		"c2": {CriteriaID: "c2", Result: OutcomeFailure},
		"c3": {CriteriaID: "c3", Result: OutcomeSuccess},
	}

	result := NewTestResult(sampleTest(), nil, evals, true, true, time.Second)
	assert.False(t, result.Success)
}

func TestNewTestResultUnknownForcesFalse(t *testing.T) {
	evals := map[string]EvaluationResult{
		"c1": {CriteriaID: "c1", Result: OutcomeUnknown},
	}

	result := NewTestResult(sampleTest(), nil, evals, true, true, time.Second)
	assert.False(t, result.Success)
}

func TestNewTestResultFailedCallForcesFalse(t *testing.T) {
	evals := map[string]EvaluationResult{
		"c1": {CriteriaID: "c1", Result: OutcomeSuccess},
	}

	result := NewTestResult(sampleTest(), nil, evals, false, true, time.Second)
	assert.False(t, result.Success)
}

func TestNewTestResultFailedChecksForceFalse(t *testing.T) {
	evals := map[string]EvaluationResult{
		"c1": {CriteriaID: "c1", Result: OutcomeSuccess},
	}

	result := NewTestResult(sampleTest(), nil, evals, true, false, time.Second)
	assert.False(t, result.Success)
}

func TestFailedResult(t *testing.T) {
	result := FailedResult(sampleTest(), nil, errors.New("connection refused"), 50*time.Millisecond)

	assert.False(t, result.Success)
	assert.Equal(t, "connection refused", result.Error)
	assert.NotNil(t, result.EvaluationResults)
	assert.Empty(t, result.EvaluationResults)
}
