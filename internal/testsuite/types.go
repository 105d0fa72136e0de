package testsuite

import "time"

// TestSuite is a loaded collection of test definitions targeting one agent.
// Provider selection is NOT part of the suite -- the provider is chosen at
// runtime by the user or agent.
type TestSuite struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Version     string            `yaml:"version"`
	AgentID     string            `yaml:"agent_id"`
	Tests       []*TestDefinition `yaml:"tests"`
}

// TestDefinition is the provider-agnostic specification of one test.
// It is constructed by the loader (or generator), consumed read-only by a
// single provider invocation, and never mutated after creation.
type TestDefinition struct {
	Name               string                `yaml:"name"`
	Description        string                `yaml:"description"`
	AgentID            string                `yaml:"agent_id"`
	SimulatedUser      SimulatedUser         `yaml:"simulated_user"`
	EvaluationCriteria []EvaluationCriterion `yaml:"evaluation_criteria"`
	DynamicVariables   map[string]string     `yaml:"dynamic_variables,omitempty"`
	Overrides          *ProviderOverrides    `yaml:"overrides,omitempty"`
}

// SimulatedUser describes the persona driving the simulated side of the
// conversation.
type SimulatedUser struct {
	Prompt       string   `yaml:"prompt"`
	FirstMessage string   `yaml:"first_message"`
	Language     string   `yaml:"language"`
	Temperature  *float64 `yaml:"temperature,omitempty"`
	MaxTokens    int      `yaml:"max_tokens,omitempty"`
	Model        string   `yaml:"model,omitempty"`
}

// EvaluationCriterion is one named judge instruction a conversation is
// checked against. IDs must be unique within a test.
type EvaluationCriterion struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

// ProviderOverrides carries optional provider-specific settings that do not
// belong in the portable part of a test definition.
type ProviderOverrides struct {
	OrganizationID string `yaml:"organization_id,omitempty"`
	AssistantID    string `yaml:"assistant_id,omitempty"`
	MaxTurns       int    `yaml:"max_turns,omitempty"`
	Attempts       int    `yaml:"attempts,omitempty"`
}

// Conversation roles.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// ConversationTurn is one utterance. Turn order is significant and is
// preserved end-to-end from execution through reporting.
type ConversationTurn struct {
	Role      string     `json:"role"`
	Message   string     `json:"message"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// ToolCall records a tool invocation made by the agent during a turn.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// Evaluation outcomes. Unknown is reserved for cases where the judging
// mechanism itself failed, distinct from a criterion being judged and
// failing.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeUnknown = "unknown"
)

// EvaluationResult is the judged outcome for a single criterion.
type EvaluationResult struct {
	CriteriaID string `json:"criteria_id"`
	Result     string `json:"result"`
	Rationale  string `json:"rationale"`
}

// TestResult is the unified output of one test execution, identical in shape
// across providers. It is immutable once constructed; build it via
// NewTestResult or FailedResult so the success invariant holds.
type TestResult struct {
	TestName          string                      `json:"test_name"`
	AgentID           string                      `json:"agent_id"`
	Timestamp         time.Time                   `json:"timestamp"`
	Success           bool                        `json:"success"`
	Conversation      []ConversationTurn          `json:"conversation"`
	EvaluationResults map[string]EvaluationResult `json:"evaluation_results"`
	ExecutionTime     time.Duration               `json:"execution_time"`
	ProviderCost      *float64                    `json:"provider_cost,omitempty"`
	Error             string                      `json:"error,omitempty"`
}

// NewTestResult assembles a TestResult and computes Success.
// Success is true iff every evaluation result is a success AND the provider
// reported the overall call as successful AND (when present) all structured
// data checks passed. A single failure or unknown forces Success to false.
func NewTestResult(test *TestDefinition, conversation []ConversationTurn, evals map[string]EvaluationResult, callSucceeded bool, checksPassed bool, elapsed time.Duration) *TestResult {
	success := callSucceeded && checksPassed
	for _, ev := range evals {
		if ev.Result != OutcomeSuccess {
			success = false
			break
		}
	}

	return &TestResult{
		TestName:          test.Name,
		AgentID:           test.AgentID,
		Timestamp:         time.Now(),
		Success:           success,
		Conversation:      conversation,
		EvaluationResults: evals,
		ExecutionTime:     elapsed,
	}
}

// FailedResult builds a TestResult for a test that could not complete.
// Conversation turns gathered before the failure, if any, are preserved.
func FailedResult(test *TestDefinition, conversation []ConversationTurn, err error, elapsed time.Duration) *TestResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &TestResult{
		TestName:          test.Name,
		AgentID:           test.AgentID,
		Timestamp:         time.Now(),
		Success:           false,
		Conversation:      conversation,
		EvaluationResults: map[string]EvaluationResult{},
		ExecutionTime:     elapsed,
		Error:             msg,
	}
}
