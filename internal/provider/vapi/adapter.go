package vapi

import (
	"strings"
	"time"

	"github.com/giantswarm/agent-testing/internal/promptutil"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

const defaultTemperature = 0.5

// missingJudgmentRationale marks rubric items the analysis never covered.
// Kept identical to the other providers so downstream reports can group
// partially judged results regardless of backend.
const missingJudgmentRationale = "No individual judge result available, using overall eval status"

// structuredChecksKey is the structured-data field the analysis plan uses
// to report extraction checks. Absent means no checks were configured.
const structuredChecksKey = "checks_passed"

// buildCallRequest translates a test definition into a Vapi call request.
// Dynamic variables are interpolated locally and also forwarded as
// variableValues so assistant-side templates resolve the same way.
func buildCallRequest(test *testsuite.TestDefinition) *CallRequest {
	vars := test.DynamicVariables

	assistantID := test.AgentID
	if test.Overrides != nil && test.Overrides.AssistantID != "" {
		assistantID = test.Overrides.AssistantID
	}

	sim := SimulationPlan{
		Persona:     promptutil.Interpolate(test.SimulatedUser.Prompt, vars),
		Language:    test.SimulatedUser.Language,
		Model:       test.SimulatedUser.Model,
		Temperature: defaultTemperature,
	}
	if test.SimulatedUser.Temperature != nil {
		sim.Temperature = *test.SimulatedUser.Temperature
	}

	rubric := make([]RubricItem, 0, len(test.EvaluationCriteria))
	for _, c := range test.EvaluationCriteria {
		rubric = append(rubric, RubricItem{
			ID:       c.ID,
			Criteria: promptutil.RewriteToQuestion(promptutil.Interpolate(c.Prompt, vars)),
		})
	}

	req := &CallRequest{
		AssistantID:  assistantID,
		Simulation:   sim,
		AnalysisPlan: AnalysisPlan{Rubric: rubric},
	}
	if test.SimulatedUser.FirstMessage != "" || len(vars) > 0 {
		req.AssistantOverrides = &AssistantOverrides{
			FirstMessage:   promptutil.Interpolate(test.SimulatedUser.FirstMessage, vars),
			VariableValues: vars,
		}
	}
	return req
}

// toTestResult normalizes an ended call into the unified result model.
//
// Vapi preserves rubric ids in its analysis results, so correlation is
// id-keyed rather than positional. Criteria the analysis skipped are filled
// from the overall success evaluation with an explicit rationale.
func toTestResult(call *Call, test *testsuite.TestDefinition, elapsed time.Duration) *testsuite.TestResult {
	turns := make([]testsuite.ConversationTurn, 0, len(call.Messages))
	for _, msg := range call.Messages {
		role, ok := mapRole(msg.Role)
		if !ok {
			continue
		}
		turns = append(turns, testsuite.ConversationTurn{
			Role:    role,
			Message: msg.Message,
		})
	}

	callSucceeded := call.Status == callEnded && !strings.HasPrefix(call.EndedReason, "error")
	checksPassed := true
	overallOutcome := testsuite.OutcomeFailure

	judged := map[string]AnalysisResult{}
	if call.Analysis != nil {
		if strings.EqualFold(call.Analysis.SuccessEvaluation, "true") {
			overallOutcome = testsuite.OutcomeSuccess
		}
		for _, r := range call.Analysis.Results {
			judged[r.ID] = r
		}
		if v, ok := call.Analysis.StructuredData[structuredChecksKey]; ok {
			passed, isBool := v.(bool)
			checksPassed = isBool && passed
		}
	} else if callSucceeded {
		overallOutcome = testsuite.OutcomeSuccess
	}

	evals := make(map[string]testsuite.EvaluationResult, len(test.EvaluationCriteria))
	for _, criterion := range test.EvaluationCriteria {
		if verdict, ok := judged[criterion.ID]; ok {
			outcome := testsuite.OutcomeFailure
			if verdict.Passed {
				outcome = testsuite.OutcomeSuccess
			}
			evals[criterion.ID] = testsuite.EvaluationResult{
				CriteriaID: criterion.ID,
				Result:     outcome,
				Rationale:  verdict.Rationale,
			}
			continue
		}
		evals[criterion.ID] = testsuite.EvaluationResult{
			CriteriaID: criterion.ID,
			Result:     overallOutcome,
			Rationale:  missingJudgmentRationale,
		}
	}

	result := testsuite.NewTestResult(test, turns, evals, callSucceeded, checksPassed, elapsed)
	result.ProviderCost = call.Cost
	return result
}

// mapRole converts a Vapi message role to the unified turn role. Vapi uses
// "bot" for the agent side; system and tool entries are dropped.
func mapRole(role string) (string, bool) {
	switch role {
	case "user":
		return testsuite.RoleUser, true
	case "bot", "assistant":
		return testsuite.RoleAgent, true
	default:
		return "", false
	}
}
