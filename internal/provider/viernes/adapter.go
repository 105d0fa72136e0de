package viernes

import (
	"time"

	"github.com/giantswarm/agent-testing/internal/promptutil"
	"github.com/giantswarm/agent-testing/internal/testsuite"
	"github.com/giantswarm/agent-testing/internal/transcript"
)

// Per-provider defaults applied when a test leaves the optional simulation
// fields unset. Sent explicitly so Viernes-side default changes never alter
// behavior silently.
const (
	defaultTemperature = 0.5
	defaultMaxTokens   = 512
)

// missingJudgmentRationale marks criteria whose verdicts were never
// returned, typically because the conversation terminated before all
// checkpoints were evaluated.
const missingJudgmentRationale = "No individual judge result available, using overall eval status"

// buildRequest translates a test definition into the Viernes wire request.
// Pure: dynamic variables are interpolated into all free-text fields and
// each criterion prompt is rewritten into the yes/no question shape the
// Viernes judge expects.
func buildRequest(test *testsuite.TestDefinition, organizationID string) *SimulationRequest {
	vars := test.DynamicVariables

	sim := SimulationConfig{
		PersonaPrompt: promptutil.Interpolate(test.SimulatedUser.Prompt, vars),
		FirstMessage:  promptutil.Interpolate(test.SimulatedUser.FirstMessage, vars),
		Language:      test.SimulatedUser.Language,
		Temperature:   defaultTemperature,
		MaxTokens:     defaultMaxTokens,
		Model:         test.SimulatedUser.Model,
	}
	if test.SimulatedUser.Temperature != nil {
		sim.Temperature = *test.SimulatedUser.Temperature
	}
	if test.SimulatedUser.MaxTokens > 0 {
		sim.MaxTokens = test.SimulatedUser.MaxTokens
	}

	questions := make([]JudgeQuestion, 0, len(test.EvaluationCriteria))
	for _, c := range test.EvaluationCriteria {
		questions = append(questions, JudgeQuestion{
			Name:     c.Name,
			Question: promptutil.RewriteToQuestion(promptutil.Interpolate(c.Prompt, vars)),
		})
	}

	req := &SimulationRequest{
		AgentID:        test.AgentID,
		OrganizationID: organizationID,
		Simulation:     sim,
		Questions:      questions,
	}
	if test.Overrides != nil && test.Overrides.OrganizationID != "" {
		req.OrganizationID = test.Overrides.OrganizationID
	}
	return req
}

// toTestResult normalizes a Viernes response into the unified result model.
//
// Viernes does not preserve question identifiers: verdicts come back in
// request order only, so correlation falls back to positional matching into
// the original criteria slice. This is best-effort -- when Viernes
// terminates a conversation early it may have judged only a prefix of the
// checkpoints -- and the gap criteria are filled from the overall call flag
// with an explicit rationale rather than dropped.
func toTestResult(resp *SimulationResponse, test *testsuite.TestDefinition, elapsed time.Duration) *testsuite.TestResult {
	turns := transcript.Parse(resp.Transcript)

	callSucceeded := resp.CallSuccessful && resp.Status != "failed"

	overallOutcome := testsuite.OutcomeFailure
	if callSucceeded {
		overallOutcome = testsuite.OutcomeSuccess
	}

	evals := make(map[string]testsuite.EvaluationResult, len(test.EvaluationCriteria))
	for i, criterion := range test.EvaluationCriteria {
		if i < len(resp.Evaluations) {
			verdict := resp.Evaluations[i]
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

	return testsuite.NewTestResult(test, turns, evals, callSucceeded, true, elapsed)
}
