package chatsim

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/giantswarm/agent-testing/internal/llm"
	"github.com/giantswarm/agent-testing/internal/promptutil"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// judgeSystemPrompt instructs the judge model. The verdict line format is
// load-bearing: parseVerdict extracts it with a regular expression.
const judgeSystemPrompt = `You are a strict quality evaluator for conversations between a customer and a support agent.

The user submits a conversation transcript and a single yes/no question about it.

Answer the question based only on what the transcript shows. Reply with a line of the form "VERDICT: PASS" or "VERDICT: FAIL", followed by a one or two sentence rationale.`

const unparseableVerdictRationale = "Could not parse judge verdict from output"

var verdictPattern = regexp.MustCompile(`(?im)^\s*VERDICT:\s*(PASS|FAIL)\b`)

// judge evaluates every criterion against the finished conversation, one
// judge call per criterion. A failed call or an unparseable verdict marks
// that criterion unknown instead of failing the whole test.
func (p *Provider) judge(ctx context.Context, test *testsuite.TestDefinition, turns []testsuite.ConversationTurn) map[string]testsuite.EvaluationResult {
	transcript := renderTranscript(turns)

	evals := make(map[string]testsuite.EvaluationResult, len(test.EvaluationCriteria))
	for _, criterion := range test.EvaluationCriteria {
		question := promptutil.RewriteToQuestion(promptutil.Interpolate(criterion.Prompt, test.DynamicVariables))

		resp, err := p.simClient.ChatCompletion(ctx, llm.ChatRequest{
			Model: p.judgeModel,
			Messages: []llm.Message{
				{Role: llm.RoleSystem, Content: judgeSystemPrompt},
				{Role: llm.RoleUser, Content: fmt.Sprintf("Transcript:\n\n%s\n\nQuestion: %s", transcript, question)},
			},
			Temperature: llm.Float64Ptr(0),
		})
		if err != nil {
			evals[criterion.ID] = testsuite.EvaluationResult{
				CriteriaID: criterion.ID,
				Result:     testsuite.OutcomeUnknown,
				Rationale:  fmt.Sprintf("judge call failed: %v", err),
			}
			continue
		}

		evals[criterion.ID] = parseVerdict(criterion.ID, resp.Content)
	}
	return evals
}

// parseVerdict extracts the verdict line from judge output. Anything after
// the verdict line is kept as the rationale.
func parseVerdict(criterionID, text string) testsuite.EvaluationResult {
	matches := verdictPattern.FindStringSubmatchIndex(text)
	if matches == nil {
		return testsuite.EvaluationResult{
			CriteriaID: criterionID,
			Result:     testsuite.OutcomeUnknown,
			Rationale:  unparseableVerdictRationale,
		}
	}

	outcome := testsuite.OutcomeFailure
	if strings.EqualFold(text[matches[2]:matches[3]], "PASS") {
		outcome = testsuite.OutcomeSuccess
	}

	return testsuite.EvaluationResult{
		CriteriaID: criterionID,
		Result:     outcome,
		Rationale:  strings.TrimSpace(text[matches[1]:]),
	}
}

func renderTranscript(turns []testsuite.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		label := "User"
		if t.Role == testsuite.RoleAgent {
			label = "Agent"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, t.Message)
	}
	return b.String()
}
