package promptutil

import (
	"fmt"
	"strings"
)

// Lead-in phrases that mark a declarative judge instruction. The phrase is
// stripped and the remainder wrapped as a yes/no question.
var leadIns = []string{
	"evaluate whether ",
	"evaluate if ",
	"evaluate that ",
	"evaluate ",
	"verify that ",
	"verify whether ",
	"verify ",
}

// RewriteToQuestion turns a criterion prompt into the interrogative form
// expected by judges that only accept yes/no questions.
//
// Prompts that already end in a question mark pass through unchanged.
// Recognized declarative patterns (lead-ins like "evaluate ..."/"verify ..."
// and "... should ..." statements) are reduced and wrapped as
// "Did the test satisfy: <statement>?". Anything else falls back to the
// generic "Did the conversation meet this criterion: <text>?" wrapper.
func RewriteToQuestion(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return trimmed
	}
	if strings.HasSuffix(trimmed, "?") {
		return trimmed
	}

	lower := strings.ToLower(trimmed)
	for _, lead := range leadIns {
		if strings.HasPrefix(lower, lead) {
			statement := strings.TrimSpace(trimmed[len(lead):])
			return satisfyQuestion(statement)
		}
	}

	// "Agent should confirm the order" -> "Agent confirm the order".
	// The statement stays recognizable; the wrapper carries the
	// interrogative form so no verb conjugation is attempted.
	if idx := strings.Index(lower, " should "); idx >= 0 {
		statement := trimmed[:idx] + " " + trimmed[idx+len(" should "):]
		return satisfyQuestion(statement)
	}
	if strings.HasPrefix(lower, "should ") {
		return satisfyQuestion(strings.TrimSpace(trimmed[len("should "):]))
	}

	return fmt.Sprintf("Did the conversation meet this criterion: %s?", strings.TrimSuffix(trimmed, "."))
}

func satisfyQuestion(statement string) string {
	return fmt.Sprintf("Did the test satisfy: %s?", strings.TrimSuffix(strings.TrimSpace(statement), "."))
}
