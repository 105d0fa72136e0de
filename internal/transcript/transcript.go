// Package transcript parses flat text transcripts into ordered conversation
// turns. Some providers only return the conversation as prose with role
// prefixes rather than a structured turn array.
package transcript

import (
	"strings"

	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// rolePrefixes maps recognized line markers to unified conversation roles.
// "Assistant:" is an alias some providers use for the agent side.
var rolePrefixes = map[string]string{
	"User:":      testsuite.RoleUser,
	"Agent:":     testsuite.RoleAgent,
	"Assistant:": testsuite.RoleAgent,
}

// Parse splits a flat transcript on role-prefix markers. Lines without a
// marker are continuation lines and accumulate into the current turn; the
// trailing turn is finalized at end of input. A transcript with no
// recognized markers yields zero turns, not an error -- the caller decides
// whether an empty conversation is meaningful.
func Parse(text string) []testsuite.ConversationTurn {
	var turns []testsuite.ConversationTurn
	var current *testsuite.ConversationTurn
	var lines []string

	flush := func() {
		if current == nil {
			return
		}
		current.Message = strings.TrimSpace(strings.Join(lines, "\n"))
		turns = append(turns, *current)
		current = nil
		lines = nil
	}

	for _, line := range strings.Split(text, "\n") {
		role, rest, ok := matchRolePrefix(line)
		if !ok {
			if current != nil {
				lines = append(lines, line)
			}
			continue
		}

		flush()
		current = &testsuite.ConversationTurn{Role: role}
		lines = []string{rest}
	}
	flush()

	return turns
}

func matchRolePrefix(line string) (role, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	for prefix, r := range rolePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return r, strings.TrimSpace(trimmed[len(prefix):]), true
		}
	}
	return "", "", false
}
