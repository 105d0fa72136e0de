// Package chatsim executes tests without a simulation backend: the
// simulated user and the judge both run on an OpenAI-compatible chat API,
// and the agent under test is addressed as a chat model by its agent id.
package chatsim

import (
	"context"
	"fmt"
	"strings"

	"github.com/giantswarm/agent-testing/internal/llm"
	"github.com/giantswarm/agent-testing/internal/promptutil"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

const (
	defaultMaxTurns = 10

	// endMarker is what the simulated user emits once its goal is reached.
	// Stripped from the transcript before judging.
	endMarker = "[DONE]"
)

const userSystemPrompt = `You are role-playing a customer talking to a support agent. Stay in character at all times.

Your persona:

%s

Respond with exactly one short conversational message per turn, with no narration or stage directions. When your goal has been fully addressed, reply with exactly %s and nothing else.`

// conversation drives the simulated user and the agent turn by turn until
// the user signals completion or the turn ceiling is hit. Turn counting is
// per exchange, so a ceiling of n allows n user messages and n agent
// replies at most.
func (p *Provider) conversation(ctx context.Context, test *testsuite.TestDefinition) ([]testsuite.ConversationTurn, error) {
	vars := test.DynamicVariables
	persona := promptutil.Interpolate(test.SimulatedUser.Prompt, vars)
	first := promptutil.Interpolate(test.SimulatedUser.FirstMessage, vars)

	maxTurns := defaultMaxTurns
	if test.Overrides != nil && test.Overrides.MaxTurns > 0 {
		maxTurns = test.Overrides.MaxTurns
	}

	var turns []testsuite.ConversationTurn
	userMessage := first

	for exchange := 0; exchange < maxTurns; exchange++ {
		turns = append(turns, testsuite.ConversationTurn{Role: testsuite.RoleUser, Message: userMessage})

		reply, err := p.agentClient.ChatCompletion(ctx, llm.ChatRequest{
			Model:    test.AgentID,
			Messages: agentHistory(turns),
		})
		if err != nil {
			return turns, fmt.Errorf("agent turn %d failed: %w", exchange+1, err)
		}
		turns = append(turns, testsuite.ConversationTurn{Role: testsuite.RoleAgent, Message: reply.Content})

		if exchange == maxTurns-1 {
			break
		}

		next, err := p.simClient.ChatCompletion(ctx, llm.ChatRequest{
			Model:       test.SimulatedUser.Model,
			Messages:    userHistory(persona, turns),
			Temperature: test.SimulatedUser.Temperature,
			MaxTokens:   test.SimulatedUser.MaxTokens,
		})
		if err != nil {
			return turns, fmt.Errorf("simulated user turn %d failed: %w", exchange+1, err)
		}

		userMessage = strings.TrimSpace(next.Content)
		if strings.Contains(userMessage, endMarker) {
			// The marker may ride along with a closing message; keep the
			// message, drop the marker.
			farewell := strings.TrimSpace(strings.ReplaceAll(userMessage, endMarker, ""))
			if farewell != "" {
				turns = append(turns, testsuite.ConversationTurn{Role: testsuite.RoleUser, Message: farewell})
			}
			break
		}
		if userMessage == "" {
			break
		}
	}

	return turns, nil
}

// agentHistory renders the transcript from the agent's perspective: user
// turns are user messages and the agent's own turns are assistant messages.
func agentHistory(turns []testsuite.ConversationTurn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleUser
		if t.Role == testsuite.RoleAgent {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Message})
	}
	return msgs
}

// userHistory renders the transcript from the simulated user's perspective,
// which is the mirror image: the agent speaks as user, the persona replies
// as assistant.
func userHistory(persona string, turns []testsuite.ConversationTurn) []llm.Message {
	msgs := make([]llm.Message, 0, len(turns)+1)
	msgs = append(msgs, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf(userSystemPrompt, persona, endMarker),
	})
	for _, t := range turns {
		role := llm.RoleAssistant
		if t.Role == testsuite.RoleAgent {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Message})
	}
	return msgs
}
