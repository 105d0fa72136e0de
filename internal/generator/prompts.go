package generator

import (
	"fmt"
	"strings"
)

// generationSystemPrompt instructs the model to emit the scenario JSON
// array parseScenarios expects.
const generationSystemPrompt = `You are a QA engineer designing conversation tests for customer-facing AI agents.

The user describes an agent. You respond with a JSON array of test scenarios, and nothing else.

Each scenario is an object with these fields:
- "name": short unique test name
- "description": one sentence on what the test covers
- "persona": a realistic customer persona prompt, written in second person ("You are ...")
- "first_message": the customer's opening message
- "criteria": array of objects with "id" (short snake_case, unique within the scenario), "name" and "prompt" (a checkable statement like "Agent should confirm the order number")

Cover both happy paths and difficult customers. Keep scenarios concrete and grounded in the described agent's actual capabilities.`

func buildPrompt(req Request, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d test scenarios for the following agent.\n\nAgent description:\n%s\n", count, req.AgentDescription)
	if len(req.FocusAreas) > 0 {
		fmt.Fprintf(&b, "\nFocus the scenarios on these areas:\n")
		for _, area := range req.FocusAreas {
			fmt.Fprintf(&b, "- %s\n", area)
		}
	}
	return b.String()
}
