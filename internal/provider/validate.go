package provider

import (
	"github.com/giantswarm/agent-testing/internal/fault"
	"github.com/giantswarm/agent-testing/internal/testsuite"
)

// ValidateTest checks the fields every provider requires before any I/O:
// a target agent identifier, a simulated-user persona and an opening
// message. Violations fail fast so a partially specified test never reaches
// the network or a queue slot.
func ValidateTest(providerName string, test *testsuite.TestDefinition) error {
	if test.AgentID == "" && (test.Overrides == nil || test.Overrides.AssistantID == "") {
		return &fault.ConfigurationError{Provider: providerName, Message: "test " + test.Name + " has no agent id"}
	}
	if test.SimulatedUser.Prompt == "" {
		return &fault.ConfigurationError{Provider: providerName, Message: "test " + test.Name + " has no simulated-user persona"}
	}
	if test.SimulatedUser.FirstMessage == "" {
		return &fault.ConfigurationError{Provider: providerName, Message: "test " + test.Name + " has no first message"}
	}
	return nil
}
