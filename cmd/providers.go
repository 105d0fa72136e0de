package cmd

import (
	"os"

	"github.com/giantswarm/agent-testing/internal/llm"
	"github.com/giantswarm/agent-testing/internal/provider"
	"github.com/giantswarm/agent-testing/internal/provider/chatsim"
	"github.com/giantswarm/agent-testing/internal/provider/vapi"
	"github.com/giantswarm/agent-testing/internal/provider/viernes"
)

// defaultProviderName is used when no --provider flag is given.
const defaultProviderName = viernes.ProviderName

// newProviderRegistry builds the registry with every known provider,
// configured from the environment. Providers without credentials are still
// registered; IsConfigured gates execution so the error surfaces at run
// time with a clear message instead of at registration.
//
// The returned shutdown function releases provider resources (the Viernes
// retry queue) and must be called before exit.
func newProviderRegistry() (*provider.Registry, func(), error) {
	registry := provider.NewRegistry()
	shutdown := func() {}

	var viernesOpts []viernes.ClientOption
	if baseURL := os.Getenv("VIERNES_BASE_URL"); baseURL != "" {
		viernesOpts = append(viernesOpts, viernes.WithBaseURL(baseURL))
	}
	if orgID := os.Getenv("VIERNES_ORGANIZATION_ID"); orgID != "" {
		viernesOpts = append(viernesOpts, viernes.WithOrganizationID(orgID))
	}
	viernesClient := viernes.NewClient(os.Getenv("VIERNES_API_KEY"), viernesOpts...)
	viernesProvider, err := viernes.NewProvider(viernesClient)
	if err != nil {
		return nil, nil, err
	}
	registry.Register(viernesProvider)
	shutdown = viernesProvider.Shutdown

	var vapiOpts []vapi.ClientOption
	if baseURL := os.Getenv("VAPI_BASE_URL"); baseURL != "" {
		vapiOpts = append(vapiOpts, vapi.WithBaseURL(baseURL))
	}
	registry.Register(vapi.NewProvider(vapi.NewClient(os.Getenv("VAPI_API_KEY"), vapiOpts...)))

	// Chat simulation needs two endpoints: the agent under test and the
	// simulated-user/judge model. Without the agent endpoint the provider
	// is registered unconfigured.
	var agentClient llm.Client
	if agentURL := os.Getenv("AGENT_API_BASE_URL"); agentURL != "" {
		agentOpts := []llm.Option{llm.WithBaseURL(agentURL)}
		if key := os.Getenv("AGENT_API_KEY"); key != "" {
			agentOpts = append(agentOpts, llm.WithAPIKey(key))
		}
		agentClient = llm.NewOpenAIClient(agentOpts...)
	}
	simClient := newLLMClientFromFlags(os.Getenv("OPENAI_BASE_URL"), "")
	registry.Register(chatsim.NewProvider(agentClient, simClient))

	return registry, shutdown, nil
}
