package server

import (
	"github.com/giantswarm/agent-testing/internal/llm"
	"github.com/giantswarm/agent-testing/internal/provider"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Providers       *provider.Registry
	DefaultProvider string
	LLMClient       llm.Client
	OutputDir       string
	SuitesDir       string // external test suites directory (optional)
}
