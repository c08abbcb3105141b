// Package llm provides LLM provider abstractions.
//
// Provider is the single-method contract the agent loop drives: one
// synchronous request/response round-trip per step, no streaming. Each
// implementation hides API client construction, transcript/tool-schema
// conversion to its own wire format, and provider-specific error handling.
package llm

import (
	"context"
)

// Provider defines the abstract interface for LLM providers.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends one request and returns one response. Callers manage
	// timeouts via ctx; providers never retry or stream internally.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
