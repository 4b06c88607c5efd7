package llm

import (
	"context"
	"errors"
)

// ErrGeneration wraps any provider-side failure during completion, so callers
// can distinguish "the model could not answer" from "the call never happened".
var ErrGeneration = errors.New("llm generation failure")

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
