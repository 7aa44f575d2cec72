package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts AI providers for structured resume analysis.
type Client interface {
	// GenerateStructured runs the prompt and returns the model's output as
	// raw JSON. Implementations must reject on network errors, timeouts,
	// and output that is not valid JSON.
	GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
}

// StructuredRequest captures one structured-output generation call.
type StructuredRequest struct {
	// Prompt is the full instruction, including the required JSON shape.
	Prompt string
	// Shape names the expected top-level object for logging and errors.
	Shape string
	// MaxTokens bounds the output size; zero means provider default.
	MaxTokens int
	// Temperature controls sampling; analyses run at 0 for determinism.
	Temperature float32
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm client not configured")

// PlaceholderClient is a stub used when no provider is wired (e.g. tests,
// dev without an API key).
type PlaceholderClient struct{}

// GenerateStructured returns ErrNotConfigured.
func (PlaceholderClient) GenerateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	_ = ctx
	_ = req
	return nil, ErrNotConfigured
}
