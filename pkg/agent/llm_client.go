package agent

import "context"

// LLMClient is the gateway contract agents generate text through.
// Implemented by llm.Gateway; defined as an interface here to avoid a
// circular import between pkg/agent and pkg/llm and to enable testing
// with scripted mocks.
type LLMClient interface {
	// Generate produces text for the prompt. Transient failures (rate
	// limit, 5xx, network reset) are retried inside the gateway; the
	// error returned here is the last-attempt error, classified with the
	// taxonomy in this package.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// Close releases underlying connections.
	Close() error
}

// GenerateRequest is a single text-generation call.
type GenerateRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}
