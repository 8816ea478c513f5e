package llm

import (
	"context"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/scholarforge/scholarforge/pkg/agent"
)

// messagesClient captures the subset of the Anthropic SDK used by the
// provider. Satisfied by *sdk.MessageService so tests can pass a mock.
type messagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// AnthropicProvider generates text through the Claude Messages API.
type AnthropicProvider struct {
	msg   messagesClient
	model string
}

// NewAnthropicProvider builds a provider using the default SDK HTTP client.
func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{msg: &client.Messages, model: model}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// Generate implements Provider.
func (p *AnthropicProvider) Generate(ctx context.Context, req *agent.GenerateRequest) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = sdk.Float(req.Temperature)
	}

	msg, err := p.msg.New(ctx, params)
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}

// Close implements Provider. The SDK client holds no persistent
// connections beyond the standard HTTP transport.
func (p *AnthropicProvider) Close() error { return nil }

// classifyAnthropicError maps SDK errors onto the agent taxonomy:
// rate limits and server errors are transient, other API errors are
// permanent, anything else (network resets, timeouts) is transient.
func classifyAnthropicError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 429 || apiErr.StatusCode >= 500 {
			return agent.Transientf(err, "anthropic api status %d", apiErr.StatusCode)
		}
		return agent.Permanentf(err, "anthropic api status %d", apiErr.StatusCode)
	}
	return agent.Transientf(err, "anthropic request failed")
}
