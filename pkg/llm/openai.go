package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/scholarforge/scholarforge/pkg/agent"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider generates text through an OpenAI-compatible chat
// completions endpoint. A custom base URL supports proxies and local
// servers exposing the same surface.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIProvider builds the provider. baseURL may be empty.
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Generate implements Provider.
func (p *OpenAIProvider) Generate(ctx context.Context, req *agent.GenerateRequest) (string, error) {
	payload := openAIRequest{
		Model:       p.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.SystemPrompt != "" {
		payload.Messages = append(payload.Messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	payload.Messages = append(payload.Messages, openAIMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", agent.Internalf(err, "encode openai request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", agent.Internalf(err, "build openai request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", agent.Transientf(err, "openai request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", agent.Transientf(err, "read openai response")
	}

	if resp.StatusCode != http.StatusOK {
		apiMsg := apiErrorMessage(data)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", agent.Transientf(nil, "openai api status %d: %s", resp.StatusCode, apiMsg)
		}
		return "", agent.Permanentf(nil, "openai api status %d: %s", resp.StatusCode, apiMsg)
	}

	var parsed openAIResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", agent.Permanentf(err, "decode openai response")
	}
	if len(parsed.Choices) == 0 {
		return "", agent.Permanentf(nil, "openai response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Close implements Provider.
func (p *OpenAIProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func apiErrorMessage(data []byte) string {
	var parsed openAIResponse
	if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	return fmt.Sprintf("%.200s", string(data))
}
