package llm

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarforge/scholarforge/pkg/agent"
	"github.com/scholarforge/scholarforge/pkg/config"
)

// scriptedProvider returns canned results per call, in order.
type scriptedProvider struct {
	calls   atomic.Int64
	results []scriptedResult
}

type scriptedResult struct {
	text string
	err  error
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Generate(_ context.Context, _ *agent.GenerateRequest) (string, error) {
	n := int(p.calls.Add(1)) - 1
	if n >= len(p.results) {
		n = len(p.results) - 1
	}
	r := p.results[n]
	return r.text, r.err
}

func (p *scriptedProvider) Close() error { return nil }

func gatewayConfig() *config.LLMConfig {
	return &config.LLMConfig{
		Provider:      "mock",
		MaxTokens:     4096,
		Temperature:   0.7,
		MaxConcurrent: 2,
		MaxAttempts:   3,
		RetryBase:     time.Millisecond,
	}
}

func TestGatewayRetriesTransientThenSucceeds(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{err: agent.Transientf(nil, "rate limited")},
		{err: agent.Transientf(nil, "rate limited")},
		{text: "recovered"},
	}}
	g := NewGateway(p, gatewayConfig())

	text, err := g.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int64(3), p.calls.Load())
}

func TestGatewayDoesNotRetryPermanent(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{err: agent.Permanentf(nil, "bad request")},
	}}
	g := NewGateway(p, gatewayConfig())

	_, err := g.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, agent.ErrorKindPermanent, agent.KindOf(err))
	assert.Equal(t, int64(1), p.calls.Load())
}

func TestGatewayExhaustsAttempts(t *testing.T) {
	p := &scriptedProvider{results: []scriptedResult{
		{err: agent.Transientf(nil, "still down")},
	}}
	g := NewGateway(p, gatewayConfig())

	_, err := g.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, int64(3), p.calls.Load())
}

func TestGatewayRejectsEmptyPrompt(t *testing.T) {
	g := NewGateway(NewMockProvider(), gatewayConfig())

	_, err := g.Generate(context.Background(), &agent.GenerateRequest{})
	require.Error(t, err)
	assert.Equal(t, agent.ErrorKindValidation, agent.KindOf(err))
}

func TestGatewayAppliesDefaults(t *testing.T) {
	var seen agent.GenerateRequest
	p := &capturingProvider{seen: &seen}
	g := NewGateway(p, gatewayConfig())

	_, err := g.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, 4096, seen.MaxTokens)
	assert.Equal(t, 0.7, seen.Temperature)
}

type capturingProvider struct {
	seen *agent.GenerateRequest
}

func (p *capturingProvider) Name() string { return "capturing" }

func (p *capturingProvider) Generate(_ context.Context, req *agent.GenerateRequest) (string, error) {
	*p.seen = *req
	return "ok", nil
}

func (p *capturingProvider) Close() error { return nil }

func TestMockProviderDeterminism(t *testing.T) {
	p := NewMockProvider()
	req := &agent.GenerateRequest{Prompt: "write the introduction", SystemPrompt: "sys"}

	a, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	b, err := p.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, a, b, "same prompt yields byte-equal text")
	assert.NotEmpty(t, a)

	c, err := p.Generate(context.Background(), &agent.GenerateRequest{Prompt: "a different prompt", SystemPrompt: "sys"})
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "distinct prompts yield distinct text")
}

func TestMockProviderSentenceSelection(t *testing.T) {
	// Sentence picks are hash-driven, so sweep many prompts to cover the
	// full range of draws; every response must be composed of bank
	// sentences only.
	p := NewMockProvider()
	for i := 0; i < 256; i++ {
		text, err := p.Generate(context.Background(), &agent.GenerateRequest{
			Prompt:       "prompt variant " + strings.Repeat("x", i),
			SystemPrompt: "sys",
		})
		require.NoError(t, err)

		remainder := text
		for _, sentence := range mockSentenceBank {
			remainder = strings.ReplaceAll(remainder, sentence, "")
		}
		assert.Empty(t, strings.TrimSpace(remainder), "unexpected text outside the sentence bank")

		n := strings.Count(text, ".")
		assert.GreaterOrEqual(t, n, 6)
		assert.LessOrEqual(t, n, 13)
	}
}

func TestMockProviderHonorsTokenBudget(t *testing.T) {
	p := NewMockProvider()
	small, err := p.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p", MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(small, "."), "small budgets get three sentences")
}

func TestNewProviderFactory(t *testing.T) {
	cases := []struct {
		provider string
		want     string
	}{
		{"mock", "mock"},
		{"anthropic", "anthropic"},
		{"openai", "openai"},
	}
	for _, tc := range cases {
		p, err := NewProvider(&config.LLMConfig{Provider: tc.provider, APIKey: "k", Model: "m"})
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.Name())
	}

	_, err := NewProvider(&config.LLMConfig{Provider: "nope"})
	assert.Error(t, err)
}
