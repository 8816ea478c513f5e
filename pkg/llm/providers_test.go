package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarforge/scholarforge/pkg/agent"
)

type fakeMessages struct {
	gotParams sdk.MessageNewParams
	msg       *sdk.Message
	err       error
}

func (f *fakeMessages) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	f.gotParams = body
	return f.msg, f.err
}

func TestAnthropicProviderGenerate(t *testing.T) {
	fake := &fakeMessages{msg: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "Hello "},
			{Type: "text", Text: "world."},
		},
	}}
	p := &AnthropicProvider{msg: fake, model: "claude-sonnet-4-5"}

	text, err := p.Generate(context.Background(), &agent.GenerateRequest{
		Prompt:       "write",
		SystemPrompt: "sys",
		MaxTokens:    1024,
		Temperature:  0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", text)
	assert.Equal(t, int64(1024), fake.gotParams.MaxTokens)
	require.Len(t, fake.gotParams.System, 1)
	assert.Equal(t, "sys", fake.gotParams.System[0].Text)
}

func TestClassifyAnthropicError(t *testing.T) {
	assert.Equal(t, agent.ErrorKindTransient,
		agent.KindOf(classifyAnthropicError(&sdk.Error{StatusCode: 429})))
	assert.Equal(t, agent.ErrorKindTransient,
		agent.KindOf(classifyAnthropicError(&sdk.Error{StatusCode: 503})))
	assert.Equal(t, agent.ErrorKindPermanent,
		agent.KindOf(classifyAnthropicError(&sdk.Error{StatusCode: 400})))
	assert.Equal(t, context.Canceled, classifyAnthropicError(context.Canceled))
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "generated text"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "gpt-4o", srv.URL)
	text, err := p.Generate(context.Background(), &agent.GenerateRequest{
		Prompt:       "write",
		SystemPrompt: "sys",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
}

func TestOpenAIProviderClassifiesStatuses(t *testing.T) {
	status := http.StatusTooManyRequests
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit"}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("k", "m", srv.URL)

	_, err := p.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, agent.ErrorKindTransient, agent.KindOf(err))
	assert.Contains(t, err.Error(), "slow down")

	status = http.StatusBadRequest
	_, err = p.Generate(context.Background(), &agent.GenerateRequest{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, agent.ErrorKindPermanent, agent.KindOf(err))
}
