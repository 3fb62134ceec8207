package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	status int
	body   string
	path   string
	sent   map[string]any
}

func (f *fakeTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	f.path = r.URL.Path
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		f.sent = map[string]any{}
		_ = json.Unmarshal(data, &f.sent)
	}
	resp := &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewReader([]byte(f.body))),
		Header:     make(http.Header),
		Request:    r,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func TestDeepSeekComplete(t *testing.T) {
	fake := &fakeTransport{status: 200, body: `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "deepseek-chat",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  music \n"}}]
	}`}
	client := NewDeepSeek("test-key", "https://deepseek.test/", "deepseek-chat",
		openaioption.WithHTTPClient(&http.Client{Transport: fake}),
		openaioption.WithMaxRetries(0),
	)
	reply, err := client.Complete(context.Background(), Request{
		System:      "You are a helpful assistant",
		Prompt:      "Categorise: I played bass in a band",
		MaxTokens:   20,
		Temperature: 0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "music", reply)
	assert.True(t, strings.HasSuffix(fake.path, "/chat/completions"), fake.path)
	assert.Equal(t, "deepseek-chat", fake.sent["model"])
	messages, ok := fake.sent["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
	assert.NotContains(t, fake.sent, "response_format")
}

func TestDeepSeekJSONMode(t *testing.T) {
	fake := &fakeTransport{status: 200, body: `{
		"id": "chatcmpl-2", "object": "chat.completion", "created": 1, "model": "deepseek-chat",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"answer\": \"Leeds\"}"}}]
	}`}
	client := NewDeepSeek("test-key", "https://deepseek.test/", "deepseek-chat",
		openaioption.WithHTTPClient(&http.Client{Transport: fake}),
		openaioption.WithMaxRetries(0),
	)
	reply, err := client.Complete(context.Background(), Request{Prompt: "Where was Peter born?", JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"answer": "Leeds"}`, reply)
	assert.Equal(t, map[string]any{"type": "json_object"}, fake.sent["response_format"])
}

func TestDeepSeekError(t *testing.T) {
	fake := &fakeTransport{status: 400, body: `{"error": {"message": "bad request", "type": "invalid_request_error"}}`}
	client := NewDeepSeek("test-key", "https://deepseek.test/", "deepseek-chat",
		openaioption.WithHTTPClient(&http.Client{Transport: fake}),
		openaioption.WithMaxRetries(0),
	)
	_, err := client.Complete(context.Background(), Request{Prompt: "hello"})
	assert.Error(t, err)
}

func TestClaudeComplete(t *testing.T) {
	fake := &fakeTransport{status: 200, body: `{
		"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
		"content": [{"type": "text", "text": "# Early Years\nBorn in Hastings."}],
		"stop_reason": "end_turn", "usage": {"input_tokens": 10, "output_tokens": 10}
	}`}
	client := NewClaude("test-key", "claude-sonnet-4-5",
		anthropicoption.WithHTTPClient(&http.Client{Transport: fake}),
		anthropicoption.WithMaxRetries(0),
	)
	reply, err := client.Complete(context.Background(), Request{Prompt: "Write a biography", Temperature: 0.7})
	require.NoError(t, err)
	assert.Equal(t, "# Early Years\nBorn in Hastings.", reply)
	assert.Equal(t, "claude-sonnet-4-5", fake.sent["model"])
	assert.EqualValues(t, claudeDefaultMaxTokens, fake.sent["max_tokens"])
}

func TestByName(t *testing.T) {
	previousDeepSeek, previousClaude := DeepSeek, Claude
	t.Cleanup(func() { DeepSeek, Claude = previousDeepSeek, previousClaude })

	DeepSeek, Claude = nil, nil
	_, err := ByName(ModelDeepSeek)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = ByName("gpt")
	assert.Error(t, err)

	DeepSeek = NewDeepSeek("key", "https://deepseek.test/", "deepseek-chat")
	c, err := ByName(ModelDeepSeek)
	require.NoError(t, err)
	assert.Equal(t, DeepSeek, c)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"answer": "yes"}`, ExtractJSON("```json\n{\"answer\": \"yes\"}\n```"))
	assert.Equal(t, `{"a": {"b": 1}}`, ExtractJSON(`Here you go: {"a": {"b": 1}} hope it helps`))
	assert.Equal(t, "", ExtractJSON("no json here"))
}
