package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cedricrupb/dataviewer/core/provider"
)

// newChatServer fakes the chat-completions endpoint and records the last
// request body it decoded.
func newChatServer(t *testing.T, lastBody *map[string]interface{}) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, lastBody))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-test",
			"model": "gpt-4o",
			"created": 1700000000,
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "def display_instance(instance):\n    pass"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	}))
}

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()

	p, err := NewProvider("openai", map[string]interface{}{
		"api_key":  "sk-test",
		"base_url": baseURL + "/v1",
	})
	require.NoError(t, err)
	return p
}

func TestProvider_GenerateCode(t *testing.T) {
	var body map[string]interface{}
	server := newChatServer(t, &body)
	defer server.Close()

	p := newTestProvider(t, server.URL)

	resp, err := p.GenerateCode(context.Background(), &provider.CodeRequest{
		System:      "You are an expert.",
		Prompt:      "Write a display function.",
		Temperature: 0,
		MaxTokens:   1500,
	})
	require.NoError(t, err)

	assert.Equal(t, "chatcmpl-test", resp.ID)
	assert.Contains(t, resp.Content, "display_instance")
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	messages, ok := body["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestProvider_GenerateCode_ZeroTemperatureIsSent(t *testing.T) {
	var body map[string]interface{}
	server := newChatServer(t, &body)
	defer server.Close()

	p := newTestProvider(t, server.URL)

	_, err := p.GenerateCode(context.Background(), &provider.CodeRequest{
		Prompt:      "Write a display function.",
		Temperature: 0,
	})
	require.NoError(t, err)

	// A deterministic request must carry its temperature on the wire; the
	// client library omits a literal zero.
	temp, present := body["temperature"]
	require.True(t, present, "temperature missing from request body")

	value, ok := temp.(float64)
	require.True(t, ok)
	assert.Greater(t, value, 0.0)
	assert.Less(t, value, 1e-6)
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider("openai", map[string]interface{}{})
	assert.ErrorIs(t, err, provider.ErrAPIKeyMissing)
}
