package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/llmfetch"
	"github.com/fwojciec/llmfetch/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionServer answers every request with a chat completion whose
// message content is content, and sends each decoded request body to
// payloads when it is not nil.
func completionServer(t *testing.T, content string, payloads chan<- map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		if payloads != nil {
			var payload map[string]any
			assert.NoError(t, json.Unmarshal(body, &payload))
			payloads <- payload
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "local",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGenerator_Complete(t *testing.T) {
	t.Parallel()

	t.Run("returns the trimmed message content", func(t *testing.T) {
		t.Parallel()

		server := completionServer(t, "  //h1/text()\n", nil)
		gen := openai.NewGenerator(openai.Config{BaseURL: server.URL, APIKey: "test-key"})

		out, err := gen.Complete(context.Background(), "prompt", llmfetch.GenerateParams{})

		require.NoError(t, err)
		assert.Equal(t, "//h1/text()", out)
	})

	t.Run("sends reproducible sampling params", func(t *testing.T) {
		t.Parallel()

		payloads := make(chan map[string]any, 1)
		server := completionServer(t, "//h1", payloads)
		gen := openai.NewGenerator(openai.Config{BaseURL: server.URL, Model: "stable-code-3b"})

		_, err := gen.Complete(context.Background(), "find the title", llmfetch.GenerateParams{
			Temperature: 0,
			TopK:        1,
			TopP:        1,
			Seed:        43,
			MaxTokens:   128,
			Stop:        []string{"\n\n"},
		})
		require.NoError(t, err)
		payload := <-payloads

		assert.Equal(t, "stable-code-3b", payload["model"])
		assert.InDelta(t, 0, payload["temperature"], 0)
		assert.InDelta(t, 1, payload["top_p"], 0)
		assert.InDelta(t, 1, payload["top_k"], 0)
		assert.InDelta(t, 43, payload["seed"], 0)
		assert.InDelta(t, 128, payload["max_tokens"], 0)
		assert.Equal(t, []any{"\n\n"}, payload["stop"])

		messages, ok := payload["messages"].([]any)
		require.True(t, ok)
		require.Len(t, messages, 1)
		msg, ok := messages[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "user", msg["role"])
		assert.Equal(t, "find the title", msg["content"])
	})

	t.Run("treats an empty response as an error", func(t *testing.T) {
		t.Parallel()

		server := completionServer(t, "   ", nil)
		gen := openai.NewGenerator(openai.Config{BaseURL: server.URL})

		_, err := gen.Complete(context.Background(), "prompt", llmfetch.GenerateParams{})

		require.Error(t, err)
		assert.Equal(t, llmfetch.EINTERNAL, llmfetch.ErrorCode(err))
	})

	t.Run("reports server errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"model loading","type":"server_error"}}`))
		}))
		t.Cleanup(server.Close)
		gen := openai.NewGenerator(openai.Config{BaseURL: server.URL})

		_, err := gen.Complete(context.Background(), "prompt", llmfetch.GenerateParams{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("rejects an empty prompt", func(t *testing.T) {
		t.Parallel()

		gen := openai.NewGenerator(openai.Config{BaseURL: "http://127.0.0.1:0"})

		_, err := gen.Complete(context.Background(), "", llmfetch.GenerateParams{})

		assert.Equal(t, llmfetch.EINVALID, llmfetch.ErrorCode(err))
	})
}
