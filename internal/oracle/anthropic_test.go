package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicMessage(blocks ...map[string]any) map[string]any {
	content := make([]any, 0, len(blocks))
	for _, b := range blocks {
		content = append(content, b)
	}
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       DefaultAnthropicModel,
		"content":     content,
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 10},
	}
}

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *Anthropic {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewAnthropic(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return a
}

func TestAnthropic_Corrected(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
	}
	var apiKey, path string

	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, anthropicMessage(
			map[string]any{"type": "thinking", "thinking": "considering", "signature": "sig"},
			map[string]any{"type": "text", "text": "openapi: 3.0.0\ninfo:\n  description: ok\n"},
		))
	})

	c := a.Correct(context.Background(), testReq)

	require.NoError(t, c.Err)
	assert.Equal(t, StatusCorrected, c.Status)
	assert.Equal(t, "openapi: 3.0.0\ninfo:\n  description: ok", c.Document)
	assert.Equal(t, "test-key", apiKey)
	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, DefaultAnthropicModel, got.Model)
	assert.Equal(t, int64(DefaultAnthropicMaxTokens), got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, SystemPrompt, got.System[0].Text)
}

func TestAnthropic_ThinkingFallback(t *testing.T) {
	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, anthropicMessage(
			map[string]any{"type": "thinking", "thinking": "openapi: 3.1.0\n", "signature": "sig"},
		))
	})

	c := a.Correct(context.Background(), testReq)

	require.NoError(t, c.Err)
	assert.Equal(t, StatusReasoningFallback, c.Status)
	assert.Equal(t, "openapi: 3.1.0", c.Document)
}

func TestAnthropic_ErrorKeepsDocument(t *testing.T) {
	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "invalid_request_error", "message": "bad"},
		})
	})

	c := a.Correct(context.Background(), testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.Error(t, c.Err)
	assert.Equal(t, testDoc, c.Document)
}
