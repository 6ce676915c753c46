package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDoc = "openapi: 3.0.0\ninfo:\n  title: Pets\n"

var testReq = Request{
	Document:    testDoc,
	Ruleset:     "rules:\n  info-description: error\n",
	Diagnostics: "  2:6  error  info-description  Info must have description",
}

func chatCompletion(message map[string]any) map[string]any {
	message["role"] = "assistant"
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   DefaultOpenAIModel,
		"choices": []any{
			map[string]any{"index": 0, "finish_reason": "stop", "message": message},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"}
	for _, m := range mutate {
		m(&cfg)
	}
	o, err := NewOpenAI(cfg)
	require.NoError(t, err)
	return o
}

// stallUntil returns a handler that never answers. It returns once release
// is closed; the request context alone is not enough because the handler
// never reads the body, so the server does not notice the client leaving.
func stallUntil(release <-chan struct{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(10 * time.Second):
		}
	}
}

func TestOpenAI_Corrected(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var auth, path string

	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		writeJSON(w, http.StatusOK, chatCompletion(map[string]any{
			"content": "\n  openapi: 3.0.0\ninfo:\n  title: Pets\n  description: Pets API\n\n",
		}))
	})

	c := o.Correct(context.Background(), testReq)

	require.NoError(t, c.Err)
	assert.Equal(t, StatusCorrected, c.Status)
	assert.Equal(t, "openapi: 3.0.0\ninfo:\n  title: Pets\n  description: Pets API", c.Document)
	assert.Equal(t, 1, c.Attempts)
	assert.False(t, c.Degraded())

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, SystemPrompt, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, BuildPrompt(testReq), got.Messages[1].Content)
}

func TestOpenAI_ReasoningFallback(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatCompletion(map[string]any{
			"content":   "",
			"reasoning": "openapi: 3.0.0\ninfo:\n  title: Fixed\n",
		}))
	})

	c := o.Correct(context.Background(), testReq)

	require.NoError(t, c.Err)
	assert.Equal(t, StatusReasoningFallback, c.Status)
	assert.Equal(t, "openapi: 3.0.0\ninfo:\n  title: Fixed", c.Document)
}

func TestOpenAI_EmptyBothChannels(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatCompletion(map[string]any{
			"content":   "   ",
			"reasoning": nil,
		}))
	})

	c := o.Correct(context.Background(), testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.ErrorIs(t, c.Err, ErrEmptyResponse)
	assert.Equal(t, testDoc, c.Document)
}

func TestOpenAI_Unchanged(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chatCompletion(map[string]any{"content": testDoc}))
	})

	c := o.Correct(context.Background(), testReq)

	require.NoError(t, c.Err)
	assert.Equal(t, StatusUnchanged, c.Status)
	assert.Equal(t, testDoc, c.Document)
}

func TestOpenAI_EmptyChoices(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		body := chatCompletion(map[string]any{})
		body["choices"] = []any{}
		writeJSON(w, http.StatusOK, body)
	})

	c := o.Correct(context.Background(), testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.ErrorIs(t, c.Err, ErrNoChoices)
	assert.Equal(t, testDoc, c.Document)
}

func TestOpenAI_TransportFailureKeepsDocument(t *testing.T) {
	var calls atomic.Int32
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]any{"message": "bad key", "type": "auth"},
		})
	}, func(c *Config) {
		c.Retry = RetryConfig{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	})

	c := o.Correct(context.Background(), testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.Error(t, c.Err)
	assert.Equal(t, testDoc, c.Document)
	assert.Equal(t, int32(1), calls.Load(), "4xx other than 429 is not retried")
	assert.Equal(t, 1, c.Attempts)
}

func TestOpenAI_NetworkFailureKeepsDocument(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	o, err := NewOpenAI(Config{
		APIKey:  "test-key",
		BaseURL: "http://" + addr + "/v1",
		Retry:   RetryConfig{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
	})
	require.NoError(t, err)

	c := o.Correct(context.Background(), testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.Error(t, c.Err)
	assert.Equal(t, testDoc, c.Document)
	assert.Equal(t, 3, c.Attempts, "connection refused is retried")
}

func TestOpenAI_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			writeJSON(w, http.StatusTooManyRequests, map[string]any{"error": map[string]any{"message": "slow down"}})
		case 2:
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": map[string]any{"message": "upstream"}})
		default:
			writeJSON(w, http.StatusOK, chatCompletion(map[string]any{"content": "fixed: true"}))
		}
	}, func(c *Config) {
		c.Retry = RetryConfig{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	})

	c := o.Correct(context.Background(), testReq)

	require.NoError(t, c.Err)
	assert.Equal(t, StatusCorrected, c.Status)
	assert.Equal(t, "fixed: true", c.Document)
	assert.Equal(t, 3, c.Attempts)
}

func TestOpenAI_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": map[string]any{"message": "down"}})
	}, func(c *Config) {
		c.Retry = RetryConfig{MaxRetries: 1, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	})

	c := o.Correct(context.Background(), testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.Equal(t, testDoc, c.Document)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 2, c.Attempts)
}

func TestOpenAI_Timeout(t *testing.T) {
	// Closed before the server's cleanup so srv.Close does not wait on the handler
	release := make(chan struct{})
	defer close(release)

	o := newTestOpenAI(t, stallUntil(release), func(c *Config) {
		c.Timeout = 50 * time.Millisecond
	})

	c := o.Correct(context.Background(), testReq)

	assert.Equal(t, StatusTimeout, c.Status)
	assert.ErrorIs(t, c.Err, ErrTimeout)
	assert.Equal(t, testDoc, c.Document)
	assert.True(t, c.Degraded())
}

func TestOpenAI_ParentCancelIsFailure(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	o := newTestOpenAI(t, stallUntil(release), func(c *Config) {
		c.Timeout = time.Minute
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := o.Correct(ctx, testReq)

	assert.Equal(t, StatusFailed, c.Status)
	assert.ErrorIs(t, c.Err, context.Canceled)
	assert.Equal(t, testDoc, c.Document)
}

func TestOpenAI_MaxTokens(t *testing.T) {
	var got map[string]any
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeJSON(w, http.StatusOK, chatCompletion(map[string]any{"content": "x: 1"}))
	}, func(c *Config) {
		c.MaxTokens = 4096
		c.Model = "some/other-model"
	})

	o.Correct(context.Background(), testReq)

	assert.Equal(t, float64(4096), got["max_tokens"])
	assert.Equal(t, "some/other-model", got["model"])
}

func TestNewOpenAI_MissingKey(t *testing.T) {
	_, err := NewOpenAI(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
