package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Sameerk99/mental-health-hub/internal/config"
	"github.com/Sameerk99/mental-health-hub/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, timeoutSeconds int) llm.Client {
	return llm.NewClient(config.LLMConfig{
		APIKey:         "test-key",
		BaseURL:        baseURL,
		Model:          "gpt-3.5-turbo",
		TimeoutSeconds: timeoutSeconds,
	})
}

func completionBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestChatCompletionReturnsContent(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("Take a short walk today.")))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 10)
	temp, topP, maxTokens := 0.7, 0.9, 250
	reply, err := client.ChatCompletion(context.Background(),
		[]llm.Message{{Role: "user", Content: "hello"}},
		&llm.GenerationParams{Temperature: &temp, TopP: &topP, MaxTokens: &maxTokens},
	)
	require.NoError(t, err)
	assert.Equal(t, "Take a short walk today.", reply)

	assert.Equal(t, "/chat/completions", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gotBody["model"])
	assert.InDelta(t, 0.7, gotBody["temperature"], 1e-9)
	assert.InDelta(t, 0.9, gotBody["top_p"], 1e-9)
	assert.EqualValues(t, 250, gotBody["max_tokens"])
}

func TestChatCompletionRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 10)
	_, err := client.ChatCompletion(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, llm.ErrRateLimited)
}

func TestChatCompletionServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 10)
	_, err := client.ChatCompletion(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, llm.ErrService)
}

func TestChatCompletionMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 10)
	_, err := client.ChatCompletion(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, llm.ErrService)
}

func TestChatCompletionConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := newTestClient(baseURL, 10)
	_, err := client.ChatCompletion(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, llm.ErrConnection)
}

func TestChatCompletionTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(completionBody("too late")))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ChatCompletion(ctx, []llm.Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, llm.ErrConnection)
}
