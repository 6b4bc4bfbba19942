package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestComplete(t *testing.T) {
	t.Run("sends prompts and returns trimmed content", func(t *testing.T) {
		var gotAuth string
		var gotRequest chatRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"content": "  Interested \n"}},
				},
			})
		}))
		defer server.Close()

		client := NewClientWithBaseURL("test-key", "test-model", server.URL)
		result, err := client.Complete(context.Background(), "system prompt", "user prompt", 20, 0.2)
		if err != nil {
			t.Fatalf("Complete() returned error: %v", err)
		}

		if result != "Interested" {
			t.Errorf("expected 'Interested', got '%s'", result)
		}
		if gotAuth != "Bearer test-key" {
			t.Errorf("expected Authorization 'Bearer test-key', got '%s'", gotAuth)
		}
		if gotRequest.Model != "test-model" {
			t.Errorf("expected model 'test-model', got '%s'", gotRequest.Model)
		}
		if gotRequest.MaxTokens != 20 {
			t.Errorf("expected max_tokens 20, got %d", gotRequest.MaxTokens)
		}
		if len(gotRequest.Messages) != 2 || gotRequest.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", gotRequest.Messages)
		}
	})

	t.Run("returns error on non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClientWithBaseURL("test-key", "", server.URL)
		_, err := client.Complete(context.Background(), "s", "u", 20, 0.2)
		if err == nil {
			t.Fatal("expected error for 429 response")
		}
	})

	t.Run("returns error when response has no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		client := NewClientWithBaseURL("test-key", "", server.URL)
		_, err := client.Complete(context.Background(), "s", "u", 20, 0.2)
		if err == nil {
			t.Fatal("expected error for empty choices")
		}
	})
}
