package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderConfig(t *testing.T) {
	t.Run("Hugging Face provider creation", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderHuggingFace,
			APIKey:   "hf_test",
		})
		if err != nil {
			t.Fatalf("failed to create Hugging Face client: %v", err)
		}
		hf, ok := client.(*OpenAIClient)
		if !ok {
			t.Fatalf("expected *OpenAIClient, got %T", client)
		}
		if hf.Model() != HuggingFaceLlama3_1_8B {
			t.Errorf("expected default model %q, got %q", HuggingFaceLlama3_1_8B, hf.Model())
		}
		_ = client.Close()
	})

	t.Run("OpenAI provider creation", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderOpenAI,
			APIKey:   "test-key",
			Model:    "gpt-4o-mini",
		})
		if err != nil {
			t.Fatalf("failed to create OpenAI client: %v", err)
		}
		if client == nil {
			t.Fatal("client should not be nil")
		}
		_ = client.Close()
	})

	t.Run("Claude provider creation", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderClaude,
			APIKey:   "test-key",
			Model:    ClaudeHaiku35,
		})
		if err != nil {
			t.Fatalf("failed to create Claude client: %v", err)
		}
		if client == nil {
			t.Fatal("client should not be nil")
		}
		_ = client.Close()
	})

	t.Run("Ollama provider needs no key", func(t *testing.T) {
		client, err := NewClient(ProviderConfig{
			Provider: ProviderOllama,
		})
		if err != nil {
			t.Fatalf("failed to create Ollama client: %v", err)
		}
		if client.(*OpenAIClient).Model() != OllamaLlama3_1 {
			t.Errorf("unexpected default model %q", client.(*OpenAIClient).Model())
		}
		_ = client.Close()
	})

	t.Run("Hosted providers require a key", func(t *testing.T) {
		for _, p := range []Provider{ProviderHuggingFace, ProviderOpenAI, ProviderClaude} {
			if _, err := NewClient(ProviderConfig{Provider: p}); err == nil {
				t.Errorf("%s: expected error for missing key", p)
			}
		}
	})

	t.Run("Missing provider returns error", func(t *testing.T) {
		_, err := NewClient(ProviderConfig{
			APIKey: "test-key",
		})
		if err == nil {
			t.Fatal("expected error for missing provider")
		}
	})

	t.Run("Unsupported provider returns error", func(t *testing.T) {
		_, err := NewClient(ProviderConfig{
			Provider: "unsupported",
			APIKey:   "test-key",
		})
		if err == nil {
			t.Fatal("expected error for unsupported provider")
		}
	})
}

func TestOpenAICompatibleChat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Final Answer: 42"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 3, "total_tokens": 10}
		}`))
	}))
	defer srv.Close()

	client, err := NewHuggingFaceClient(OpenAIConfig{
		APIKey:  "hf_test",
		Model:   "test-model",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)

	resp, err := client.Chat(context.Background(), UserPrompt("How many rows?", "\nObservation:"))
	require.NoError(t, err)

	assert.Equal(t, "Final Answer: 42", resp.Content)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, 10, resp.Usage.TotalTokens)

	assert.Equal(t, "test-model", got["model"])
	assert.Equal(t, []any{"\nObservation:"}, got["stop"])
	assert.InDelta(t, 0.1, got["temperature"], 1e-6)
}

func TestOpenAICompatibleChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "model not found", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	client, err := NewOllamaClient(OpenAIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), UserPrompt("hi"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
}
