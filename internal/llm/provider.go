package llm

import (
	"errors"
	"fmt"
)

// Provider represents the type of LLM provider.
type Provider string

const (
	ProviderHuggingFace Provider = "huggingface"
	ProviderOpenAI      Provider = "openai"
	ProviderClaude      Provider = "claude"
	ProviderOllama      Provider = "ollama"
)

// ProviderConfig contains configuration for creating an LLM client.
type ProviderConfig struct {
	// Provider specifies which LLM provider to use
	Provider Provider

	// APIKey is the credential for hosted providers
	APIKey string

	// Model is the model name to use; empty selects the provider default
	Model string

	// MaxTokens is the default max tokens for completions
	MaxTokens int

	// Temperature is the default sampling temperature
	Temperature float32

	// BaseURL overrides the provider endpoint
	BaseURL string
}

// NewClient creates a new LLM client based on the provider configuration.
func NewClient(cfg ProviderConfig) (Client, error) {
	compat := OpenAIConfig{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		BaseURL:     cfg.BaseURL,
	}

	switch cfg.Provider {
	case ProviderHuggingFace:
		return NewHuggingFaceClient(compat)

	case ProviderOpenAI:
		return NewOpenAIClient(compat)

	case ProviderOllama:
		return NewOllamaClient(compat)

	case ProviderClaude:
		return NewClaudeClient(ClaudeConfig{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
		})

	case "":
		return nil, errors.New("provider is required")

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
