package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Default endpoints and models for the OpenAI-compatible providers.
const (
	HuggingFaceBaseURL = "https://router.huggingface.co/v1"
	OllamaBaseURL      = "http://localhost:11434/v1"

	HuggingFaceLlama3_1_8B = "meta-llama/Llama-3.1-8B-Instruct"
	OllamaLlama3_1         = "llama3.1"
)

// OpenAIClient implements Client against any OpenAI-compatible chat API:
// OpenAI itself, the Hugging Face inference router and Ollama.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	defaultMax  int
	temperature float32
}

// OpenAIConfig contains configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32

	// BaseURL overrides the API endpoint. Empty means api.openai.com.
	BaseURL string
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return newCompatClient(cfg), nil
}

// NewHuggingFaceClient creates a client for the Hugging Face inference router.
func NewHuggingFaceClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("Hugging Face access token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = HuggingFaceBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = HuggingFaceLlama3_1_8B
	}
	return newCompatClient(cfg), nil
}

// NewOllamaClient creates a client for a local Ollama server. No key is needed.
func NewOllamaClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = OllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = OllamaLlama3_1
	}
	return newCompatClient(cfg), nil
}

func newCompatClient(cfg OpenAIConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.1
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		defaultMax:  maxTokens,
		temperature: temperature,
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Chat sends a chat completion request and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.defaultMax
	}

	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stop:        req.Stop,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in response")
	}

	return &ChatResponse{
		Content:      resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// Close releases any resources held by the client.
func (c *OpenAIClient) Close() error {
	// go-openai keeps no resources beyond the shared HTTP client
	return nil
}
