// Package llm provides the language model clients the reasoning loop talks to.
// Every provider is reduced to a single prompt-in, completion-out Chat call.
package llm

import (
	"context"
)

// Message represents a chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatRequest represents a request to the LLM.
type ChatRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32

	// Stop lists sequences at which the model must stop generating.
	Stop []string
}

// ChatResponse represents a response from the LLM.
type ChatResponse struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage contains token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage record.
func (u *Usage) Add(o Usage) {
	u.PromptTokens += o.PromptTokens
	u.CompletionTokens += o.CompletionTokens
	u.TotalTokens += o.TotalTokens
}

// Client defines the interface for LLM providers.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Close releases any resources held by the client.
	Close() error
}

// UserPrompt wraps a single rendered prompt as a one-message request.
func UserPrompt(prompt string, stop ...string) *ChatRequest {
	return &ChatRequest{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		Stop:     stop,
	}
}
