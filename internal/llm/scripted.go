package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrScriptExhausted is returned by Scripted once every reply has been served.
var ErrScriptExhausted = errors.New("scripted client: no replies left")

// Scripted is an in-memory Client that serves canned replies in order.
// It records every request so tests can inspect the prompts it received.
// A reply equal to one of the request's stop sequences is truncated there,
// the way a hosted model would stop.
type Scripted struct {
	mu       sync.Mutex
	replies  []string
	errs     map[int]error
	requests []*ChatRequest
}

// NewScripted returns a client that answers with replies, one per call.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies, errs: make(map[int]error)}
}

// FailOn makes call number n (zero-based) return err instead of a reply.
func (s *Scripted) FailOn(n int, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[n] = err
	return s
}

// Chat returns the next scripted reply.
func (s *Scripted) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	call := len(s.requests)
	s.requests = append(s.requests, req)
	if err, ok := s.errs[call]; ok {
		return nil, err
	}

	// failed calls do not consume a reply
	idx := call - s.failedBefore(call)
	if idx >= len(s.replies) {
		return nil, ErrScriptExhausted
	}

	content := s.replies[idx]
	finish := "stop"
	for _, stop := range req.Stop {
		if stop == "" {
			continue
		}
		if i := strings.Index(content, stop); i >= 0 {
			content = content[:i]
			finish = "stop_sequence"
		}
	}

	return &ChatResponse{
		Content:      content,
		FinishReason: finish,
		Usage: Usage{
			PromptTokens:     len(strings.Fields(promptText(req))),
			CompletionTokens: len(strings.Fields(content)),
			TotalTokens:      len(strings.Fields(promptText(req))) + len(strings.Fields(content)),
		},
	}, nil
}

func (s *Scripted) failedBefore(call int) int {
	n := 0
	for i := range s.errs {
		if i < call {
			n++
		}
	}
	return n
}

// Requests returns the requests received so far.
func (s *Scripted) Requests() []*ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ChatRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns how many times Chat was called.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Close is a no-op.
func (s *Scripted) Close() error {
	return nil
}

func promptText(req *ChatRequest) string {
	var sb strings.Builder
	for _, m := range req.Messages {
		sb.WriteString(m.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
