// Package memory keeps the questions answered during one analyst session so
// the user can list them again. Nothing is persisted and nothing is fed back
// to the model: every question still starts with a fresh transcript.
package memory

import (
	"sync"
	"time"
)

// Entry is one answered question.
type Entry struct {
	// ID is the run id the reasoning loop logged the question under.
	ID string `json:"id"`

	Question string `json:"question"`
	Answer   string `json:"answer"`

	// Failed is true when the loop ran out of iterations.
	Failed bool `json:"failed,omitempty"`

	// Iterations is the number of model calls the answer took.
	Iterations int `json:"iterations"`

	// Timestamp is when the answer was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// History implements a ring buffer of the most recent entries.
type History struct {
	entries []Entry
	maxSize int
	mu      sync.RWMutex
}

// DefaultMaxSize is used when NewHistory is given a non-positive size.
const DefaultMaxSize = 100

// NewHistory creates an empty history that keeps at most maxSize entries.
func NewHistory(maxSize int) *History {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &History{
		entries: make([]Entry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add records an entry. If the buffer is full, the oldest entry is discarded.
// A zero Timestamp is set to the current time.
func (h *History) Add(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.maxSize {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, e)
}

// Recent returns up to limit of the newest entries, oldest first.
// If limit is 0 or greater than the buffer size, all entries are returned.
func (h *History) Recent(limit int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 || limit > len(h.entries) {
		limit = len(h.entries)
	}

	start := len(h.entries) - limit
	result := make([]Entry, limit)
	copy(result, h.entries[start:])
	return result
}

// Len returns the number of entries held.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]Entry, 0, h.maxSize)
}
