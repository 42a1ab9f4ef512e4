package memory

import (
	"fmt"
	"testing"
	"time"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory(0)

	h.Add(Entry{Question: "How many rows?", Answer: "4"})

	if h.Len() != 1 {
		t.Errorf("expected len 1, got %d", h.Len())
	}
	got := h.Recent(0)[0]
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if got.Question != "How many rows?" || got.Answer != "4" {
		t.Errorf("unexpected entry: %+v", got)
	}
}

func TestHistory_Recent(t *testing.T) {
	h := NewHistory(10)
	for _, q := range []string{"First", "Second", "Third"} {
		h.Add(Entry{Question: q})
	}

	if all := h.Recent(0); len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}

	last := h.Recent(2)
	if len(last) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(last))
	}
	if last[0].Question != "Second" || last[1].Question != "Third" {
		t.Errorf("expected [Second Third], got [%s %s]", last[0].Question, last[1].Question)
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Add(Entry{Question: fmt.Sprintf("q%d", i)})
	}

	entries := h.Recent(0)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Question != "q2" {
		t.Errorf("expected oldest kept entry q2, got %s", entries[0].Question)
	}
}

func TestHistory_RecentIsACopy(t *testing.T) {
	h := NewHistory(3)
	h.Add(Entry{Question: "original", Timestamp: time.Unix(0, 0)})

	got := h.Recent(0)
	got[0].Question = "changed"

	if h.Recent(0)[0].Question != "original" {
		t.Error("Recent must not expose internal storage")
	}
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(3)
	h.Add(Entry{Question: "q"})
	h.Clear()

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d", h.Len())
	}
}
