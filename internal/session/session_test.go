package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hassan123789/go-data-analyst/internal/agent"
	"github.com/hassan123789/go-data-analyst/internal/memory"
	"github.com/hassan123789/go-data-analyst/internal/ux"
)

// scriptedInput returns predetermined lines, then err (io.EOF by default).
type scriptedInput struct {
	lines []string
	err   error
}

func (s *scriptedInput) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

type mockAgent struct {
	runFunc   func(question string) (*agent.Response, error)
	questions []string
}

func (m *mockAgent) Run(_ context.Context, question string) (*agent.Response, error) {
	m.questions = append(m.questions, question)
	if m.runFunc != nil {
		return m.runFunc(question)
	}
	return &agent.Response{ID: "run-1", State: agent.StateDone, Output: "answer to " + question, Iterations: 1}, nil
}

type mockVisualizer struct {
	calls int
	err   error
}

func (m *mockVisualizer) Run(context.Context) (string, error) {
	m.calls++
	return "plt.savefig('p.png')", m.err
}

func (m *mockVisualizer) PlotPath() string { return "reports/visualization.png" }

func newSession(a agent.Agent, lines []string, opts ...Option) (*Session, *bytes.Buffer) {
	var out bytes.Buffer
	return New(a, &scriptedInput{lines: lines}, ux.NewPlainConsole(&out), opts...), &out
}

func TestSession_ExitIsCaseInsensitive(t *testing.T) {
	for _, kw := range []string{"exit", "Exit", "EXIT", "  eXiT  "} {
		t.Run(kw, func(t *testing.T) {
			a := &mockAgent{}
			s, out := newSession(a, []string{kw, "never asked"})

			require.NoError(t, s.Run(context.Background()))
			assert.Empty(t, a.questions, "exit keyword must not reach the agent")
			assert.Contains(t, out.String(), "Goodbye!")
		})
	}
}

func TestSession_AnswersQuestions(t *testing.T) {
	a := &mockAgent{}
	s, out := newSession(a, []string{"What is the total sales?", "", "   ", "exit"})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"What is the total sales?"}, a.questions)
	assert.Contains(t, out.String(), "--- Analyst's Response ---\nanswer to What is the total sales?\n")
	assert.Contains(t, out.String(), "Thinking...")
}

func TestSession_SurvivesFailedQuestion(t *testing.T) {
	calls := 0
	a := &mockAgent{runFunc: func(q string) (*agent.Response, error) {
		calls++
		switch calls {
		case 1:
			return nil, errors.New("LLM call failed: 503")
		case 2:
			panic("nil map")
		}
		return &agent.Response{State: agent.StateDone, Output: "fine"}, nil
	}}
	s, out := newSession(a, []string{"q1", "q2", "q3", "exit"})

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, a.questions, 3)
	assert.Contains(t, out.String(), "An error occurred: LLM call failed: 503")
	assert.Contains(t, out.String(), "An error occurred: internal error: nil map")
	assert.Contains(t, out.String(), "fine")
}

func TestSession_BudgetExhaustedIsPrinted(t *testing.T) {
	a := &mockAgent{runFunc: func(string) (*agent.Response, error) {
		return &agent.Response{State: agent.StateFailed, Output: agent.StoppedOutput}, nil
	}}
	h := memory.NewHistory(10)
	s, out := newSession(a, []string{"loop", "exit"}, WithHistory(h))

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), agent.StoppedOutput)
	require.Equal(t, 1, h.Len())
	assert.True(t, h.Recent(0)[0].Failed)
}

func TestSession_EOFEndsSession(t *testing.T) {
	a := &mockAgent{}
	s, out := newSession(a, []string{"one question"})

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, a.questions, 1)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestSession_ReadErrorIsReturned(t *testing.T) {
	var out bytes.Buffer
	s := New(&mockAgent{}, &scriptedInput{err: errors.New("tty gone")}, ux.NewPlainConsole(&out))

	err := s.Run(context.Background())
	assert.ErrorContains(t, err, "tty gone")
}

func TestSession_CanceledContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &mockAgent{}
	s, _ := newSession(a, []string{"q"})
	require.NoError(t, s.Run(ctx))
	assert.Empty(t, a.questions)
}

// blockingInput blocks in ReadLine until release is closed.
type blockingInput struct {
	reading chan struct{}
	release chan struct{}
}

func (b *blockingInput) ReadLine() (string, error) {
	close(b.reading)
	<-b.release
	return "late question", nil
}

func TestSession_CancelWhileReading(t *testing.T) {
	input := &blockingInput{reading: make(chan struct{}), release: make(chan struct{})}
	defer close(input.release)

	var out bytes.Buffer
	a := &mockAgent{}
	s := New(a, input, ux.NewPlainConsole(&out))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-input.reading:
	case <-time.After(2 * time.Second):
		t.Fatal("session never started reading")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.Empty(t, a.questions)
	assert.Contains(t, out.String(), "Goodbye!")
}

func TestSession_History(t *testing.T) {
	a := &mockAgent{}
	s, out := newSession(a, []string{"history", "How many rows?", "HISTORY", "exit"})

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"How many rows?"}, a.questions)

	text := out.String()
	assert.Contains(t, text, "No questions answered yet.")
	assert.Contains(t, text, "How many rows?")
	assert.Contains(t, text, "   answer to How many rows?")
}

func TestSession_Visualize(t *testing.T) {
	t.Run("enabled", func(t *testing.T) {
		v := &mockVisualizer{}
		a := &mockAgent{}
		s, out := newSession(a, []string{"Visualize", "exit"}, WithVisualizer(v))

		require.NoError(t, s.Run(context.Background()))
		assert.Equal(t, 1, v.calls)
		assert.Empty(t, a.questions)
		assert.Contains(t, out.String(), "Visualization saved to 'reports/visualization.png'.")
	})

	t.Run("failure is reported", func(t *testing.T) {
		v := &mockVisualizer{err: errors.New("python3 not found")}
		s, out := newSession(&mockAgent{}, []string{"visualize", "exit"}, WithVisualizer(v))

		require.NoError(t, s.Run(context.Background()))
		assert.Contains(t, out.String(), "Failed to create visualization: python3 not found")
	})

	t.Run("disabled means a plain question", func(t *testing.T) {
		a := &mockAgent{}
		s, out := newSession(a, []string{"visualize", "exit"})

		require.NoError(t, s.Run(context.Background()))
		assert.Equal(t, []string{"visualize"}, a.questions)
		assert.False(t, strings.Contains(out.String(), "'visualize' to plot"))
	})
}

func TestLineReader(t *testing.T) {
	r := NewLineReader(strings.NewReader("first\r\nsecond\nlast"))

	for _, want := range []string{"first", "second", "last"} {
		got, err := r.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}
