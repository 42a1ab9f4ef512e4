// Package session drives the interactive question loop: it reads a line,
// dispatches commands, runs the analyst on everything else and prints the
// answer. A failed question never ends the session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/hassan123789/go-data-analyst/internal/agent"
	"github.com/hassan123789/go-data-analyst/internal/logging"
	"github.com/hassan123789/go-data-analyst/internal/memory"
	"github.com/hassan123789/go-data-analyst/internal/ux"
)

// Commands recognized at the prompt, matched case-insensitively.
const (
	CommandExit      = "exit"
	CommandVisualize = "visualize"
	CommandHistory   = "history"
)

const responseTitle = "Analyst's Response"

// Visualizer produces the plot image on request.
type Visualizer interface {
	Run(ctx context.Context) (string, error)
	PlotPath() string
}

// Session is one interactive run of the analyst.
type Session struct {
	agent      agent.Agent
	input      InputReader
	console    *ux.Console
	history    *memory.History
	visualizer Visualizer
	logger     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithVisualizer enables the visualize command.
func WithVisualizer(v Visualizer) Option {
	return func(s *Session) {
		s.visualizer = v
	}
}

// WithHistory sets the history the session records answers in.
func WithHistory(h *memory.History) Option {
	return func(s *Session) {
		s.history = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a session reading from input and printing to console.
func New(a agent.Agent, input InputReader, console *ux.Console, opts ...Option) *Session {
	s := &Session{
		agent:   a,
		input:   input,
		console: console,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = memory.NewHistory(memory.DefaultMaxSize)
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	return s
}

// Run loops until the user types exit, input ends or ctx is canceled.
// Only a failure to read input is returned as an error.
func (s *Session) Run(ctx context.Context) error {
	s.console.Info("")
	s.console.Title(ux.IconRobot, "AI Data Analyst is ready. Ask a question about your data.")
	hint := "   Type 'exit' to quit, 'history' to list answered questions"
	if s.visualizer != nil {
		hint += ", 'visualize' to plot the data"
	}
	s.console.Muted(hint + ".")

	for {
		if ctx.Err() != nil {
			s.goodbye()
			return nil
		}

		s.console.Prompt("\nYour question: ")
		line, err := s.readLine(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.console.Info("")
			s.goodbye()
			return nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.console.Info("")
				s.goodbye()
				return nil
			}
			s.logger.Error("failed to read input", "error", err)
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case CommandExit:
			s.goodbye()
			return nil
		case CommandHistory:
			s.printHistory()
			continue
		case CommandVisualize:
			if s.visualizer != nil {
				s.visualize(ctx)
				continue
			}
		}

		s.ask(ctx, line)
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine waits for the next line or for ctx to end. A read abandoned on
// cancellation is left to finish in the background; its line is dropped.
func (s *Session) readLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := s.input.ReadLine()
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

func (s *Session) goodbye() {
	s.console.Info(string(ux.IconWave) + " Goodbye!")
}

func (s *Session) ask(ctx context.Context, question string) {
	s.console.Info("\n" + string(ux.IconThinking) + " Thinking...")

	resp, err := s.answer(ctx, question)
	if err != nil {
		s.logger.Error("question failed", "question", question, "error", err)
		s.console.Error(fmt.Sprintf("An error occurred: %v", err))
		return
	}

	s.console.Response(responseTitle, resp.Output)
	s.history.Add(memory.Entry{
		ID:         resp.ID,
		Question:   question,
		Answer:     resp.Output,
		Failed:     resp.State == agent.StateFailed,
		Iterations: resp.Iterations,
	})
}

// answer runs the agent, converting a panic anywhere below into an error.
func (s *Session) answer(ctx context.Context, question string) (resp *agent.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic while answering", "panic", rec, "stack", string(debug.Stack()))
			resp, err = nil, fmt.Errorf("internal error: %v", rec)
		}
	}()

	resp, err = s.agent.Run(ctx, question)
	if err == nil && resp == nil {
		err = errors.New("agent returned no response")
	}
	return resp, err
}

func (s *Session) visualize(ctx context.Context) {
	s.console.Info("\n" + string(ux.IconChart) + " Generating visualization...")

	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("internal error: %v", rec)
			}
		}()
		_, err = s.visualizer.Run(ctx)
		return err
	}()
	if err != nil {
		s.logger.Error("visualization failed", "error", err)
		s.console.Error(fmt.Sprintf("Failed to create visualization: %v", err))
		return
	}
	s.console.Success(fmt.Sprintf("Visualization saved to '%s'.", s.visualizer.PlotPath()))
}

func (s *Session) printHistory() {
	entries := s.history.Recent(0)
	if len(entries) == 0 {
		s.console.Muted("No questions answered yet.")
		return
	}
	for i, e := range entries {
		status := ""
		if e.Failed {
			status = " (stopped)"
		}
		s.console.Info(fmt.Sprintf("%d. [%s] %s%s", i+1, e.Timestamp.Format("15:04:05"), e.Question, status))
		s.console.Muted("   " + firstLine(e.Answer))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
