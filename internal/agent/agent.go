// Package agent runs the text-protocol ReAct loop: it renders a prompt, asks
// the model for a completion, parses it into a final answer or a tool action,
// runs the tool and feeds the observation back until the model answers or the
// iteration budget runs out.
package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/hassan123789/go-data-analyst/internal/llm"
)

// Agent defines the interface for AI agents.
type Agent interface {
	// Run answers one question with a fresh transcript.
	Run(ctx context.Context, question string) (*Response, error)
}

// State is where a run of the loop is.
type State string

const (
	StateAwaitingModel State = "awaiting_model"
	StateExecutingTool State = "executing_tool"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// StoppedOutput is the answer of a run that used its whole budget.
const StoppedOutput = "Agent stopped due to iteration limit or time limit."

// StopSequence keeps the model from writing observations itself.
const StopSequence = "\nObservation:"

// ErrBudgetExhausted is reported by Response.Err for failed runs.
var ErrBudgetExhausted = errors.New("agent: iteration budget exhausted")

// Response represents the result of an agent run.
type Response struct {
	// ID identifies the run in logs.
	ID string `json:"id"`

	// Output is the final answer, or StoppedOutput when State is failed.
	Output string `json:"output"`

	// State is StateDone or StateFailed.
	State State `json:"state"`

	// Steps contains the reasoning and action steps taken.
	Steps []Step `json:"steps,omitempty"`

	// Iterations is the number of model calls made.
	Iterations int `json:"iterations"`

	// Usage contains token usage information.
	Usage llm.Usage `json:"usage"`
}

// Err returns ErrBudgetExhausted for failed runs and nil otherwise.
func (r *Response) Err() error {
	if r.State == StateFailed {
		return ErrBudgetExhausted
	}
	return nil
}

// Step represents a single step in the agent's reasoning process.
type Step struct {
	// Type is the step type: "thought", "action", "observation" or "final_answer".
	Type string `json:"type"`

	// Content is the content of the step.
	Content string `json:"content"`

	// ToolName is the name of the tool called (for action steps).
	ToolName string `json:"tool_name,omitempty"`

	// ToolInput is the input to the tool (for action steps).
	ToolInput string `json:"tool_input,omitempty"`

	// ToolOutput is the output from the tool (for observation steps).
	ToolOutput string `json:"tool_output,omitempty"`
}

// StepType constants for the ReAct loop.
const (
	StepTypeThought     = "thought"
	StepTypeAction      = "action"
	StepTypeObservation = "observation"
	StepTypeFinalAnswer = "final_answer"
)

// Config contains configuration for agents.
type Config struct {
	// MaxIterations is the maximum number of model calls per question.
	// Default is 10.
	MaxIterations int

	// Verbose writes the Thought/Action/Observation trace to Trace.
	Verbose bool

	// Trace receives the verbose trace. Nil discards it.
	Trace io.Writer

	// Logger receives structured run logs. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the default agent configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 10,
		Verbose:       false,
	}
}
