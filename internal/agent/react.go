package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hassan123789/go-data-analyst/internal/logging"
	"github.com/hassan123789/go-data-analyst/internal/llm"
	"github.com/hassan123789/go-data-analyst/internal/prompt"
	"github.com/hassan123789/go-data-analyst/internal/tools"
)

// ReActAgent implements the ReAct (Reasoning + Acting) pattern over the
// plain-text protocol.
//
// Reference: Yao et al., 2022 - "ReAct: Synergizing Reasoning and Acting in Language Models"
// https://arxiv.org/abs/2210.03629
type ReActAgent struct {
	llm    llm.Client
	tools  *tools.Registry
	config Config
	logger *slog.Logger
	trace  io.Writer
}

// NewReActAgent creates a new ReAct agent with the given LLM client and tools.
func NewReActAgent(llmClient llm.Client, toolRegistry *tools.Registry, config Config) *ReActAgent {
	if config.MaxIterations <= 0 {
		config.MaxIterations = 10
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	trace := io.Discard
	if config.Verbose && config.Trace != nil {
		trace = config.Trace
	}

	return &ReActAgent{
		llm:    llmClient,
		tools:  toolRegistry,
		config: config,
		logger: logger,
		trace:  trace,
	}
}

// run is the transcript of one question.
type run struct {
	resp       *Response
	scratchpad []prompt.Exchange
	logger     *slog.Logger
}

// Run answers a question. Model failures are returned as errors; running
// out of iterations is not an error and yields a failed Response.
func (a *ReActAgent) Run(ctx context.Context, question string) (*Response, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.New("question is empty")
	}

	id := uuid.NewString()
	r := &run{
		resp:   &Response{ID: id},
		logger: a.logger.With("run_id", id),
	}
	toolList := a.promptTools()

	r.logger.Info("question received", "question", question)
	fmt.Fprintf(a.trace, "\n> Entering new AgentExecutor chain...\n")

	for i := 0; i < a.config.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.resp.Iterations = i + 1
		a.transition(r, StateAwaitingModel)

		text, err := prompt.Render(prompt.Data{
			Tools:      toolList,
			Question:   question,
			Scratchpad: r.scratchpad,
		})
		if err != nil {
			return nil, err
		}

		completion, err := a.llm.Chat(ctx, llm.UserPrompt(text, StopSequence))
		if err != nil {
			return nil, fmt.Errorf("LLM call failed: %w", err)
		}
		r.resp.Usage.Add(completion.Usage)

		r.logger.Debug("model replied", "iteration", i+1, "completion", completion.Content)
		fmt.Fprintln(a.trace, strings.TrimSpace(completion.Content))

		var observation string

		switch d := Parse(completion.Content).(type) {
		case FinalAnswer:
			r.addThought(d.Thought)
			r.resp.Steps = append(r.resp.Steps, Step{Type: StepTypeFinalAnswer, Content: d.Text})
			r.resp.Output = d.Text
			a.transition(r, StateDone)
			fmt.Fprintf(a.trace, "\n> Finished chain.\n")
			return r.resp, nil

		case ParseError:
			observation = "Invalid Format: " + d.Reason
			r.logger.Debug("unparseable completion", "iteration", i+1, "reason", d.Reason)

		case Action:
			r.addThought(d.Thought)
			r.resp.Steps = append(r.resp.Steps, Step{
				Type:      StepTypeAction,
				Content:   d.Tool,
				ToolName:  d.Tool,
				ToolInput: d.Input,
			})
			observation = a.act(ctx, r, d)
		}

		r.resp.Steps = append(r.resp.Steps, Step{Type: StepTypeObservation, Content: observation, ToolOutput: observation})
		r.scratchpad = append(r.scratchpad, prompt.Exchange{
			Log:         completion.Content,
			Observation: observation,
		})
		fmt.Fprintf(a.trace, "Observation: %s\n", observation)
	}

	r.resp.Output = StoppedOutput
	a.transition(r, StateFailed)
	fmt.Fprintf(a.trace, "\n> Finished chain.\n")
	return r.resp, nil
}

// act runs the requested tool and returns the observation. Unknown tools
// are reported to the model and nothing is executed.
func (a *ReActAgent) act(ctx context.Context, r *run, d Action) string {
	tool, err := a.tools.Lookup(d.Tool)
	if err != nil {
		var unknown *tools.UnknownToolError
		if errors.As(err, &unknown) {
			r.logger.Warn("model requested unknown tool", "tool", d.Tool)
			return fmt.Sprintf("%s is not a valid tool, try one of [%s].", d.Tool, strings.Join(unknown.Known, ", "))
		}
		return tools.Failure(err.Error()).String()
	}

	a.transition(r, StateExecutingTool)
	r.logger.Debug("executing tool", "tool", d.Tool, "input", d.Input)
	return tools.Run(ctx, tool, d.Input)
}

func (r *run) addThought(thought string) {
	if thought != "" {
		r.resp.Steps = append(r.resp.Steps, Step{Type: StepTypeThought, Content: thought})
	}
}

func (a *ReActAgent) transition(r *run, s State) {
	r.resp.State = s
	r.logger.Debug("state", "state", string(s), "iteration", r.resp.Iterations)
	if s == StateDone || s == StateFailed {
		r.logger.Info("question finished", "state", string(s), "iterations", r.resp.Iterations, "tokens", r.resp.Usage.TotalTokens)
	}
}

func (a *ReActAgent) promptTools() []prompt.Tool {
	list := a.tools.List()
	out := make([]prompt.Tool, len(list))
	for i, t := range list {
		out[i] = prompt.Tool{Name: t.Name(), Description: t.Description()}
	}
	return out
}
