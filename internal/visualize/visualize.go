// Package visualize asks the analyst for plotting code and runs it in a
// separate Python process to produce the visualization image.
package visualize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hassan123789/go-data-analyst/internal/agent"
	"github.com/hassan123789/go-data-analyst/internal/logging"
)

// ErrNoCode is returned when the model's answer holds no code.
var ErrNoCode = errors.New("visualize: response contains no code")

var codeBlockRegex = regexp.MustCompile("(?s)```[ \\t]*[A-Za-z0-9_+-]*[ \\t]*\\r?\\n(.*?)```")

// ExtractCode returns the body of the first fenced code block. Without a
// fence the whole response is taken as code.
func ExtractCode(response string) string {
	if m := codeBlockRegex.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}

// Request is the question sent to the analyst for a plot of the dataset.
func Request(dataPath, plotPath string) string {
	return fmt.Sprintf("Write Python code that uses pandas and matplotlib to load the CSV file at '%s' "+
		"(its path is also in the ANALYST_DATA_PATH environment variable) and draw the most informative "+
		"chart of the sales data. The code must save the figure to '%s' with plt.savefig and must not call plt.show(). "+
		"Your Final Answer must be only the runnable code in a single ```python block, with no explanation.",
		dataPath, plotPath)
}

// Executor runs generated plotting code.
type Executor interface {
	Execute(ctx context.Context, code string) error
}

// Bridge connects the reasoning loop to a code executor.
type Bridge struct {
	agent    agent.Agent
	exec     Executor
	dataPath string
	plotPath string
	logger   *slog.Logger
}

// NewBridge creates a bridge. A nil logger discards logs.
func NewBridge(a agent.Agent, exec Executor, dataPath, plotPath string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Bridge{
		agent:    a,
		exec:     exec,
		dataPath: dataPath,
		plotPath: plotPath,
		logger:   logger,
	}
}

// PlotPath returns where the image is written.
func (b *Bridge) PlotPath() string {
	return b.plotPath
}

// Run asks for plotting code and executes it. It returns the executed code.
func (b *Bridge) Run(ctx context.Context) (string, error) {
	resp, err := b.agent.Run(ctx, Request(b.dataPath, b.plotPath))
	if err != nil {
		return "", fmt.Errorf("request plotting code: %w", err)
	}
	if err := resp.Err(); err != nil {
		return "", fmt.Errorf("request plotting code: %w", err)
	}

	code := ExtractCode(resp.Output)
	if code == "" {
		return "", ErrNoCode
	}

	b.logger.Info("running visualization code", "run_id", resp.ID, "bytes", len(code))
	return code, b.exec.Execute(ctx, code)
}
