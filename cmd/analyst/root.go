package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hassan123789/go-data-analyst/internal/agent"
	"github.com/hassan123789/go-data-analyst/internal/config"
	"github.com/hassan123789/go-data-analyst/internal/dataset"
	"github.com/hassan123789/go-data-analyst/internal/llm"
	"github.com/hassan123789/go-data-analyst/internal/logging"
	"github.com/hassan123789/go-data-analyst/internal/memory"
	"github.com/hassan123789/go-data-analyst/internal/session"
	"github.com/hassan123789/go-data-analyst/internal/tools"
	"github.com/hassan123789/go-data-analyst/internal/ux"
	"github.com/hassan123789/go-data-analyst/internal/visualize"
)

// errStartup marks a fault that was already reported to the user.
var errStartup = errors.New("startup failed")

// app holds what a single invocation needs besides its flags.
type app struct {
	v       *viper.Viper
	cfgFile string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	plain   bool
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"data":           "data_path",
	"report":         "report_path",
	"provider":       "provider",
	"model":          "model",
	"max-iterations": "max_iterations",
	"visualize":      "visualize",
	"verbose":        "verbose",
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyst",
		Short: "Ask questions about a CSV dataset in plain language",
		Long: `analyst loads a CSV file and answers free-text questions about it with a
language model that can query the data, detect outliers and save reports.

Type 'exit' to quit, 'history' to list answered questions and, with
--visualize, 'visualize' to render a chart of the data.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringVar(&a.cfgFile, "config", "", "config file (YAML)")
	f.String("data", "", "CSV file to analyze (default input/sales_data.csv)")
	f.String("report", "", "report file written by save_report (default reports/analysis_report.txt)")
	f.String("provider", "", "model provider: huggingface, openai, claude or ollama")
	f.String("model", "", "model name (provider default when empty)")
	f.Int("max-iterations", 0, "reasoning cycles per question (default 10)")
	f.Bool("visualize", false, "enable the visualize command")
	f.BoolP("verbose", "v", false, "print the Thought/Action/Observation trace")

	for flag, key := range flagKeys {
		_ = a.v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

func (a *app) run(ctx context.Context) error {
	console := ux.NewConsole(a.stdout)
	if a.plain {
		console = ux.NewPlainConsole(a.stdout)
	}

	console.Title(ux.IconRocket, "Starting the Autonomous Data Analyst...")

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		console.Error(fmt.Sprintf("Error loading configuration: %v", err))
		return errStartup
	}

	logger := logging.New(a.stderr, cfg.LogLevel, false)

	client, err := newModelClient(cfg, logger)
	if err != nil {
		console.Error(fmt.Sprintf("Error initializing language model: %v", err))
		return errStartup
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close model client", "error", err)
		}
	}()
	console.Success("Language model initialized successfully.")

	data, err := dataset.Load(cfg.DataPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			console.Error(fmt.Sprintf("Error: '%s' not found.", cfg.DataPath))
		} else {
			console.Error(fmt.Sprintf("Error loading '%s': %v", cfg.DataPath, err))
		}
		return errStartup
	}
	console.Success("CSV data loaded successfully.")
	logger.Info("dataset loaded", "path", cfg.DataPath, "rows", data.Len(), "columns", len(data.Columns()))

	registry := tools.NewAnalystRegistry(data, cfg.ReportPath)
	analyst := agent.NewReActAgent(client, registry, agent.Config{
		MaxIterations: cfg.MaxIterations,
		Verbose:       cfg.Verbose,
		Trace:         a.stdout,
		Logger:        logger,
	})
	console.Success("Analysis agent with custom tools is ready.")

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithHistory(memory.NewHistory(memory.DefaultMaxSize)),
	}
	if cfg.Visualize {
		wd, err := os.Getwd()
		if err != nil {
			console.Error(fmt.Sprintf("Error: %v", err))
			return errStartup
		}
		runner := &visualize.Subprocess{
			Python:   cfg.PythonBin,
			Timeout:  cfg.VisualizeTimeout,
			WorkDir:  wd,
			DataPath: absPath(wd, cfg.DataPath),
			PlotPath: cfg.PlotPath,
		}
		opts = append(opts, session.WithVisualizer(
			visualize.NewBridge(analyst, runner, cfg.DataPath, cfg.PlotPath, logger),
		))
	}

	return session.New(analyst, session.NewLineReader(a.stdin), console, opts...).Run(ctx)
}

func newModelClient(cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	client, err := llm.NewClient(llm.ProviderConfig{
		Provider:    llm.Provider(cfg.Provider),
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		BaseURL:     cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return llm.WithRetry(client, llm.DefaultRetryConfig(), logger), nil
}

func absPath(wd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(wd, p)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// a second interrupt kills the process
	go func() {
		<-ctx.Done()
		stop()
	}()

	a := &app{
		v:      config.New(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errStartup) {
			fmt.Fprintln(os.Stderr, "✗ Error:", err)
		}
		return 1
	}
	return 0
}
