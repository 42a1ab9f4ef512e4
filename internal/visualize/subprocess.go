package visualize

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// stderrTail is how much of the interpreter's stderr is kept for errors.
const stderrTail = 2048

// Subprocess runs code with a Python interpreter in a child process with a
// minimal environment and a wall-clock limit.
type Subprocess struct {
	// Python is the interpreter binary. Default "python3".
	Python string

	// Timeout bounds one run. Default one minute.
	Timeout time.Duration

	// WorkDir is the child's working directory; relative paths in the
	// generated code resolve against it. Default is the current directory.
	WorkDir string

	// DataPath is exported to the child as ANALYST_DATA_PATH.
	DataPath string

	// PlotPath must exist after a successful run.
	PlotPath string
}

// Execute writes code to a temporary file and runs it.
func (s *Subprocess) Execute(ctx context.Context, code string) error {
	python := s.Python
	if python == "" {
		python = "python3"
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	tmp, err := os.MkdirTemp("", "analyst-plot-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	script := filepath.Join(tmp, "plot.py")
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return fmt.Errorf("write script: %w", err)
	}

	if s.PlotPath != "" {
		if err := os.MkdirAll(filepath.Dir(s.plotPathAbs()), 0o755); err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, python, script)
	cmd.Dir = s.WorkDir
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + tmp,
		"MPLBACKEND=Agg",
		"MPLCONFIGDIR=" + tmp,
		"ANALYST_DATA_PATH=" + s.DataPath,
	}
	// grandchildren holding the output pipes must not outlive the timeout
	cmd.WaitDelay = time.Second
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return fmt.Errorf("visualization timed out after %s", timeout)
	case ctx.Err() != nil:
		return ctx.Err()
	case err != nil:
		return fmt.Errorf("visualization code failed: %w: %s", err, tail(stderr.Bytes()))
	}

	if s.PlotPath != "" {
		if _, err := os.Stat(s.plotPathAbs()); err != nil {
			return fmt.Errorf("visualization code did not create '%s'", s.PlotPath)
		}
	}
	return nil
}

func (s *Subprocess) plotPathAbs() string {
	if filepath.IsAbs(s.PlotPath) || s.WorkDir == "" {
		return s.PlotPath
	}
	return filepath.Join(s.WorkDir, s.PlotPath)
}

func tail(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > stderrTail {
		b = b[len(b)-stderrTail:]
	}
	return string(b)
}
