package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// SaveReport writes the model's final summary to a fixed report file,
// replacing any previous content.
type SaveReport struct {
	path string
}

// NewSaveReport creates a report tool writing to path.
func NewSaveReport(path string) *SaveReport {
	return &SaveReport{path: path}
}

// Name returns the tool name.
func (s *SaveReport) Name() string {
	return "save_report"
}

// Path returns the report file location.
func (s *SaveReport) Path() string {
	return s.path
}

// Description returns what this tool does.
func (s *SaveReport) Description() string {
	return fmt.Sprintf("Saves the given text content to the report file '%s'. "+
		"Use this tool at the end of your analysis to save the final summary and findings.", s.path)
}

// Parameters returns the input schema.
func (s *SaveReport) Parameters() ParameterSchema {
	return ParameterSchema{
		Properties: []Property{{
			Name:        "report_content",
			Type:        "string",
			Description: "The full text of the report.",
			Required:    true,
		}},
	}
}

// Execute overwrites the report file with the input verbatim.
func (s *SaveReport) Execute(_ context.Context, input string) (Result, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return FailureText("Failed to save report. Error: %v", err), nil
		}
	}
	if err := os.WriteFile(s.path, []byte(input), 0o644); err != nil {
		return FailureText("Failed to save report. Error: %v", err), nil
	}
	return SuccessWithMetadata(
		fmt.Sprintf("Successfully saved the report to '%s'.", s.path),
		map[string]any{"bytes": len(input)},
	), nil
}
