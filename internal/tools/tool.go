// Package tools provides the closed set of tools the analyst can call while
// reasoning: a dataframe query tool, an outlier detector and a report saver.
// Tools receive the raw "Action Input" text chosen by the model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Tool represents an external capability that the reasoning loop can invoke.
type Tool interface {
	// Name returns the unique identifier the model uses in its "Action:" line.
	Name() string

	// Description returns what this tool does. It is shown to the model.
	Description() string

	// Parameters returns the input schema of the tool.
	Parameters() ParameterSchema

	// Execute runs the tool with the model-provided input text.
	// Tool faults are reported through a Failure result, not the error.
	Execute(ctx context.Context, input string) (Result, error)
}

// ParameterSchema is an ordered list of named input parameters.
type ParameterSchema struct {
	Properties []Property `json:"properties"`
}

// Property defines a single named parameter.
type Property struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Result represents the output of a tool execution.
type Result struct {
	// Metadata contains additional information about the execution.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Output is the main result content returned to the model.
	Output string `json:"output"`

	// Error contains the error message if the tool execution failed.
	Error string `json:"error,omitempty"`

	// bare failures are shown to the model without the "Error: " prefix.
	bare bool
}

// Success creates a successful result with the given output.
func Success(output string) Result {
	return Result{Output: output}
}

// SuccessWithMetadata creates a successful result with output and metadata.
func SuccessWithMetadata(output string, metadata map[string]any) Result {
	return Result{Output: output, Metadata: metadata}
}

// Failure creates a failed result with the given error message.
func Failure(errMsg string) Result {
	return Result{Error: errMsg}
}

// Failuref creates a failed result from a format string.
func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

// FailureText creates a failed result whose message is already worded for
// the model and is shown verbatim.
func FailureText(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...), bare: true}
}

// IsSuccess returns true if the result represents a successful execution.
func (r Result) IsSuccess() bool {
	return r.Error == ""
}

// String returns the observation text for the model.
func (r Result) String() string {
	if r.Error != "" {
		if r.bare {
			return r.Error
		}
		return "Error: " + r.Error
	}
	return r.Output
}

// SingleArgument extracts the value of a one-parameter tool from the raw
// action input. Models send the value bare, quoted, or as a JSON object such
// as {"data_column": "sales"}; all three forms are accepted.
func SingleArgument(input, key string) string {
	s := strings.TrimSpace(input)
	if strings.HasPrefix(s, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			if v, ok := obj[key]; ok {
				return strings.TrimSpace(fmt.Sprint(v))
			}
			if len(obj) == 1 {
				for _, v := range obj {
					return strings.TrimSpace(fmt.Sprint(v))
				}
			}
		}
	}
	return Unquote(s)
}

// Unquote strips one layer of matching quotes or backticks.
func Unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'' || first == '`') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
