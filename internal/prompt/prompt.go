// Package prompt renders the text-protocol ReAct prompt sent to the model on
// every cycle of the reasoning loop.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed react.tmpl
var reactTemplate string

var tmpl = template.Must(template.New("react").Funcs(template.FuncMap{
	"toolNames": ToolNames,
	"trim":      strings.TrimSpace,
}).Parse(reactTemplate))

// Tool is the part of a tool the model gets to see.
type Tool struct {
	Name        string
	Description string
}

// Exchange is one completed cycle of the scratchpad: the model's completion
// and the observation that answered it.
type Exchange struct {
	Log         string
	Observation string
}

// Data is everything a prompt is rendered from.
type Data struct {
	Tools      []Tool
	Question   string
	Scratchpad []Exchange
}

// ToolNames joins tool names for the "should be one of [...]" line.
func ToolNames(tools []Tool) string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

// Render fills the ReAct template. The result always ends with a
// "Thought:" cue for the model to continue from.
func Render(data Data) (string, error) {
	if strings.TrimSpace(data.Question) == "" {
		return "", fmt.Errorf("render prompt: question is empty")
	}
	if len(data.Tools) == 0 {
		return "", fmt.Errorf("render prompt: no tools")
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
