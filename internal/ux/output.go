// Package ux provides terminal output styling for the analyst CLI.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	ColorPrimary = lipgloss.Color("#20B9B4")
	ColorBright  = lipgloss.Color("#2CD7C7")
	ColorBorder  = lipgloss.Color("#16858E")
	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#5C7A84")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title   lipgloss.Style
	Prompt  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorBright),
	Prompt:  lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess  Icon = "✅"
	IconError    Icon = "✗"
	IconWarning  Icon = "⚠"
	IconRocket   Icon = "🚀"
	IconRobot    Icon = "🤖"
	IconThinking Icon = "🧠"
	IconWave     Icon = "👋"
	IconChart    Icon = "📊"
)

// Console writes styled output to a writer. A plain console writes the
// same text without colors or borders, for pipes and tests.
type Console struct {
	out   io.Writer
	plain bool
}

// NewConsole returns a styled console.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// NewPlainConsole returns a console that never emits escape sequences.
func NewPlainConsole(out io.Writer) *Console {
	return &Console{out: out, plain: true}
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.out
}

func (c *Console) render(s lipgloss.Style, text string) string {
	if c.plain {
		return text
	}
	return s.Render(text)
}

// Title prints a styled title line.
func (c *Console) Title(icon Icon, text string) {
	fmt.Fprintf(c.out, "%s %s\n", icon, c.render(Styles.Title, text))
}

// Success prints a completed startup step.
func (c *Console) Success(text string) {
	fmt.Fprintf(c.out, "%s %s\n", IconSuccess, c.render(Styles.Success, text))
}

// Warning prints a warning message.
func (c *Console) Warning(text string) {
	fmt.Fprintf(c.out, "%s %s\n", IconWarning, c.render(Styles.Warning, text))
}

// Error prints an error message as is, in red when styled.
func (c *Console) Error(text string) {
	fmt.Fprintln(c.out, c.render(Styles.Error, text))
}

// Info prints a plain line.
func (c *Console) Info(text string) {
	fmt.Fprintln(c.out, text)
}

// Muted prints secondary text.
func (c *Console) Muted(text string) {
	fmt.Fprintln(c.out, c.render(Styles.Muted, text))
}

// Prompt prints the input prompt without a trailing newline.
func (c *Console) Prompt(text string) {
	fmt.Fprint(c.out, c.render(Styles.Prompt, text))
}

// Response prints an answer under a heading. The plain form is framed by
// dashed rules.
func (c *Console) Response(title, body string) {
	if c.plain {
		fmt.Fprintf(c.out, "\n--- %s ---\n%s\n%s\n", title, body, strings.Repeat("-", len(title)+8))
		return
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, Styles.Box.Render(Styles.Title.Render(title)+"\n"+body))
}

// ErrorBox prints a failure in a red box.
func (c *Console) ErrorBox(title, body string) {
	if c.plain {
		fmt.Fprintf(c.out, "%s: %s\n", title, body)
		return
	}
	fmt.Fprintln(c.out, Styles.ErrorBox.Render(Styles.Error.Bold(true).Render(title)+"\n"+body))
}
