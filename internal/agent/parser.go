package agent

import (
	"regexp"
	"strings"
)

// The model speaks the ReAct text protocol:
//
//	Thought: <free text>
//	Action: <tool name>
//	Action Input: <raw input>
//
// or, when it is done,
//
//	Final Answer: <answer>
//
// Markers are matched case-insensitively. Action markers must open a line,
// so prose such as "per transaction:" is never taken for one; the final
// answer marker may appear anywhere. When a completion carries both a final
// answer and an action, the final answer wins.
var (
	finalAnswerRe = regexp.MustCompile(`(?is)final\s+answer\s*:(.*)`)
	actionRe      = regexp.MustCompile(`(?ims)^[ \t]*action[ \t]*\d*[ \t]*:[ \t]*(.*?)\s*^[ \t]*action[ \t]*\d*[ \t]*input[ \t]*\d*[ \t]*:(.*)`)
	actionOnlyRe  = regexp.MustCompile(`(?im)^[ \t]*action[ \t]*\d*[ \t]*:`)
	observationRe = regexp.MustCompile(`(?i)\n\s*observation\s*:`)
)

// Parse failure reasons, reported to the model as "Invalid Format: <reason>".
const (
	reasonMissingAction      = "Missing 'Action:' after 'Thought:'"
	reasonMissingActionInput = "Missing 'Action Input:' after 'Action:'"
	reasonMissingToolName    = "Missing tool name after 'Action:'"
)

// Decision is the parsed form of one model completion: a FinalAnswer,
// an Action or a ParseError.
type Decision interface {
	decision()
}

// FinalAnswer ends the loop with Text as the answer.
type FinalAnswer struct {
	Thought string
	Text    string
}

// Action asks for Tool to be run with Input.
type Action struct {
	Thought string
	Tool    string
	Input   string
}

// ParseError means the completion followed neither form.
type ParseError struct {
	Reason string
}

func (FinalAnswer) decision() {}
func (Action) decision()      {}
func (ParseError) decision()  {}

// Parse classifies a completion.
func Parse(text string) Decision {
	if m := finalAnswerRe.FindStringSubmatchIndex(text); m != nil {
		return FinalAnswer{
			Thought: thought(text[:m[0]]),
			Text:    strings.TrimSpace(text[m[2]:m[3]]),
		}
	}

	m := actionRe.FindStringSubmatchIndex(text)
	if m == nil {
		if actionOnlyRe.MatchString(text) {
			return ParseError{Reason: reasonMissingActionInput}
		}
		return ParseError{Reason: reasonMissingAction}
	}

	tool := cleanToolName(text[m[2]:m[3]])
	if tool == "" {
		return ParseError{Reason: reasonMissingToolName}
	}

	input := text[m[4]:m[5]]
	if loc := observationRe.FindStringIndex(input); loc != nil {
		input = input[:loc[0]]
	}

	return Action{
		Thought: thought(text[:m[0]]),
		Tool:    tool,
		Input:   cleanInput(input),
	}
}

// thought returns the prose preceding a marker, without a "Thought:" label.
func thought(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len("thought:") && strings.EqualFold(s[:len("thought:")], "thought:") {
		s = strings.TrimSpace(s[len("thought:"):])
	}
	return s
}

func cleanToolName(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*\"'[] ")
	return strings.TrimSpace(s)
}

// cleanInput strips surrounding whitespace, backtick fences and one layer
// of matching quotes.
func cleanInput(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.Trim(s, "`"))
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}
