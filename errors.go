package settings

import (
	"fmt"

	"github.com/agext/levenshtein"

	"github.com/goliatone/go-settings/internal/grammar"
)

// ParseError reports malformed value-grammar syntax inside a setting string.
// It carries the byte offset where the problem was detected.
type ParseError = grammar.ParseError

// InvalidArgumentError reports a well-formed but semantically invalid value
// passed to a typed setter or a string conversion rule.
type InvalidArgumentError struct {
	Setting string
	Value   string
	Msg     string
}

func (e *InvalidArgumentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Setting == "" {
		return fmt.Sprintf("settings: invalid value %q: %s", e.Value, e.Msg)
	}
	return fmt.Sprintf("settings: invalid value %q for %q: %s", e.Value, e.Setting, e.Msg)
}

func invalidArgumentf(setting, value, format string, args ...any) error {
	return &InvalidArgumentError{
		Setting: setting,
		Value:   value,
		Msg:     fmt.Sprintf(format, args...),
	}
}

// UnknownSettingError reports a name that is not in the dispatch table.
// Suggestion holds the closest known name, or "" when nothing is close
// enough to be worth suggesting.
type UnknownSettingError struct {
	Name       string
	Suggestion string
}

func (e *UnknownSettingError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Suggestion == "" {
		return fmt.Sprintf("settings: unknown setting %q", e.Name)
	}
	return fmt.Sprintf("settings: unknown setting %q; did you mean %q?", e.Name, e.Suggestion)
}

// AssignmentError wraps any failure raised while converting or assigning a
// raw string value to a setting. The original cause is always preserved.
type AssignmentError struct {
	Name  string
	Value string
	Err   error
}

func (e *AssignmentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("settings: failed to set %q to %q: %v", e.Name, e.Value, e.Err)
}

func (e *AssignmentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// suggestionMaxDistance bounds how different a known name may be from the
// attempted one before we stop suggesting it.
const suggestionMaxDistance = 3

func suggestSettingName(name string, known []string) string {
	best := ""
	bestDistance := suggestionMaxDistance + 1
	for _, candidate := range known {
		d := levenshtein.Distance(name, candidate, nil)
		if d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best
}
