package ui

import (
	"fmt"
	"strings"
)

// FormatError returns a styled error message with optional fix suggestions.
// When color is disabled, plain text is returned.
func FormatError(msg string, suggestions ...string) string {
	var b strings.Builder

	prefix := StyleBoldRed.Render("Error:")
	b.WriteString(fmt.Sprintf("%s %s\n", prefix, msg))

	if len(suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleHint.Render("  Try:") + "\n")
		for _, s := range suggestions {
			b.WriteString(fmt.Sprintf("    %s %s\n", StyleHint.Render(SymbolArrow), s))
		}
	}

	return b.String()
}

// SuggestedError is an error that carries follow-up commands for the user.
// The CLI entry point renders them under "Try:" via FormatError.
type SuggestedError struct {
	Err         error
	Suggestions []string
}

// WithSuggestions attaches suggestions to err. A nil err stays nil.
func WithSuggestions(err error, suggestions ...string) error {
	if err == nil {
		return nil
	}
	return &SuggestedError{Err: err, Suggestions: suggestions}
}

func (e *SuggestedError) Error() string { return e.Err.Error() }

func (e *SuggestedError) Unwrap() error { return e.Err }
