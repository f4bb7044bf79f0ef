package phone

import (
	"errors"
	"fmt"
)

// Kind is the category of a parse failure.
type Kind int

const (
	// KindUnknown is never produced by the parser; KindOf returns it for
	// errors that are not parse failures.
	KindUnknown Kind = iota
	// KindNoNumberFound means the input has no run of digits and separators.
	KindNoNumberFound
	// KindUnknownCountry means the dialing code matches no registry entry.
	KindUnknownCountry
	// KindMissingCountryContext means there is no '+' prefix and no default
	// dialing code.
	KindMissingCountryContext
	// KindAreaCodeMismatch means the national number does not satisfy the
	// country's area-code pattern.
	KindAreaCodeMismatch
	// KindNumberTooLong means area code plus subscriber number exceed the
	// country's maximum national length.
	KindNumberTooLong
)

// Sentinel errors, one per Kind. A *ParseError unwraps to the sentinel of its
// kind so callers can use errors.Is.
var (
	ErrNoNumberFound         = errors.New("no phone number found")
	ErrUnknownCountry        = errors.New("unknown country")
	ErrMissingCountryContext = errors.New("missing country context")
	ErrAreaCodeMismatch      = errors.New("area code mismatch")
	ErrNumberTooLong         = errors.New("number too long")
)

var kindSentinels = map[Kind]error{
	KindNoNumberFound:         ErrNoNumberFound,
	KindUnknownCountry:        ErrUnknownCountry,
	KindMissingCountryContext: ErrMissingCountryContext,
	KindAreaCodeMismatch:      ErrAreaCodeMismatch,
	KindNumberTooLong:         ErrNumberTooLong,
}

var kindNames = map[Kind]string{
	KindNoNumberFound:         "no_number_found",
	KindUnknownCountry:        "unknown_country",
	KindMissingCountryContext: "missing_country_context",
	KindAreaCodeMismatch:      "area_code_mismatch",
	KindNumberTooLong:         "number_too_long",
}

// String returns the snake_case name used in JSON output.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseError is returned by Parse for every failure.
type ParseError struct {
	Kind   Kind
	Input  string
	Detail string
}

func (e *ParseError) Error() string {
	msg := "invalid phone number"
	if sentinel, ok := kindSentinels[e.Kind]; ok {
		msg = sentinel.Error()
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("parsing %q: %s", e.Input, msg)
}

// Unwrap returns the sentinel error for the failure kind.
func (e *ParseError) Unwrap() error {
	return kindSentinels[e.Kind]
}

func newParseError(kind Kind, input, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Input: input, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of a parse failure, or KindUnknown when err is not
// a *ParseError.
func KindOf(err error) Kind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
