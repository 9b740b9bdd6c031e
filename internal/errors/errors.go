package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// ErrCodeMissingInput means a required stage input was empty
	ErrCodeMissingInput ErrorCode = "RELENG-001"
	// ErrCodeMalformedOutput means a captured result line was not "KEY: VALUE"
	ErrCodeMalformedOutput ErrorCode = "RELENG-002"
	// ErrCodeEmptyResult means a stage that must produce output produced none
	ErrCodeEmptyResult ErrorCode = "RELENG-003"
	// ErrCodeProcessLaunch means an external command could not be started
	ErrCodeProcessLaunch ErrorCode = "RELENG-004"
	// ErrCodeMalformedReference means an image reference lacks an expected split point
	ErrCodeMalformedReference ErrorCode = "RELENG-005"
	// ErrCodeInvalidConfig means the configuration file or flags were rejected
	ErrCodeInvalidConfig ErrorCode = "RELENG-006"
)

// RelengError represents an error with code, suggestions, and cause
type RelengError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *RelengError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *RelengError) Unwrap() error {
	return e.Cause
}

// New creates a new RelengError
func New(code ErrorCode, message string) *RelengError {
	return &RelengError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new RelengError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *RelengError {
	return &RelengError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *RelengError) WithSuggestion(suggestion string) *RelengError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *RelengError) WithSuggestions(suggestions ...string) *RelengError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf returns the code of the first RelengError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var relErr *RelengError
	if errors.As(err, &relErr) {
		return relErr.Code, true
	}
	return "", false
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// NewMissingInputError reports an empty required stage input.
// The message mirrors what release engineers already grep for, e.g.
// "IIB URL was not supplied".
func NewMissingInputError(input string) *RelengError {
	return New(ErrCodeMissingInput, fmt.Sprintf("%s was not supplied", input))
}

// NewMalformedOutputError reports a result line that has no ": " separator
func NewMalformedOutputError(line string) *RelengError {
	return New(ErrCodeMalformedOutput, fmt.Sprintf("result line is not in KEY: VALUE form: %q", line)).
		WithSuggestion("Check that the script prints only KEY: VALUE lines after ### RESULT ###")
}

// NewEmptyResultError reports a fatal empty stage result.
// The diagnostic has already been printed to the console when this is returned.
func NewEmptyResultError(stage string) *RelengError {
	return New(ErrCodeEmptyResult, fmt.Sprintf("%s produced no result", stage))
}

// NewProcessLaunchError reports a command that could not be started
func NewProcessLaunchError(command []string, cause error) *RelengError {
	return Wrap(ErrCodeProcessLaunch, fmt.Sprintf("failed to launch %q", strings.Join(command, " ")), cause).
		WithSuggestions(
			"Check that the interpreter is installed and on PATH",
			"Check --scripts-dir points at the lookup scripts",
		)
}

// NewMalformedReferenceError reports an image reference that cannot be remapped
func NewMalformedReferenceError(ref string, details string) *RelengError {
	return New(ErrCodeMalformedReference, fmt.Sprintf("cannot remap image reference %q: %s", ref, details))
}

// NewInvalidConfigError reports a rejected configuration value or file
func NewInvalidConfigError(details string, cause error) *RelengError {
	return Wrap(ErrCodeInvalidConfig, fmt.Sprintf("invalid configuration: %s", details), cause)
}
