package ux

import (
	"fmt"
	"strings"

	relerrors "github.com/felixgeelhaar/releng/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that do not already carry a code.
// Coded errors bring their own suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := relerrors.CodeOf(err); ok {
		return err
	}

	errMsg := err.Error()

	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check that the lookup scripts are readable and the interpreter is executable")
	}

	if strings.Contains(errMsg, "x509") || strings.Contains(errMsg, "certificate") {
		return NewErrorWithSuggestion(err,
			"The registry certificate was rejected; use --insecure only for trusted test registries")
	}

	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check your network connection and that the registry is reachable")
	}

	if strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "authentication") {
		return NewErrorWithSuggestion(err,
			"Log in to the registry (podman login / docker login) so the credential helper can be used")
	}

	return err
}
