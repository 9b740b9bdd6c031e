package digest

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// RegistryErrorType categorizes registry lookup failures
type RegistryErrorType string

const (
	ErrTypeAuthentication RegistryErrorType = "AUTHENTICATION"
	ErrTypeNotFound       RegistryErrorType = "NOT_FOUND"
	ErrTypeNetwork        RegistryErrorType = "NETWORK"
	ErrTypePermission     RegistryErrorType = "PERMISSION"
	ErrTypeInvalidRef     RegistryErrorType = "INVALID_REFERENCE"
	ErrTypeUnknown        RegistryErrorType = "UNKNOWN"
)

// RegistryError wraps a registry lookup failure with a hint for the operator
type RegistryError struct {
	Type       RegistryErrorType
	Message    string
	Suggestion string
	Cause      error
	Reference  string
}

// Error implements the error interface
func (e *RegistryError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf("\n\nCause: %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// ClassifyRegistryError analyzes a go-containerregistry error
func ClassifyRegistryError(err error, ref string) error {
	if err == nil {
		return nil
	}

	var regErr *RegistryError
	if errors.As(err, &regErr) {
		return err
	}

	var transportErr *transport.Error
	if errors.As(err, &transportErr) {
		return classifyTransportError(transportErr, ref)
	}

	var nameErr *name.ErrBadName
	if errors.As(err, &nameErr) {
		return &RegistryError{
			Type:       ErrTypeInvalidRef,
			Message:    fmt.Sprintf("Invalid image reference: %s", ref),
			Suggestion: "Image references look like registry.redhat.io/org/repo:tag",
			Cause:      err,
			Reference:  ref,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &RegistryError{
			Type:       ErrTypeNetwork,
			Message:    fmt.Sprintf("Network error accessing %s", ref),
			Suggestion: "Check VPN access to internal registries and DNS resolution",
			Cause:      err,
			Reference:  ref,
		}
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "unauthorized") || strings.Contains(errMsg, "authentication required") {
		return &RegistryError{
			Type:       ErrTypeAuthentication,
			Message:    fmt.Sprintf("Authentication failed for %s", ref),
			Suggestion: "Log in with 'podman login' or 'docker login'; credentials are read from the default keychain",
			Cause:      err,
			Reference:  ref,
		}
	}
	if strings.Contains(errMsg, "manifest unknown") || strings.Contains(errMsg, "not found") {
		return &RegistryError{
			Type:       ErrTypeNotFound,
			Message:    fmt.Sprintf("Image not found: %s", ref),
			Suggestion: "Check the repository name and that the tag still exists",
			Cause:      err,
			Reference:  ref,
		}
	}

	return &RegistryError{
		Type:       ErrTypeUnknown,
		Message:    fmt.Sprintf("Registry lookup failed for %s", ref),
		Suggestion: "Check your network connection and registry credentials",
		Cause:      err,
		Reference:  ref,
	}
}

func classifyTransportError(err *transport.Error, ref string) error {
	regErr := &RegistryError{Cause: err, Reference: ref}

	switch err.StatusCode {
	case 401:
		regErr.Type = ErrTypeAuthentication
		regErr.Message = fmt.Sprintf("Authentication required for %s", ref)
		regErr.Suggestion = "Log in with 'podman login' or 'docker login' for this registry"
	case 403:
		regErr.Type = ErrTypePermission
		regErr.Message = fmt.Sprintf("Access forbidden: %s", ref)
		regErr.Suggestion = "Your credentials cannot read this repository"
	case 404:
		regErr.Type = ErrTypeNotFound
		regErr.Message = fmt.Sprintf("Repository or tag not found: %s", ref)
		regErr.Suggestion = "Check the repository name and that the tag still exists"
	case 429:
		regErr.Type = ErrTypeNetwork
		regErr.Message = "Rate limit exceeded"
		regErr.Suggestion = "Wait a few minutes and retry, or authenticate to raise the limit"
	case 500, 502, 503, 504:
		regErr.Type = ErrTypeNetwork
		regErr.Message = "Registry server error"
		regErr.Suggestion = "The registry is having issues; retry later"
	default:
		regErr.Type = ErrTypeUnknown
		regErr.Message = fmt.Sprintf("Registry HTTP error %d", err.StatusCode)
	}

	return regErr
}
