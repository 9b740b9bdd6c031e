package exitcode

import (
	"os"
	"strings"

	relerrors "github.com/felixgeelhaar/releng/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// EmptyResult indicates the IIB stage or digest resolution produced nothing
	EmptyResult = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// MalformedOutput indicates a script printed a result line that is not KEY: VALUE
	MalformedOutput = 3

	// MissingInput indicates a stage was called with an empty required input
	MissingInput = 4

	// LaunchFailure indicates an external command could not be started
	LaunchFailure = 5

	// MalformedReference indicates an image reference could not be remapped
	MalformedReference = 6

	// InvalidConfig indicates the configuration was rejected
	InvalidConfig = 7

	// GeneralError indicates any other unhandled failure
	GeneralError = 8

	// Interrupted indicates the run was cancelled by SIGINT/SIGTERM
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if code, ok := relerrors.CodeOf(err); ok {
		switch code {
		case relerrors.ErrCodeEmptyResult:
			return EmptyResult
		case relerrors.ErrCodeMalformedOutput:
			return MalformedOutput
		case relerrors.ErrCodeMissingInput:
			return MissingInput
		case relerrors.ErrCodeProcessLaunch:
			return LaunchFailure
		case relerrors.ErrCodeMalformedReference:
			return MalformedReference
		case relerrors.ErrCodeInvalidConfig:
			return InvalidConfig
		}
	}

	errMsg := strings.ToLower(err.Error())

	// cobra reports flag problems as plain errors
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "unknown shorthand flag") || strings.Contains(errMsg, "flag needs an argument") {
		return UsageError
	}

	return GeneralError
}
