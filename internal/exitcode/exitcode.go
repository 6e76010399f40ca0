package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/prometheus-swarm/harness/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// SigningError indicates malformed key material or a failed signature
	SigningError = 3

	// StageError indicates a stage execution failure
	StageError = 4

	// NetworkError indicates a network connectivity issue
	NetworkError = 5

	// Interrupted indicates the run was cancelled by the user
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

	// Coded harness errors map directly
	var harnessErr *errors.HarnessError
	if stderrors.As(err, &harnessErr) {
		switch {
		case strings.HasPrefix(string(harnessErr.Code), "SIGN-"),
			strings.HasPrefix(string(harnessErr.Code), "KEY-"):
			return SigningError
		case strings.HasPrefix(string(harnessErr.Code), "STAGE-"):
			return StageError
		case strings.HasPrefix(string(harnessErr.Code), "HTTP-"):
			return NetworkError
		case strings.HasPrefix(string(harnessErr.Code), "CONFIG-"):
			return UsageError
		}
	}

	errMsg := strings.ToLower(err.Error())

	// Network errors
	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "required flag") {
		return UsageError
	}

	return GeneralError
}

// Description returns a human-readable description of an exit code
func Description(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments, or config)"
	case SigningError:
		return "Signing error (malformed key material)"
	case StageError:
		return "Stage execution failed"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
