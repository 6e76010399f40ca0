package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Signing errors (SIGN-001 to SIGN-099)
	ErrCodeSignKeyInvalid   ErrorCode = "SIGN-001"
	ErrCodeSignCanonicalize ErrorCode = "SIGN-002"

	// Keypair errors (KEY-001 to KEY-099)
	ErrCodeKeypairNotFound ErrorCode = "KEY-001"
	ErrCodeKeypairInvalid  ErrorCode = "KEY-002"

	// State errors (STATE-001 to STATE-099)
	ErrCodeStateKeyNotFound ErrorCode = "STATE-001"
	ErrCodeStateScope       ErrorCode = "STATE-002"
	ErrCodeStatePersist     ErrorCode = "STATE-003"

	// Stage errors (STAGE-001 to STAGE-099)
	ErrCodeStageFailed  ErrorCode = "STAGE-001"
	ErrCodeStagePrepare ErrorCode = "STAGE-002"

	// HTTP errors (HTTP-001 to HTTP-099)
	ErrCodeHTTPRequest ErrorCode = "HTTP-001"
	ErrCodeHTTPStatus  ErrorCode = "HTTP-002"
	ErrCodeHTTPDecode  ErrorCode = "HTTP-003"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"
	ErrCodeWorkerNotFound ErrorCode = "CONFIG-003"
	ErrCodeWorkerEnvUnset ErrorCode = "CONFIG-004"
)

// HarnessError represents an enhanced error with code and suggestions
type HarnessError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *HarnessError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *HarnessError) Unwrap() error {
	return e.Cause
}

// New creates a new HarnessError
func New(code ErrorCode, message string) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new HarnessError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *HarnessError {
	return &HarnessError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *HarnessError) WithSuggestion(suggestion string) *HarnessError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *HarnessError) WithSuggestions(suggestions ...string) *HarnessError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewSignKeyInvalidError creates a malformed signing key error
func NewSignKeyInvalidError(role string, cause error) *HarnessError {
	return Wrap(ErrCodeSignKeyInvalid, fmt.Sprintf("invalid %s signing key", role), cause).
		WithSuggestion("Check that the keypair file contains base58-encoded ed25519 keys").
		WithSuggestion("Regenerate the keypair if the file was edited by hand")
}

// NewKeypairNotFoundError creates a keypair file not found error
func NewKeypairNotFoundError(path string) *HarnessError {
	return New(ErrCodeKeypairNotFound, fmt.Sprintf("keypair file not found: %s", path)).
		WithSuggestion("Check the keypair path in the workers config").
		WithSuggestion("Verify the environment variable pointing at the keypair is set")
}

// NewConfigNotFoundError creates a config file not found error
func NewConfigNotFoundError(path string) *HarnessError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("config file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Pass --config with the path to the session YAML")
}

// NewConfigInvalidError creates a config validation error
func NewConfigInvalidError(details string, cause error) *HarnessError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("invalid config: %s", details), cause).
		WithSuggestion("Check the YAML syntax and field names")
}

// NewWorkerNotFoundError creates an unknown worker error
func NewWorkerNotFoundError(name string) *HarnessError {
	return New(ErrCodeWorkerNotFound, fmt.Sprintf("no worker found with name: %s", name)).
		WithSuggestion("Check the worker names in the workers config").
		WithSuggestion("Step definitions must reference a configured worker")
}

// NewStageFailedError creates a stage execution failure error
func NewStageFailedError(stage string, cause error) *HarnessError {
	return Wrap(ErrCodeStageFailed, fmt.Sprintf("stage %s failed", stage), cause)
}
