package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeConfigNotFound, "test error message")

	if err.Code != ErrCodeConfigNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeConfigNotFound, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(ErrCodeStatePersist, "failed to write state", cause)

	if err.Code != ErrCodeStatePersist {
		t.Errorf("expected code %s, got %s", ErrCodeStatePersist, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	// Test unwrapping
	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *HarnessError
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeConfigInvalid, "invalid config"),
			wantCode: "CONFIG-002",
			wantMsg:  "invalid config",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeSignKeyInvalid, "sign failed", fmt.Errorf("bad seed length")),
			wantCode: "SIGN-001",
			wantMsg:  "bad seed length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeKeypairNotFound, "keypair missing").
		WithSuggestion("check the path").
		WithSuggestion("set the env var")

	if len(err.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions section")
	}
	if !strings.Contains(errStr, "check the path") {
		t.Errorf("error string should contain first suggestion")
	}
}

func TestErrorsAs(t *testing.T) {
	var target *HarnessError
	err := fmt.Errorf("outer: %w", NewWorkerNotFoundError("worker9"))

	if !errors.As(err, &target) {
		t.Fatalf("errors.As should find HarnessError through wrapping")
	}
	if target.Code != ErrCodeWorkerNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeWorkerNotFound, target.Code)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *HarnessError
		code ErrorCode
	}{
		{"sign key invalid", NewSignKeyInvalidError("staking", fmt.Errorf("bad")), ErrCodeSignKeyInvalid},
		{"keypair not found", NewKeypairNotFoundError("/tmp/kp.json"), ErrCodeKeypairNotFound},
		{"config not found", NewConfigNotFoundError("/tmp/config.yaml"), ErrCodeConfigNotFound},
		{"worker not found", NewWorkerNotFoundError("worker1"), ErrCodeWorkerNotFound},
		{"stage failed", NewStageFailedError("fetch-todo", fmt.Errorf("boom")), ErrCodeStageFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
		})
	}
}
