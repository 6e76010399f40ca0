package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus-swarm/harness/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name:   "default config",
			config: DefaultConfig(),
		},
		{
			name:   "development config",
			config: DevelopmentConfig(),
		},
		{
			name:   "json config",
			config: JSONConfig(),
		},
		{
			name: "custom config text",
			config: Config{
				Level:     LevelWarn,
				Format:    FormatText,
				Output:    OutputStderr(),
				AddSource: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.config)
			if logger == nil {
				t.Fatal("expected logger, got nil")
			}
			if logger.slog == nil {
				t.Fatal("expected slog logger, got nil")
			}
			if logger.config.Level != tt.config.Level {
				t.Errorf("expected level %v, got %v", tt.config.Level, logger.config.Level)
			}
		})
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	logger.Info("stage complete", "stage", "fetch-todo", "round", 3)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "stage complete" {
		t.Errorf("expected msg 'stage complete', got %v", entry["msg"])
	}
	if entry["stage"] != "fetch-todo" {
		t.Errorf("expected stage attr, got %v", entry["stage"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: NewOutput(&buf),
	})

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below WARN should be filtered, got: %s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("warn message should be logged, got: %s", out)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	workerLogger := logger.With("worker", "worker1")
	workerLogger.Info("prepared")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["worker"] != "worker1" {
		t.Errorf("expected worker attr from With, got %v", entry["worker"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	harnessErr := errors.New(errors.ErrCodeStageFailed, "stage blew up").
		WithSuggestion("check the middle server logs")
	logger.WithError(harnessErr).Error("run aborted")

	out := buf.String()
	if !strings.Contains(out, string(errors.ErrCodeStageFailed)) {
		t.Errorf("expected error_code in output, got: %s", out)
	}
	if !strings.Contains(out, "stage blew up") {
		t.Errorf("expected error message in output, got: %s", out)
	}
}

func TestWithErrorNil(t *testing.T) {
	logger := Default()
	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: NewOutput(&buf),
	})

	logger.LogError(errors.NewKeypairNotFoundError("/tmp/kp.json"))

	out := buf.String()
	if !strings.Contains(out, string(errors.ErrCodeKeypairNotFound)) {
		t.Errorf("expected keypair error code in output, got: %s", out)
	}
}

func TestEnabled(t *testing.T) {
	logger := New(Config{
		Level:  LevelWarn,
		Format: FormatText,
		Output: OutputStderr(),
	})

	ctx := context.Background()
	if logger.Enabled(ctx, LevelDebug) {
		t.Error("DEBUG should not be enabled at WARN level")
	}
	if !logger.Enabled(ctx, LevelError) {
		t.Error("ERROR should be enabled at WARN level")
	}
}
