package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:    &buf,
		MinLevel:  LevelDebug,
		WithStack: true,
	})

	if logger.output != &buf {
		t.Error("expected output to be set")
	}
	if logger.minLevel != LevelDebug {
		t.Errorf("expected minLevel DEBUG, got %s", logger.minLevel)
	}
	if logger.format != FormatJSON {
		t.Errorf("expected default format json, got %s", logger.format)
	}
	if !logger.withStack {
		t.Error("expected withStack to be true")
	}
}

func TestDefault(t *testing.T) {
	logger := Default()

	if logger.minLevel != LevelInfo {
		t.Errorf("expected minLevel INFO, got %s", logger.minLevel)
	}
	if logger.withStack {
		t.Error("expected withStack to be false")
	}
}

func TestInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Output: &buf, MinLevel: LevelDebug})

	logger.Info("info message")

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}
	if entry.Level != LevelInfo {
		t.Errorf("expected level INFO, got %s", entry.Level)
	}
	if entry.Message != "info message" {
		t.Errorf("expected message 'info message', got %s", entry.Message)
	}
}

func TestErrorWithStack(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:    &buf,
		MinLevel:  LevelError,
		WithStack: true,
	})

	logger.Error("error with stack", errors.New("test error"))

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}
	if entry.Error != "test error" {
		t.Errorf("expected error 'test error', got %s", entry.Error)
	}
	if len(entry.Stack) == 0 {
		t.Error("expected stack trace to be present")
	}
}

func TestMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:   &buf,
		MinLevel: LevelWarn,
	})

	logger.Debug("debug message")
	logger.Info("info message")

	if buf.Len() > 0 {
		t.Error("expected no output for DEBUG and INFO when minLevel is WARN")
	}

	logger.Warn("warning message")

	if buf.Len() == 0 {
		t.Error("expected output for WARN when minLevel is WARN")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:   &buf,
		MinLevel: LevelInfo,
	})

	logger.WithFields(map[string]interface{}{
		"video_id": 42,
		"endpoint": "/api/video/42",
		"error":    errors.New("boom"),
	}).Warn("mutation failed")

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}

	if entry.Context["video_id"] != float64(42) {
		t.Errorf("expected video_id 42, got %v", entry.Context["video_id"])
	}
	if entry.Context["endpoint"] != "/api/video/42" {
		t.Errorf("expected endpoint, got %v", entry.Context["endpoint"])
	}
	if entry.Context["error"] != "boom" {
		t.Errorf("expected error field rendered as string, got %v", entry.Context["error"])
	}
}

func TestContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:   &buf,
		MinLevel: LevelInfo,
	})

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithController(ctx, "movieTable")
	logger.InfoContext(ctx, "list loaded")

	var entry Entry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal log entry: %v", err)
	}

	if entry.Context["request_id"] != "req-123" {
		t.Errorf("expected request_id 'req-123', got %v", entry.Context["request_id"])
	}
	if entry.Context["controller"] != "movieTable" {
		t.Errorf("expected controller 'movieTable', got %v", entry.Context["controller"])
	}
	if RequestIDFromContext(ctx) != "req-123" {
		t.Errorf("expected request id to round-trip through context")
	}
	if RequestIDFromContext(context.Background()) != "" {
		t.Errorf("expected empty request id for bare context")
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Output:   &buf,
		MinLevel: LevelInfo,
		Format:   FormatText,
	})

	logger.WithFields(map[string]interface{}{"b": 2, "a": 1}).
		Error("delete failed", errors.New("status 500"))

	out := strings.TrimSpace(buf.String())
	if json.Valid([]byte(out)) {
		t.Fatalf("expected text output, got JSON: %s", out)
	}
	if !strings.Contains(out, "ERROR delete failed a=1 b=2") {
		t.Errorf("unexpected text line: %s", out)
	}
	if !strings.HasSuffix(out, `error="status 500"`) {
		t.Errorf("expected trailing error, got: %s", out)
	}
}

// resetLoggers replaces both singletons
func resetLoggers(app, store *Logger) {
	mu.Lock()
	defer mu.Unlock()
	appLogger, storeLogger = app, store
}

func TestNewWithLevelAndFormat(t *testing.T) {
	tests := []struct {
		level         string
		expectedLevel Level
		expectStack   bool
	}{
		{"debug", LevelDebug, true},
		{"info", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"error", LevelError, false},
		{"invalid", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := NewWithLevelAndFormat(tt.level, "json")
			if logger.minLevel != tt.expectedLevel {
				t.Errorf("expected level %s, got %s", tt.expectedLevel, logger.minLevel)
			}
			if logger.withStack != tt.expectStack {
				t.Errorf("expected withStack %v, got %v", tt.expectStack, logger.withStack)
			}
		})
	}
}

func TestInitializeLoggersWithFormat(t *testing.T) {
	InitializeLoggersWithFormat("debug", "warn", "text")
	defer resetLoggers(nil, nil)

	if AppLogger().minLevel != LevelDebug {
		t.Errorf("expected app logger level DEBUG, got %s", AppLogger().minLevel)
	}
	if StoreLogger().minLevel != LevelWarn {
		t.Errorf("expected store logger level WARN, got %s", StoreLogger().minLevel)
	}
	if AppLogger().format != FormatText {
		t.Errorf("expected text format, got %s", AppLogger().format)
	}
}

func TestAppLogger_Singleton(t *testing.T) {
	resetLoggers(nil, nil)

	logger1 := AppLogger()
	logger2 := AppLogger()

	if logger1 == nil {
		t.Fatal("expected AppLogger to lazily create a logger")
	}
	if logger1 != logger2 {
		t.Error("expected AppLogger to return the same instance")
	}
}

func TestStoreLogger_Singleton(t *testing.T) {
	resetLoggers(nil, nil)

	store := StoreLogger()
	if store == nil || store != StoreLogger() {
		t.Error("expected StoreLogger to return the same instance")
	}
	if store == AppLogger() {
		t.Error("expected the store logger to be separate from the app logger")
	}
}
