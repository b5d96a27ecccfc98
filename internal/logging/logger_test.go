package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar)).With(String(FieldComponent, "scanner"))

	logger.Info("scan complete", Int("files", 12))

	line := buf.String()
	if !strings.Contains(line, "INFO scanner: scan complete") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "files=12") {
		t.Fatalf("missing attribute in line: %q", line)
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar))

	logger.Warn("problem", String("path", "a b.md"), Error(errors.New("bad value")))

	line := buf.String()
	if !strings.Contains(line, `path="a b.md"`) {
		t.Fatalf("expected quoted path, got %q", line)
	}
	if !strings.Contains(line, `error="bad value"`) {
		t.Fatalf("expected quoted error, got %q", line)
	}
}

func TestPrettyHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	handler := newPrettyHandler(&buf, levelVar)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be disabled at warn level")
	}

	slog.New(handler).Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("ignored")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
}
