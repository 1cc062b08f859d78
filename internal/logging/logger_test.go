package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(t *testing.T, level string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(level))
	return slog.New(newConsoleHandler(buf, levelVar)), buf
}

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.Info("episode processed",
		String(FieldEpisodeID, "abc123"),
		Int("attempt", 2),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO episode processed") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "episode_id=abc123") {
		t.Fatalf("missing episode_id attr: %q", line)
	}
	if !strings.Contains(line, "attempt=2") {
		t.Fatalf("missing attempt attr: %q", line)
	}
}

func TestConsoleHandlerHoistsComponent(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	NewComponentLogger(logger, "monitor").Info("pass complete")

	line := buf.String()
	if !strings.Contains(line, "monitor: pass complete") {
		t.Fatalf("component not hoisted into prefix: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	logger, buf := newBufferLogger(t, "info")

	logger.Info("saved", String("title", "Episode One"))

	if !strings.Contains(buf.String(), `title="Episode One"`) {
		t.Fatalf("value with spaces should be quoted: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, "warn")

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should report disabled")
	}
	logger.Error("must not panic", Error(nil))
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
