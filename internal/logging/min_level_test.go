package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWithMinLevelFiltersBelowFloor(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger := WithMinLevel(base, slog.LevelWarn)
	logger.Info("poll tick")
	logger.Warn("platform unreachable")

	out := buf.String()
	if strings.Contains(out, "poll tick") {
		t.Error("info record should be filtered by the floor")
	}
	if !strings.Contains(out, "platform unreachable") {
		t.Error("warn record should pass the floor")
	}
}

func TestWithMinLevelReplacesExistingFloor(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger := WithMinLevel(WithMinLevel(base, slog.LevelError), slog.LevelDebug)
	logger.Debug("verbose again")

	if !strings.Contains(buf.String(), "verbose again") {
		t.Error("re-applying a lower floor should replace the stricter one")
	}
}

func TestWithMinLevelNilLogger(t *testing.T) {
	logger := WithMinLevel(nil, slog.LevelInfo)
	logger.Info("dropped")
}
