package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type failingHandler struct {
	err error
}

func (h failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }
func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h failingHandler) WithGroup(string) slog.Handler             { return h }

func TestNewTeeHandlerAllNil(t *testing.T) {
	h := newTeeHandler(nil, nil)
	if _, ok := h.(NoopHandler); !ok {
		t.Errorf("expected NoopHandler for all nil handlers, got %T", h)
	}
}

func TestNewTeeHandlerSingleUnwrapped(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if h := newTeeHandler(nil, inner); h != slog.Handler(inner) {
		t.Errorf("expected lone non-nil handler to be returned unwrapped, got %T", h)
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoSink := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugSink := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(newTeeHandler(infoSink, debugSink))
	logger.Debug("poll tick")
	logger.Info("watch started")

	if strings.Contains(infoBuf.String(), "poll tick") {
		t.Error("info sink should not receive debug records")
	}
	if !strings.Contains(debugBuf.String(), "poll tick") {
		t.Error("debug sink should receive debug records")
	}
	if !strings.Contains(infoBuf.String(), "watch started") || !strings.Contains(debugBuf.String(), "watch started") {
		t.Error("both sinks should receive info records")
	}
}

func TestTeeHandlerJoinsErrors(t *testing.T) {
	sinkErr := errors.New("disk full")
	h := newTeeHandler(failingHandler{err: sinkErr}, failingHandler{err: nil})

	var record slog.Record
	if err := h.Handle(context.Background(), record); !errors.Is(err, sinkErr) {
		t.Errorf("expected joined error to wrap sink error, got %v", err)
	}
}

func TestTeeHandlerWithAttrs(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newTeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h).With("recording_id", "rec-9")
	logger.Info("status observed")

	for i, out := range []string{buf1.String(), buf2.String()} {
		if !strings.Contains(out, `"recording_id":"rec-9"`) {
			t.Errorf("sink %d missing attr, got: %s", i+1, out)
		}
	}
}

func TestTeeLoggerMirrorsBase(t *testing.T) {
	var mainBuf, diagBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&mainBuf, nil))

	logger := TeeLogger(base, slog.NewJSONHandler(&diagBuf, nil))
	logger.Info("evaluation stored")

	if !strings.Contains(mainBuf.String(), "evaluation stored") {
		t.Error("base handler should keep receiving records")
	}
	if !strings.Contains(diagBuf.String(), "evaluation stored") {
		t.Error("tee handler should receive records")
	}
}

func TestTeeLoggerNilBase(t *testing.T) {
	var buf bytes.Buffer
	logger := TeeLogger(nil, slog.NewJSONHandler(&buf, nil))
	logger.Info("review submitted")

	if !strings.Contains(buf.String(), "review submitted") {
		t.Error("expected record in sole handler when base is nil")
	}
}
