package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestStreamHandler_WithAttrs(t *testing.T) {
	hub := NewStreamHub(100)

	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, hub)

	logger := slog.New(handler).With(slog.String(FieldRecordingID, "rec_0042"))

	logger.Info("test message", slog.String("extra", "value"))

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if events[0].RecordingID != "rec_0042" {
		t.Errorf("expected recording_id=rec_0042, got %q", events[0].RecordingID)
	}
	if events[0].Message != "test message" {
		t.Errorf("expected message='test message', got %q", events[0].Message)
	}
}

func TestStreamHandler_NestedWithAttrs(t *testing.T) {
	hub := NewStreamHub(100)
	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, hub)

	logger := slog.New(handler).
		With(slog.String(FieldComponent, "watch")).
		With(slog.String(FieldRecordingID, "rec_0099")).
		With(slog.String(FieldState, "polling"))

	logger.Info("status checked")

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	evt := events[0]
	if evt.RecordingID != "rec_0099" {
		t.Errorf("expected recording_id=rec_0099, got %q", evt.RecordingID)
	}
	if evt.Component != "watch" {
		t.Errorf("expected component='watch', got %q", evt.Component)
	}
	if evt.State != "polling" {
		t.Errorf("expected state='polling', got %q", evt.State)
	}
}

func TestStreamHandler_CallSiteOverridesWithAttrs(t *testing.T) {
	hub := NewStreamHub(100)
	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, hub)

	logger := slog.New(handler).With(slog.String(FieldState, "polling"))

	logger.Info("message", slog.String(FieldState, "completed"))

	events, _ := hub.Tail(10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	if events[0].State != "completed" {
		t.Errorf("expected state='completed', got %q", events[0].State)
	}
}

func TestStreamHandler_NilHub(t *testing.T) {
	base := slog.NewTextHandler(discardWriter{}, nil)
	handler := newStreamHandler(base, nil)

	if handler != base {
		t.Errorf("expected base handler when hub is nil")
	}
}

func TestStreamHandler_Enabled(t *testing.T) {
	hub := NewStreamHub(100)
	base := slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	handler := newStreamHandler(base, hub)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected INFO to be disabled when base level is WARN")
	}
	if !handler.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("expected WARN to be enabled when base level is WARN")
	}
}

func TestStreamHubFetchSince(t *testing.T) {
	hub := NewStreamHub(4)
	for i := 0; i < 6; i++ {
		hub.Publish(LogEvent{Message: "event"})
	}
	events, next, err := hub.Fetch(context.Background(), 3, 0, false)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if next != 6 {
		t.Fatalf("expected next sequence 6, got %d", next)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events after sequence 3, got %d", len(events))
	}
	if events[0].Sequence != 4 {
		t.Fatalf("expected first sequence 4, got %d", events[0].Sequence)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
