package logging

import (
	"context"
	"log/slog"
)

// minLevelHandler raises the effective level of one logger without touching
// the shared handler chain, which stays configured at the most verbose level
// any component needs.
type minLevelHandler struct {
	next  slog.Handler
	level slog.Level
}

func newMinLevelHandler(next slog.Handler, level slog.Level) slog.Handler {
	if next == nil {
		return NoopHandler{}
	}
	return &minLevelHandler{next: next, level: level}
}

func (h *minLevelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.next.Enabled(ctx, level)
}

func (h *minLevelHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.level {
		return nil
	}
	return h.next.Handle(ctx, record)
}

func (h *minLevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &minLevelHandler{next: h.next.WithAttrs(attrs), level: h.level}
}

func (h *minLevelHandler) WithGroup(name string) slog.Handler {
	return &minLevelHandler{next: h.next.WithGroup(name), level: h.level}
}

func (h *minLevelHandler) withLevel(level slog.Level) slog.Handler {
	return &minLevelHandler{next: h.next, level: level}
}

// WithMinLevel returns a logger restricted to records at or above level.
// Re-applying it to an already restricted logger replaces the floor instead
// of stacking a second handler.
func WithMinLevel(logger *slog.Logger, level slog.Level) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if h, ok := logger.Handler().(*minLevelHandler); ok {
		return slog.New(h.withLevel(level))
	}
	return slog.New(newMinLevelHandler(logger.Handler(), level))
}
