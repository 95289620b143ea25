package watch

import (
	"context"
	"errors"
	"log/slog"

	"cadence/internal/logging"
	"cadence/internal/scoring"
	"cadence/internal/tracking"
)

func (m *Manager) notifyCompleted(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording, overall int, passed bool) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyEvaluationCompleted(ctx, displayTitle(record), overall, passed); err != nil {
		// Check if this is a context cancellation (normal shutdown)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send completion notification")
		} else {
			logger.Debug("completion notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyFailed(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyEvaluationFailed(ctx, displayTitle(record), record.FailureKind, record.ErrorMessage); err != nil {
		// Check if this is a context cancellation (normal shutdown)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send failure notification")
		} else {
			logger.Debug("failure notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyTimedOut(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording, attempts int) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyWatchTimedOut(ctx, displayTitle(record), attempts); err != nil {
		// Check if this is a context cancellation (normal shutdown)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send timeout notification")
		} else {
			logger.Debug("timeout notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyReviewRequired(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording, signals scoring.Signals) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.NotifyReviewRequired(ctx, displayTitle(record), reviewReason(signals)); err != nil {
		// Check if this is a context cancellation (normal shutdown)
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send review notification")
		} else {
			logger.Debug("review notification failed", logging.Error(err))
		}
	}
}

func reviewReason(signals scoring.Signals) string {
	switch {
	case signals.LowConfidence && signals.CriticalViolation:
		return "low confidence and critical violation"
	case signals.CriticalViolation:
		return "critical violation"
	default:
		return "low confidence"
	}
}
