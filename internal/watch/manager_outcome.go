package watch

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cadence/internal/logging"
	"cadence/internal/scoring"
	"cadence/internal/tracking"
)

func (m *Manager) applyOutcome(ctx context.Context, logger *slog.Logger, outcome Outcome) {
	record, err := m.store.GetByRecordingID(ctx, outcome.RecordingID)
	if err != nil {
		m.reportStoreFailure(logger, "load tracked recording", err)
		return
	}
	if record == nil {
		logger.Debug("tracked recording removed mid-watch; outcome discarded")
		return
	}
	record.Attempt = outcome.Attempts
	if outcome.Status != "" {
		record.LastStatus = outcome.Status
	}

	switch outcome.State {
	case tracking.StateCompleted:
		m.applyCompleted(ctx, logger, record, outcome)
	case tracking.StateFailed:
		m.applyFailed(ctx, logger, record, outcome)
	case tracking.StateTimedOut:
		m.applyTimedOut(ctx, logger, record, outcome)
	default:
		logger.Warn("watch produced unexpected terminal state",
			logging.String(logging.FieldState, string(outcome.State)))
	}
}

// applyCompleted persists the completion, derives the local verdict and
// review routing, and cross-checks the platform's own numbers. The local
// aggregation is the verdict of record; platform disagreements are logged,
// never adopted silently.
func (m *Manager) applyCompleted(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording, outcome Outcome) {
	if outcome.Bundle == nil {
		if err := record.SetCompleted(nil, false); err != nil {
			m.reportStoreFailure(logger, "encode completion", err)
			return
		}
		record.ErrorMessage = outcome.ErrorMessage
		if err := m.store.Update(ctx, record); err != nil {
			m.reportStoreFailure(logger, "persist completion", err)
			return
		}
		logger.Warn("recording completed but results were not fetched",
			logging.String("detail", outcome.ErrorMessage),
			logging.String(logging.FieldEventType, "result_fetch_failed"),
			logging.String(logging.FieldErrorHint, "run recheck to fetch the evaluation"),
		)
		return
	}

	evaluation := outcome.Bundle.Evaluation
	verdict := scoring.Aggregate(evaluation.StageScores, m.thresholds)
	signals := scoring.ReviewSignals(evaluation.Confidence, evaluation.Violations, m.thresholds)

	overall := verdict.Overall
	passed := verdict.Passed
	if !verdict.Computable {
		overall = evaluation.OverallScore
		passed = evaluation.Passed
		logger.Warn("evaluation has no weighted stages; using platform verdict",
			logging.String(logging.FieldEvaluationID, evaluation.ID),
			logging.Alert("aggregation_not_computable"),
		)
	}

	if err := record.SetCompleted(&evaluation, signals.RequiresReview); err != nil {
		m.reportStoreFailure(logger, "encode evaluation snapshot", err)
		return
	}
	if err := m.store.Update(ctx, record); err != nil {
		m.reportStoreFailure(logger, "persist completion", err)
		return
	}

	logger.Info("evaluation completed",
		logging.String(logging.FieldEvaluationID, evaluation.ID),
		logging.Int("overall", overall),
		logging.Bool("passed", passed),
		logging.Float64("confidence", evaluation.Confidence),
		logging.Bool("requires_review", signals.RequiresReview),
		logging.Int(logging.FieldAttempt, outcome.Attempts),
	)
	logger.Info("review routing decided", logging.Args(append(
		logging.DecisionAttrs("review_routing", routingResult(signals), routingReason(signals)),
		logging.Bool("low_confidence", signals.LowConfidence),
		logging.Bool("critical_violation", signals.CriticalViolation),
	)...)...)

	if verdict.Computable && verdict.Overall != evaluation.OverallScore {
		logger.Warn("platform overall score disagrees with local aggregation",
			logging.Int("platform_overall", evaluation.OverallScore),
			logging.Int("local_overall", verdict.Overall),
			logging.Alert("score_mismatch"),
		)
	}
	if verdict.Normalized {
		logger.Warn("stage weights do not sum to 100; overall normalized by the actual sum",
			logging.Float64("weight_sum", verdict.WeightSum),
			logging.Alert("weight_anomaly"),
		)
	}
	if evaluation.RequiresHumanReview != signals.RequiresReview {
		logger.Info("platform review routing disagrees with local signals",
			logging.Bool("platform_requires_review", evaluation.RequiresHumanReview),
			logging.Bool("local_requires_review", signals.RequiresReview),
		)
	}

	m.notifyCompleted(ctx, logger, record, overall, passed)
	if signals.RequiresReview {
		m.notifyReviewRequired(ctx, logger, record, signals)
	}
}

func (m *Manager) applyFailed(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording, outcome Outcome) {
	record.SetFailed(outcome.ErrorMessage)
	if err := m.store.Update(ctx, record); err != nil {
		m.reportStoreFailure(logger, "persist failure", err)
		return
	}
	logger.Info("evaluation failed",
		logging.String("failure_kind", string(record.FailureKind)),
		logging.String("detail", record.ErrorMessage),
		logging.Int(logging.FieldAttempt, outcome.Attempts),
	)
	m.notifyFailed(ctx, logger, record)
}

func (m *Manager) applyTimedOut(ctx context.Context, logger *slog.Logger, record *tracking.TrackedRecording, outcome Outcome) {
	record.SetTimedOut()
	if err := m.store.Update(ctx, record); err != nil {
		m.reportStoreFailure(logger, "persist timeout", err)
		return
	}
	logger.Warn("watch exhausted its attempt budget; the platform job may still finish",
		logging.Int(logging.FieldAttempt, outcome.Attempts),
		logging.String(logging.FieldEventType, "watch_timed_out"),
		logging.String(logging.FieldErrorHint, "run recheck once the platform catches up"),
	)
	m.notifyTimedOut(ctx, logger, record, outcome.Attempts)
}

func routingResult(signals scoring.Signals) string {
	if signals.RequiresReview {
		return "human"
	}
	return "auto"
}

func routingReason(signals scoring.Signals) string {
	switch {
	case signals.LowConfidence && signals.CriticalViolation:
		return "low confidence and critical violation"
	case signals.LowConfidence:
		return "low confidence"
	case signals.CriticalViolation:
		return "critical violation"
	default:
		return "confidence and violations clear"
	}
}

func (m *Manager) reportStoreFailure(logger *slog.Logger, operation string, err error) {
	m.setLastError(err)
	if errors.Is(err, context.Canceled) {
		logger.Debug("daemon shutting down before the outcome could be persisted; watch will resume on next start")
		return
	}
	logger.Error("tracking store update failed",
		logging.Error(err),
		logging.String("operation", operation),
		logging.String(logging.FieldEventType, "tracking_store_failed"),
		logging.String(logging.FieldErrorHint, "check tracking database access"),
	)
}

func displayTitle(record *tracking.TrackedRecording) string {
	if strings.TrimSpace(record.Title) != "" {
		return record.Title
	}
	return record.RecordingID
}
