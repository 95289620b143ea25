package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/review"
	"cadence/internal/services"
	"cadence/internal/services/evalapi"
	"cadence/internal/tracking"
)

const reviewComponent = "review"

// ReviewStore captures the tracking operations review submission needs.
type ReviewStore interface {
	GetByEvaluationID(ctx context.Context, evaluationID string) (*tracking.TrackedRecording, error)
	RecordReview(ctx context.Context, entry *tracking.ReviewLogEntry) error
}

// ReviewPlatform is the platform surface review submission talks to.
type ReviewPlatform interface {
	Evaluation(ctx context.Context, recordingID string, opts evalapi.EvaluationOptions) (evals.Evaluation, error)
	SubmitHumanReview(ctx context.Context, evaluationID string, submission evalapi.ReviewSubmission) error
}

// SubmitReviewRequest carries the inputs for one review submission.
type SubmitReviewRequest struct {
	Store    ReviewStore
	Platform ReviewPlatform
	Notifier notify.Service
	Logger   *slog.Logger

	EvaluationID string
	// RecordingID optionally locates the evaluation on the platform when it
	// is not tracked locally, normally taken from the pending-review worklist.
	RecordingID string
	Overrides   []evals.StageOverride
	Notes       string
}

// SubmitReviewResult reports a submitted review for rendering and transport.
type SubmitReviewResult struct {
	EvaluationID   string         `json:"evaluationId"`
	RecordingID    string         `json:"recordingId"`
	RecordingTitle string         `json:"recordingTitle"`
	OverallScore   int            `json:"overallScore"`
	NotableCount   int            `json:"notableCount"`
	Disagreements  []Disagreement `json:"disagreements"`
	SubmittedAt    string         `json:"submittedAt"`
}

// SubmitReview reconciles reviewer overrides against the evaluation's AI stage
// scores, submits the merged review to the platform, and records it in the
// local review log once the platform has acknowledged it. The evaluation is
// resolved from the tracking store first; a recording id hint falls back to a
// live platform fetch for evaluations that were never tracked locally.
func SubmitReview(ctx context.Context, req SubmitReviewRequest) (SubmitReviewResult, error) {
	var empty SubmitReviewResult

	evaluationID := strings.TrimSpace(req.EvaluationID)
	if evaluationID == "" {
		return empty, services.Wrap(services.ErrValidation, reviewComponent, "submit review", "evaluation id required", nil)
	}
	if req.Store == nil {
		return empty, services.Wrap(services.ErrConfiguration, reviewComponent, "submit review", "tracking store required", nil)
	}
	if req.Platform == nil {
		return empty, services.Wrap(services.ErrConfiguration, reviewComponent, "submit review", "platform client required", nil)
	}
	logger := req.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	for _, override := range req.Overrides {
		if override.Score < 0 || override.Score > 100 {
			return empty, services.Wrap(services.ErrValidation, reviewComponent, "submit review",
				fmt.Sprintf("override for stage %q must be between 0 and 100", override.StageID), nil)
		}
	}

	evaluation, record, err := resolveReviewEvaluation(ctx, req, evaluationID)
	if err != nil {
		return empty, err
	}

	reconciled, disagreements := review.Reconcile(*evaluation, req.Overrides, req.Notes, time.Now())
	notable := review.CountNotable(disagreements)

	submission := evalapi.ReviewSubmission{
		OverallScore: reconciled.OverallScore,
		StageScores:  reconciled.StageScores,
		Notes:        reconciled.Notes,
	}
	if err := req.Platform.SubmitHumanReview(ctx, evaluationID, submission); err != nil {
		return empty, err
	}

	entry := &tracking.ReviewLogEntry{
		EvaluationID:  evaluationID,
		OverallScore:  reconciled.OverallScore,
		OverridesJSON: encodeOverrides(req.Overrides),
		Notes:         reconciled.Notes,
		NotableCount:  notable,
		SubmittedAt:   reconciled.SubmittedAt,
	}
	if err := req.Store.RecordReview(ctx, entry); err != nil {
		// The platform accepted the submission; only the local log is missing.
		return empty, fmt.Errorf("record review locally (the platform accepted the submission): %w", err)
	}

	title := reviewDisplayTitle(record, evaluation)
	logger.Info("human review submitted",
		logging.String(logging.FieldEvaluationID, evaluationID),
		logging.String(logging.FieldRecordingID, evaluation.RecordingID),
		logging.Int("overall_score", reconciled.OverallScore),
		logging.Int("notable_disagreements", notable),
	)

	if req.Notifier != nil {
		if err := req.Notifier.NotifyReviewSubmitted(ctx, title, reconciled.OverallScore, notable); err != nil {
			logger.Debug("review submitted notification failed", logging.Error(err))
		}
	}

	return SubmitReviewResult{
		EvaluationID:   evaluationID,
		RecordingID:    evaluation.RecordingID,
		RecordingTitle: title,
		OverallScore:   reconciled.OverallScore,
		NotableCount:   notable,
		Disagreements:  FromDisagreements(disagreements),
		SubmittedAt:    FormatTime(reconciled.SubmittedAt),
	}, nil
}

// resolveReviewEvaluation locates the evaluation being reviewed. The tracked
// snapshot wins; the platform is only consulted when the caller supplied a
// recording id for an untracked evaluation.
func resolveReviewEvaluation(ctx context.Context, req SubmitReviewRequest, evaluationID string) (*evals.Evaluation, *tracking.TrackedRecording, error) {
	record, err := req.Store.GetByEvaluationID(ctx, evaluationID)
	if err != nil {
		return nil, nil, err
	}
	if record != nil {
		evaluation, err := record.Evaluation()
		if err != nil {
			return nil, nil, err
		}
		if evaluation != nil {
			return evaluation, record, nil
		}
	}

	recordingID := strings.TrimSpace(req.RecordingID)
	if recordingID == "" {
		return nil, nil, services.Wrap(services.ErrNotFound, reviewComponent, "submit review",
			"evaluation not tracked locally; pass the recording id from the pending worklist", nil)
	}
	evaluation, err := req.Platform.Evaluation(ctx, recordingID, evalapi.EvaluationOptions{})
	if err != nil {
		return nil, nil, err
	}
	if evaluation.ID != evaluationID {
		return nil, nil, services.Wrap(services.ErrValidation, reviewComponent, "submit review",
			fmt.Sprintf("recording %s holds evaluation %s, not %s", recordingID, evaluation.ID, evaluationID), nil)
	}
	return &evaluation, record, nil
}

func reviewDisplayTitle(record *tracking.TrackedRecording, evaluation *evals.Evaluation) string {
	if record != nil && strings.TrimSpace(record.Title) != "" {
		return record.Title
	}
	return evaluation.RecordingID
}

func encodeOverrides(overrides []evals.StageOverride) string {
	if len(overrides) == 0 {
		return ""
	}
	type overridePayload struct {
		StageID string `json:"stage_id"`
		Score   int    `json:"score"`
	}
	payload := make([]overridePayload, 0, len(overrides))
	for _, override := range overrides {
		payload = append(payload, overridePayload{StageID: override.StageID, Score: override.Score})
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(encoded)
}
