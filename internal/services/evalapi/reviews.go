package evalapi

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cadence/internal/evals"
	"cadence/internal/services"
)

// ReviewSubmission is the payload for submitting one reconciled human review.
// Submission is atomic on the platform side: a non-nil error means nothing
// was persisted there.
type ReviewSubmission struct {
	OverallScore int
	StageScores  []evals.StageScore
	Notes        string
}

type reviewSubmissionPayload struct {
	OverallScore int            `json:"overall_score"`
	StageScores  []stagePayload `json:"stage_scores"`
	Notes        string         `json:"notes,omitempty"`
}

// SubmitHumanReview posts a reconciled review for one evaluation.
func (c *Client) SubmitHumanReview(ctx context.Context, evaluationID string, submission ReviewSubmission) error {
	evaluationID = strings.TrimSpace(evaluationID)
	if evaluationID == "" {
		return services.Wrap(services.ErrValidation, componentName, "submit review", "evaluation id required", nil)
	}
	if len(submission.StageScores) == 0 {
		return services.Wrap(services.ErrValidation, componentName, "submit review", "stage scores required", nil)
	}

	payload := reviewSubmissionPayload{
		OverallScore: submission.OverallScore,
		StageScores:  make([]stagePayload, 0, len(submission.StageScores)),
		Notes:        strings.TrimSpace(submission.Notes),
	}
	for _, stage := range submission.StageScores {
		payload.StageScores = append(payload.StageScores, stagePayload{
			ID:     stage.ID,
			Name:   stage.Name,
			Score:  stage.Score,
			Weight: stage.Weight,
			Passed: stage.Passed,
		})
	}

	return c.postJSON(ctx, "submit review", payload, nil, "evaluations", evaluationID, "review")
}

type pendingReviewPayload struct {
	EvaluationID  string    `json:"evaluation_id"`
	RecordingID   string    `json:"recording_id"`
	RecordingName string    `json:"recording_name"`
	OverallScore  int       `json:"overall_score"`
	Confidence    float64   `json:"confidence"`
	Reason        string    `json:"reason"`
	QueuedAt      time.Time `json:"queued_at"`
}

type pendingReviewsResponse struct {
	Reviews []pendingReviewPayload `json:"reviews"`
}

// PendingHumanReviews lists the platform's open review worklist, newest last.
// A non-positive limit asks for the platform default page.
func (c *Client) PendingHumanReviews(ctx context.Context, limit int) ([]evals.PendingReview, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	var payload pendingReviewsResponse
	if err := c.getJSON(ctx, "pending reviews", query, &payload, "reviews", "pending"); err != nil {
		return nil, err
	}

	out := make([]evals.PendingReview, 0, len(payload.Reviews))
	for _, review := range payload.Reviews {
		out = append(out, evals.PendingReview{
			EvaluationID:  strings.TrimSpace(review.EvaluationID),
			RecordingID:   strings.TrimSpace(review.RecordingID),
			RecordingName: strings.TrimSpace(review.RecordingName),
			OverallScore:  review.OverallScore,
			Confidence:    review.Confidence,
			Reason:        strings.TrimSpace(review.Reason),
			QueuedAt:      review.QueuedAt,
		})
	}
	return out, nil
}
