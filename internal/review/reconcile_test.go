package review_test

import (
	"testing"
	"time"

	"cadence/internal/evals"
	"cadence/internal/review"
)

func evaluationFixture() evals.Evaluation {
	return evals.Evaluation{
		ID:           "eval_123",
		RecordingID:  "rec_0001",
		OverallScore: 70,
		StageScores: []evals.StageScore{
			{ID: "opening", Name: "Call Opening", Score: 80, Weight: 50, Passed: true},
			{ID: "resolution", Name: "Issue Resolution", Score: 60, Weight: 50, Passed: true},
		},
	}
}

func TestReconcileZeroOverrideAcceptsAIScore(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	overrides := []evals.StageOverride{
		{StageID: "opening", Score: 90},
		{StageID: "resolution", Score: 0},
	}

	humanReview, disagreements := review.Reconcile(evaluationFixture(), overrides, "spot check", now)

	if humanReview.OverallScore != 75 {
		t.Errorf("OverallScore = %d, want 75 (weighted mean of 90 and accepted 60)", humanReview.OverallScore)
	}
	if humanReview.EvaluationID != "eval_123" {
		t.Errorf("EvaluationID = %q, want eval_123", humanReview.EvaluationID)
	}
	if humanReview.ID == "" {
		t.Error("expected generated review id")
	}
	if !humanReview.SubmittedAt.Equal(now) {
		t.Errorf("SubmittedAt = %v, want %v", humanReview.SubmittedAt, now)
	}

	if len(humanReview.StageScores) != 2 {
		t.Fatalf("expected 2 merged stages, got %d", len(humanReview.StageScores))
	}
	if humanReview.StageScores[0].Score != 90 {
		t.Errorf("opening score = %d, want 90", humanReview.StageScores[0].Score)
	}
	if humanReview.StageScores[1].Score != 60 {
		t.Errorf("resolution score = %d, want AI score 60 kept for zero override", humanReview.StageScores[1].Score)
	}

	if len(disagreements) != 2 {
		t.Fatalf("expected a disagreement entry per stage, got %d", len(disagreements))
	}
	if disagreements[0].Delta != 10 || disagreements[0].Notable {
		t.Errorf("opening delta = %+v, want delta 10 not notable", disagreements[0])
	}
	if disagreements[1].Delta != 0 || disagreements[1].Notable {
		t.Errorf("resolution delta = %+v, want delta 0 not notable", disagreements[1])
	}
}

func TestReconcileMissingOverrideAcceptsAIScore(t *testing.T) {
	overrides := []evals.StageOverride{{StageID: "opening", Score: 95}}

	humanReview, _ := review.Reconcile(evaluationFixture(), overrides, "", time.Now())

	if humanReview.StageScores[1].Score != 60 {
		t.Errorf("resolution score = %d, want AI score kept when no override entered", humanReview.StageScores[1].Score)
	}
}

func TestReconcileNotableDisagreements(t *testing.T) {
	tests := []struct {
		name     string
		override int
		notable  bool
	}{
		{"eleven points up", 91, true},
		{"ten points up", 90, false},
		{"eleven points down", 69, true},
		{"ten points down", 70, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overrides := []evals.StageOverride{{StageID: "opening", Score: tt.override}}
			_, disagreements := review.Reconcile(evaluationFixture(), overrides, "", time.Now())

			if disagreements[0].Notable != tt.notable {
				t.Errorf("delta %d notable = %v, want %v", disagreements[0].Delta, disagreements[0].Notable, tt.notable)
			}
		})
	}
}

func TestReconcileIgnoresUnknownStageOverride(t *testing.T) {
	overrides := []evals.StageOverride{
		{StageID: "ghost", Score: 100},
		{StageID: "opening", Score: 85},
	}

	humanReview, disagreements := review.Reconcile(evaluationFixture(), overrides, "", time.Now())

	if len(humanReview.StageScores) != 2 {
		t.Fatalf("expected merged stages to mirror evaluation stages, got %d", len(humanReview.StageScores))
	}
	if humanReview.OverallScore != 73 {
		t.Errorf("OverallScore = %d, want 73 (mean of 85 and 60, rounded half-up)", humanReview.OverallScore)
	}
	if len(disagreements) != 2 {
		t.Errorf("unknown override must not add disagreement entries, got %d", len(disagreements))
	}
}

func TestCountNotable(t *testing.T) {
	overrides := []evals.StageOverride{
		{StageID: "opening", Score: 95},
		{StageID: "resolution", Score: 49},
	}
	_, disagreements := review.Reconcile(evaluationFixture(), overrides, "", time.Now())

	if got := review.CountNotable(disagreements); got != 2 {
		t.Errorf("CountNotable = %d, want 2", got)
	}
}

func TestReconcileTrimsNotes(t *testing.T) {
	humanReview, _ := review.Reconcile(evaluationFixture(), nil, "  looked fine overall \n", time.Now())
	if humanReview.Notes != "looked fine overall" {
		t.Errorf("Notes = %q, want trimmed", humanReview.Notes)
	}
}
