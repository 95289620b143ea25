package evals

import "time"

// StageOverride is one reviewer-entered stage score. A zero Score means the
// reviewer left the stage untouched and accepts the AI score for it.
type StageOverride struct {
	StageID string
	Score   int
}

// HumanReview is a reviewer's reconciliation of one evaluation. The stage
// scores are the merged result (override where entered, AI score otherwise),
// parallel to the evaluation's stages by identifier. Records are never
// mutated after creation; a resubmission produces a new record and clears the
// prior pending-review flag.
type HumanReview struct {
	ID           string
	EvaluationID string
	// OverallScore is the weighted aggregate of the merged stage scores,
	// computed with the same rule the AI overall uses.
	OverallScore int
	StageScores  []StageScore
	Notes        string
	SubmittedAt  time.Time
}

// PendingReview is one entry of the platform's human-review worklist.
type PendingReview struct {
	EvaluationID  string
	RecordingID   string
	RecordingName string
	OverallScore  int
	Confidence    float64
	// Reason is the platform's stated routing cause (low confidence, critical
	// violation, or both).
	Reason   string
	QueuedAt time.Time
}
