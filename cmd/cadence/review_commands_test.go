package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"cadence/internal/evals"
)

func TestReviewsListsPending(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"reviews"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	requireContains(t, out, "No evaluations awaiting review")

	env.platform.setPendingReviews(`{"reviews":[{
		"evaluation_id": "eval-77",
		"recording_id": "rec-77",
		"recording_name": "Billing Call",
		"overall_score": 64,
		"confidence": 0.55,
		"reason": "low_confidence",
		"queued_at": "2026-03-01T10:00:00Z"
	}]}`)

	out, _, err = runCLI(t, []string{"reviews"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("reviews: %v", err)
	}
	requireContains(t, out, "eval-77")
	requireContains(t, out, "Billing Call")
	requireContains(t, out, "0.55")
	requireContains(t, out, "low_confidence")
}

func TestReviewsJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	env.platform.setPendingReviews(`{"reviews":[{
		"evaluation_id": "eval-77",
		"recording_id": "rec-77",
		"overall_score": 64,
		"confidence": 0.55,
		"reason": "low_confidence"
	}]}`)

	out, _, err := runCLI(t, []string{"reviews", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("reviews --json: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 review, got %d", len(items))
	}
	if items[0]["evaluationId"] != "eval-77" {
		t.Fatalf("expected evaluationId eval-77, got %v", items[0]["evaluationId"])
	}
}

func TestReviewSubmit(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	eval := &evals.Evaluation{
		ID:           "eval-1",
		RecordingID:  "rec-review",
		OverallScore: 80,
		Passed:       true,
		Confidence:   0.62,
		StageScores: []evals.StageScore{
			{ID: "quality", Name: "Quality", Score: 80, Weight: 100, Passed: true, Required: true},
		},
	}
	seedCompletedRecording(t, env, "rec-review", "Review Call", eval, true)

	out, _, err := runCLI(t, []string{
		"review", "submit", "eval-1",
		"--stage", "quality=90",
		"--notes", "agent recovered well",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("review submit: %v", err)
	}
	requireContains(t, out, "Review submitted for eval-1 (Review Call)")
	requireContains(t, out, "Final score: 90")
	requireContains(t, out, "+10")

	submissions := env.platform.reviewSubmissions()
	if len(submissions) != 1 || submissions[0] != "eval-1" {
		t.Fatalf("expected one platform submission for eval-1, got %v", submissions)
	}

	entries, err := env.store.ReviewsForEvaluation(ctx, "eval-1")
	if err != nil {
		t.Fatalf("reviews for evaluation: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one review log entry, got %d", len(entries))
	}
	if entries[0].OverallScore != 90 {
		t.Fatalf("expected logged score 90, got %d", entries[0].OverallScore)
	}
	if entries[0].NotableCount != 0 {
		t.Fatalf("expected no notable disagreements, got %d", entries[0].NotableCount)
	}
}

func TestReviewSubmitNotableJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	eval := &evals.Evaluation{
		ID:           "eval-2",
		RecordingID:  "rec-notable",
		OverallScore: 70,
		Passed:       true,
		Confidence:   0.58,
		StageScores: []evals.StageScore{
			{ID: "quality", Name: "Quality", Score: 70, Weight: 100, Passed: true},
		},
	}
	seedCompletedRecording(t, env, "rec-notable", "Notable Call", eval, true)

	out, _, err := runCLI(t, []string{
		"review", "submit", "eval-2",
		"--stage", "quality=95",
		"--json",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("review submit --json: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if result["evaluationId"] != "eval-2" {
		t.Fatalf("expected evaluationId eval-2, got %v", result["evaluationId"])
	}
	if result["overallScore"] != float64(95) {
		t.Fatalf("expected overallScore 95, got %v", result["overallScore"])
	}
	if result["notableCount"] != float64(1) {
		t.Fatalf("expected notableCount 1, got %v", result["notableCount"])
	}
}

func TestReviewSubmitInvalidStageOverride(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"review", "submit", "eval-1", "--stage", "garbage"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid stage override") {
		t.Fatalf("expected stage override parse error, got %v", err)
	}

	_, _, err = runCLI(t, []string{"review", "submit", "eval-1", "--stage", "quality=loud"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid stage score") {
		t.Fatalf("expected stage score parse error, got %v", err)
	}
}

func TestReviewSubmitFallsBackToDirectWorkflow(t *testing.T) {
	env := setupCLITestEnv(t)

	eval := &evals.Evaluation{
		ID:           "eval-3",
		RecordingID:  "rec-direct",
		OverallScore: 75,
		Passed:       true,
		Confidence:   0.8,
		StageScores: []evals.StageScore{
			{ID: "quality", Name: "Quality", Score: 75, Weight: 100, Passed: true},
		},
	}
	seedCompletedRecording(t, env, "rec-direct", "Direct Call", eval, false)

	out, _, err := runCLI(t, []string{"review", "submit", "eval-3", "--stage", "quality=80"}, env.deadSocketPath(), env.configPath)
	if err != nil {
		t.Fatalf("review submit fallback: %v", err)
	}
	requireContains(t, out, "Review submitted for eval-3 (Direct Call)")
	requireContains(t, out, "Final score: 80")

	submissions := env.platform.reviewSubmissions()
	if len(submissions) != 1 || submissions[0] != "eval-3" {
		t.Fatalf("expected one platform submission for eval-3, got %v", submissions)
	}
}
