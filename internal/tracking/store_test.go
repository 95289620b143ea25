package tracking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cadence/internal/evals"
	"cadence/internal/testsupport"
	"cadence/internal/tracking"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record, err := store.Track(ctx, "rec_0001", "Billing call")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if record.ID == 0 {
		t.Fatal("expected record ID to be assigned")
	}
	if record.State != tracking.StateIdle {
		t.Fatalf("expected idle state, got %s", record.State)
	}

	fetched, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Billing call" {
		t.Fatalf("unexpected fetched record: %#v", fetched)
	}

	found, err := store.GetByRecordingID(ctx, "rec_0001")
	if err != nil {
		t.Fatalf("GetByRecordingID failed: %v", err)
	}
	if found == nil || found.ID != record.ID {
		t.Fatalf("expected to find tracked record, got %#v", found)
	}
}

func TestTrackRequiresRecordingID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	if _, err := store.Track(ctx, "", "No Identifier"); err == nil {
		t.Fatal("expected error when recording id missing")
	}
}

func TestTrackResetsExistingRecord(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.TrackRecording(t, store, "rec_0002", "First pass")
	record.State = tracking.StateFailed
	record.Attempt = 12
	record.LastStatus = evals.StatusFailed
	record.FailureKind = evals.FailureGeneric
	record.ErrorMessage = "transcoding error"
	record.RequiresReview = true
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retracked, err := store.Track(ctx, "rec_0002", "")
	if err != nil {
		t.Fatalf("Track (again) failed: %v", err)
	}
	if retracked.ID != record.ID {
		t.Fatalf("expected row reuse, got id %d then %d", record.ID, retracked.ID)
	}
	if retracked.Title != "First pass" {
		t.Fatalf("expected title preserved, got %q", retracked.Title)
	}
	if retracked.State != tracking.StateIdle || retracked.Attempt != 0 {
		t.Fatalf("expected fresh watch, got state %s attempt %d", retracked.State, retracked.Attempt)
	}
	if retracked.ErrorMessage != "" || retracked.FailureKind != "" {
		t.Fatalf("expected failure details cleared, got %q / %q", retracked.ErrorMessage, retracked.FailureKind)
	}
	if retracked.RequiresReview {
		t.Fatal("expected requires-review flag cleared")
	}
}

func TestTrackOverwritesTitleWhenProvided(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.TrackRecording(t, store, "rec_0003", "Old title")
	updated, err := store.Track(ctx, "rec_0003", "New title")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if updated.Title != "New title" {
		t.Fatalf("expected title replaced, got %q", updated.Title)
	}
}

func TestListSupportsStateFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	a := testsupport.TrackRecording(t, store, "rec_a", "A")
	b := testsupport.TrackRecording(t, store, "rec_b", "B")
	b.State = tracking.StatePolling
	if err := store.Update(ctx, b); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	c := testsupport.TrackRecording(t, store, "rec_c", "C")
	c.SetFailed("processing error")
	if err := store.Update(ctx, c); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].ID != a.ID || records[1].ID != b.ID || records[2].ID != c.ID {
		t.Fatalf("expected order A,B,C, got IDs %d,%d,%d", records[0].ID, records[1].ID, records[2].ID)
	}

	filtered, err := store.List(ctx, tracking.StatePolling, tracking.StateFailed)
	if err != nil {
		t.Fatalf("Filtered list failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Fatalf("expected 2 records, got %d", len(filtered))
	}
	if filtered[0].ID != b.ID || filtered[1].ID != c.ID {
		t.Fatalf("unexpected filtered order: got %d,%d", filtered[0].ID, filtered[1].ID)
	}
}

func TestActiveReturnsResumableWatches(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	idle := testsupport.TrackRecording(t, store, "rec_idle", "")
	polling := testsupport.TrackRecording(t, store, "rec_polling", "")
	polling.State = tracking.StatePolling
	polling.Attempt = 3
	if err := store.Update(ctx, polling); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	done := testsupport.TrackRecording(t, store, "rec_done", "")
	done.SetTimedOut()
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	active, err := store.Active(ctx)
	if err != nil {
		t.Fatalf("Active failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active watches, got %d", len(active))
	}
	if active[0].ID != idle.ID || active[1].ID != polling.ID {
		t.Fatalf("unexpected active set: got %d,%d", active[0].ID, active[1].ID)
	}
}

func TestRecordAttempt(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.TrackRecording(t, store, "rec_0004", "")
	if err := store.RecordAttempt(ctx, "rec_0004", 5, evals.StatusProcessing); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}

	updated, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.State != tracking.StatePolling {
		t.Fatalf("expected polling state, got %s", updated.State)
	}
	if updated.Attempt != 5 {
		t.Fatalf("expected attempt 5, got %d", updated.Attempt)
	}
	if updated.LastStatus != evals.StatusProcessing {
		t.Fatalf("expected processing status, got %s", updated.LastStatus)
	}

	updated.SetCancelled()
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if err := store.RecordAttempt(ctx, "rec_0004", 6, evals.StatusProcessing); err != nil {
		t.Fatalf("RecordAttempt after cancel failed: %v", err)
	}
	final, err := store.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.State != tracking.StateCancelled {
		t.Fatalf("expected cancelled row to stay cancelled, got %s", final.State)
	}
	if final.Attempt != 5 {
		t.Fatalf("expected attempt count preserved, got %d", final.Attempt)
	}
}

func TestEvaluationSnapshotRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.TrackRecording(t, store, "rec_0005", "Support call")
	eval := &evals.Evaluation{
		ID:           "eval_0005",
		RecordingID:  "rec_0005",
		OverallScore: 82,
		Passed:       true,
		Confidence:   0.91,
		StageScores: []evals.StageScore{
			{ID: "call_opening", Name: "Call Opening", Score: 85, Weight: 30, Passed: true},
			{ID: "issue_resolution", Name: "Issue Resolution", Score: 80, Weight: 70, Passed: true, Required: true},
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := record.SetCompleted(eval, false); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByEvaluationID(ctx, "eval_0005")
	if err != nil {
		t.Fatalf("GetByEvaluationID failed: %v", err)
	}
	if fetched == nil || fetched.RecordingID != "rec_0005" {
		t.Fatalf("unexpected record for evaluation: %#v", fetched)
	}
	decoded, err := fetched.Evaluation()
	if err != nil {
		t.Fatalf("Evaluation decode failed: %v", err)
	}
	if decoded == nil || decoded.OverallScore != 82 {
		t.Fatalf("unexpected decoded snapshot: %#v", decoded)
	}
	if len(decoded.StageScores) != 2 || decoded.StageScores[1].ID != "issue_resolution" {
		t.Fatalf("unexpected stage scores: %#v", decoded.StageScores)
	}
}

func TestResetForRecheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name  string
		state tracking.WatchState
	}{
		{"timed_out_a", tracking.StateTimedOut},
		{"timed_out_b", tracking.StateTimedOut},
	}
	var ids []string
	for i, tc := range cases {
		recordingID := fmt.Sprintf("rec_reset_%d", i)
		record := testsupport.TrackRecording(t, store, recordingID, tc.name)
		record.State = tc.state
		record.Attempt = 60
		if err := store.Update(ctx, record); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, recordingID)
	}

	count, err := store.ResetForRecheck(ctx)
	if err != nil {
		t.Fatalf("ResetForRecheck failed: %v", err)
	}
	if int(count) != len(cases) {
		t.Fatalf("expected %d watches reset, got %d", len(cases), count)
	}

	for _, recordingID := range ids {
		updated, err := store.GetByRecordingID(ctx, recordingID)
		if err != nil {
			t.Fatalf("GetByRecordingID failed: %v", err)
		}
		if updated.State != tracking.StateIdle {
			t.Fatalf("%s: expected idle after reset, got %s", recordingID, updated.State)
		}
		if updated.Attempt != 0 {
			t.Fatalf("%s: expected attempt reset, got %d", recordingID, updated.Attempt)
		}
	}
}

func TestResetForRecheckTargeted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	failed := testsupport.TrackRecording(t, store, "rec_failed", "")
	failed.SetFailed("boom")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	polling := testsupport.TrackRecording(t, store, "rec_live", "")
	polling.State = tracking.StatePolling
	if err := store.Update(ctx, polling); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.ResetForRecheck(ctx, "rec_failed", "rec_live")
	if err != nil {
		t.Fatalf("ResetForRecheck targeted: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 watch reset, got %d", count)
	}

	reset, err := store.GetByRecordingID(ctx, "rec_failed")
	if err != nil {
		t.Fatalf("GetByRecordingID failed: %v", err)
	}
	if reset.State != tracking.StateIdle || reset.ErrorMessage != "" {
		t.Fatalf("expected failed watch reset, got state %s error %q", reset.State, reset.ErrorMessage)
	}

	untouched, err := store.GetByRecordingID(ctx, "rec_live")
	if err != nil {
		t.Fatalf("GetByRecordingID failed: %v", err)
	}
	if untouched.State != tracking.StatePolling {
		t.Fatalf("expected in-flight watch untouched, got %s", untouched.State)
	}
}

func TestRecordReviewClearsPendingFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.TrackRecording(t, store, "rec_0006", "Escalation")
	eval := &evals.Evaluation{ID: "eval_0006", RecordingID: "rec_0006", OverallScore: 55}
	if err := record.SetCompleted(eval, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	entry := &tracking.ReviewLogEntry{
		EvaluationID:  "eval_0006",
		OverallScore:  68,
		OverridesJSON: `[{"stage_id":"call_opening","score":70}]`,
		Notes:         "agent recovered well",
		NotableCount:  1,
	}
	if err := store.RecordReview(ctx, entry); err != nil {
		t.Fatalf("RecordReview failed: %v", err)
	}
	if entry.ID == 0 {
		t.Fatal("expected review entry ID to be assigned")
	}

	updated, err := store.GetByRecordingID(ctx, "rec_0006")
	if err != nil {
		t.Fatalf("GetByRecordingID failed: %v", err)
	}
	if updated.RequiresReview {
		t.Fatal("expected requires-review flag cleared")
	}
	if updated.ReviewSubmittedAt == nil {
		t.Fatal("expected review submission time recorded")
	}

	entries, err := store.ReviewsForEvaluation(ctx, "eval_0006")
	if err != nil {
		t.Fatalf("ReviewsForEvaluation failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 review entry, got %d", len(entries))
	}
	if entries[0].OverallScore != 68 || entries[0].Notes != "agent recovered well" {
		t.Fatalf("unexpected review entry: %#v", entries[0])
	}
}

func TestRecordReviewAppendsOnResubmission(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	record := testsupport.TrackRecording(t, store, "rec_0007", "")
	eval := &evals.Evaluation{ID: "eval_0007", RecordingID: "rec_0007", OverallScore: 61}
	if err := record.SetCompleted(eval, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if err := store.Update(ctx, record); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	first := &tracking.ReviewLogEntry{EvaluationID: "eval_0007", OverallScore: 65}
	if err := store.RecordReview(ctx, first); err != nil {
		t.Fatalf("RecordReview first: %v", err)
	}
	second := &tracking.ReviewLogEntry{EvaluationID: "eval_0007", OverallScore: 70, Notes: "revised"}
	if err := store.RecordReview(ctx, second); err != nil {
		t.Fatalf("RecordReview second: %v", err)
	}

	entries, err := store.ReviewsForEvaluation(ctx, "eval_0007")
	if err != nil {
		t.Fatalf("ReviewsForEvaluation failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 review entries, got %d", len(entries))
	}
	if entries[0].OverallScore != 65 || entries[1].OverallScore != 70 {
		t.Fatalf("unexpected entry order: %d then %d", entries[0].OverallScore, entries[1].OverallScore)
	}
}

func TestHealthCountsStates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.TrackRecording(t, store, "rec_h1", "")
	live := testsupport.TrackRecording(t, store, "rec_h2", "")
	live.State = tracking.StatePolling
	if err := store.Update(ctx, live); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	done := testsupport.TrackRecording(t, store, "rec_h3", "")
	if err := done.SetCompleted(&evals.Evaluation{ID: "eval_h3", RecordingID: "rec_h3"}, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	timedOut := testsupport.TrackRecording(t, store, "rec_h4", "")
	timedOut.SetTimedOut()
	if err := store.Update(ctx, timedOut); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	health, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if health.Total != 4 {
		t.Fatalf("expected total 4, got %d", health.Total)
	}
	if health.Active != 2 {
		t.Fatalf("expected 2 active, got %d", health.Active)
	}
	if health.Completed != 1 || health.TimedOut != 1 {
		t.Fatalf("unexpected terminal counts: %#v", health)
	}
	if health.AwaitingReview != 1 {
		t.Fatalf("expected 1 awaiting review, got %d", health.AwaitingReview)
	}
}

func TestCheckHealthReportsColumns(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.TrackRecording(t, store, "rec_check", "")

	health, err := store.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.DatabaseExists || !health.DatabaseReadable || !health.TableExists {
		t.Fatalf("expected healthy database, got %#v", health)
	}
	if len(health.MissingColumns) != 0 {
		t.Fatalf("expected no missing columns, got %v", health.MissingColumns)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass")
	}
	if health.TotalRecords != 1 {
		t.Fatalf("expected 1 record, got %d", health.TotalRecords)
	}
}

func TestRemoveAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.TrackRecording(t, store, "rec_r1", "")
	done := testsupport.TrackRecording(t, store, "rec_r2", "")
	done.SetCancelled()
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	removed, err := store.Remove(ctx, "rec_r1")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if !removed {
		t.Fatal("expected record removed")
	}
	removed, err = store.Remove(ctx, "rec_missing")
	if err != nil {
		t.Fatalf("Remove missing failed: %v", err)
	}
	if removed {
		t.Fatal("expected no-op removal for unknown id")
	}

	cleared, err := store.ClearTerminal(ctx)
	if err != nil {
		t.Fatalf("ClearTerminal failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 terminal record cleared, got %d", cleared)
	}

	testsupport.TrackRecording(t, store, "rec_r3", "")
	total, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 record cleared, got %d", total)
	}
	records, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty store, got %d records", len(records))
	}
}
