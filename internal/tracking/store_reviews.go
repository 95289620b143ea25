package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RecordReview appends a review-log entry and clears the pending-review flag
// on the tracked recording holding the evaluation, in one transaction. Call it
// only after the platform has acknowledged the submission.
func (s *Store) RecordReview(ctx context.Context, entry *ReviewLogEntry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	if entry.EvaluationID == "" {
		return errors.New("entry evaluation id is empty")
	}

	submittedAt := entry.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	timestamp := submittedAt.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin review tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO review_log (
            evaluation_id, overall_score, overrides_json, notes, notable_count, submitted_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.EvaluationID,
		entry.OverallScore,
		nullableString(entry.OverridesJSON),
		nullableString(entry.Notes),
		entry.NotableCount,
		timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert review entry: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE tracked_recordings
         SET requires_review = 0, review_submitted_at = ?, updated_at = ?
         WHERE evaluation_id = ?`,
		timestamp,
		timestamp,
		entry.EvaluationID,
	); err != nil {
		return fmt.Errorf("clear pending review: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	entry.SubmittedAt = submittedAt.UTC()
	return nil
}

// ReviewsForEvaluation returns the recorded reviews for an evaluation, oldest
// first. A resubmission shows up as an additional entry.
func (s *Store) ReviewsForEvaluation(ctx context.Context, evaluationID string) ([]*ReviewLogEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+reviewColumns+` FROM review_log WHERE evaluation_id = ? ORDER BY id`,
		evaluationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query review log: %w", err)
	}
	defer rows.Close()

	var entries []*ReviewLogEntry
	for rows.Next() {
		entry, err := scanReviewEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
