package tracking

import (
	"context"
	"fmt"
	"time"

	"cadence/internal/evals"
)

// RecordAttempt persists one poll observation: the watch stays in the polling
// state with an updated attempt count and the platform status it saw. Snapshot
// fields are left untouched. Rows that already reached a terminal state are
// never revived, so a poll racing a cancel cannot undo it.
func (s *Store) RecordAttempt(ctx context.Context, recordingID string, attempt int, lastStatus evals.RecordingStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE tracked_recordings
         SET state = ?, attempt = ?, last_status = ?, updated_at = ?
         WHERE recording_id = ? AND state IN (?, ?)`,
		StatePolling,
		attempt,
		nullableString(string(lastStatus)),
		now,
		recordingID,
		StateIdle,
		StatePolling,
	); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// ResetForRecheck returns finished watches to the idle state so the watch
// manager can poll them again with a fresh attempt budget. With no identifiers
// every timed-out watch is reset; explicit identifiers may reset any finished
// watch. The evaluation snapshot is kept until a new result overwrites it.
func (s *Store) ResetForRecheck(ctx context.Context, recordingIDs ...string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	query := `UPDATE tracked_recordings
        SET state = ?, attempt = 0, failure_kind = NULL, error_message = NULL, updated_at = ?`
	args := []any{StateIdle, now}

	if len(recordingIDs) == 0 {
		query += ` WHERE state = ?`
		args = append(args, StateTimedOut)
	} else {
		query += ` WHERE state IN (?, ?, ?, ?) AND recording_id IN (` + makePlaceholders(len(recordingIDs)) + `)`
		args = append(args, StateCompleted, StateFailed, StateTimedOut, StateCancelled)
		for _, id := range recordingIDs {
			args = append(args, id)
		}
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("reset for recheck: %w", err)
	}
	return res.RowsAffected()
}
