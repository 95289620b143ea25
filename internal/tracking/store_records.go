package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Track inserts a new tracked recording or resets an existing row for a fresh
// watch. Re-tracking clears the prior attempt count, failure details, and
// evaluation snapshot; the stored title survives unless a new one is given.
func (s *Store) Track(ctx context.Context, recordingID, title string) (*TrackedRecording, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)

	if err := s.execWithoutResultRetry(
		ctx,
		`INSERT INTO tracked_recordings (
            recording_id, title, state, attempt, created_at, updated_at
        ) VALUES (?, ?, ?, 0, ?, ?)
        ON CONFLICT(recording_id) DO UPDATE SET
            title = COALESCE(excluded.title, tracked_recordings.title),
            state = excluded.state,
            attempt = 0,
            last_status = NULL,
            failure_kind = NULL,
            error_message = NULL,
            evaluation_id = NULL,
            evaluation_json = NULL,
            requires_review = 0,
            review_submitted_at = NULL,
            updated_at = excluded.updated_at`,
		nullableString(recordingID),
		nullableString(title),
		StateIdle,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("track recording: %w", err)
	}

	return s.GetByRecordingID(ctx, recordingID)
}

// GetByID fetches a tracked recording by row identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*TrackedRecording, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM tracked_recordings WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return record, nil
}

// GetByRecordingID fetches a tracked recording by platform identifier.
func (s *Store) GetByRecordingID(ctx context.Context, recordingID string) (*TrackedRecording, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM tracked_recordings WHERE recording_id = ?`,
		recordingID,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by recording id: %w", err)
	}
	return record, nil
}

// GetByEvaluationID fetches the tracked recording holding a given evaluation
// snapshot.
func (s *Store) GetByEvaluationID(ctx context.Context, evaluationID string) (*TrackedRecording, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+` FROM tracked_recordings WHERE evaluation_id = ? ORDER BY id LIMIT 1`,
		evaluationID,
	)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record by evaluation id: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing tracked recording.
func (s *Store) Update(ctx context.Context, record *TrackedRecording) error {
	if record == nil {
		return errors.New("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE tracked_recordings
         SET title = ?, state = ?, attempt = ?, last_status = ?,
             failure_kind = ?, error_message = ?, evaluation_id = ?,
             evaluation_json = ?, requires_review = ?, review_submitted_at = ?,
             updated_at = ?
         WHERE id = ?`,
		nullableString(record.Title),
		record.State,
		record.Attempt,
		nullableString(string(record.LastStatus)),
		nullableString(string(record.FailureKind)),
		nullableString(record.ErrorMessage),
		nullableString(record.EvaluationID),
		nullableString(record.EvaluationJSON),
		boolToInt(record.RequiresReview),
		nullableTime(record.ReviewSubmittedAt),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return nil
}

// List returns tracked recordings filtered by watch state set (or all records
// when no state is provided).
func (s *Store) List(ctx context.Context, states ...WatchState) ([]*TrackedRecording, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM tracked_recordings`
	orderClause := ` ORDER BY created_at`

	if len(states) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(states))
		args := make([]any, len(states))
		for i, state := range states {
			args[i] = state
		}
		query := baseQuery + ` WHERE state IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list tracked recordings: %w", err)
	}
	defer rows.Close()

	var records []*TrackedRecording
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Active returns the tracked recordings whose watches a restarting daemon
// should resume, ordered by creation time.
func (s *Store) Active(ctx context.Context) ([]*TrackedRecording, error) {
	return s.List(ctx, StateIdle, StatePolling)
}

// Remove deletes a tracked recording by platform identifier.
func (s *Store) Remove(ctx context.Context, recordingID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM tracked_recordings WHERE recording_id = ?`, recordingID)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClearTerminal removes tracked recordings whose watches have finished.
// The review log is append-only and survives clears.
func (s *Store) ClearTerminal(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM tracked_recordings WHERE state IN (?, ?, ?, ?)`,
		StateCompleted,
		StateFailed,
		StateTimedOut,
		StateCancelled,
	)
	if err != nil {
		return 0, fmt.Errorf("clear terminal records: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all tracked recordings.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM tracked_recordings`)
	if err != nil {
		return 0, fmt.Errorf("clear tracked recordings: %w", err)
	}
	return res.RowsAffected()
}
