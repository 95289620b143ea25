package tracking

import (
	"database/sql"
	"errors"
	"time"

	"cadence/internal/evals"
)

const recordColumns = "id, recording_id, title, state, attempt, last_status, failure_kind, error_message, evaluation_id, evaluation_json, requires_review, review_submitted_at, created_at, updated_at"

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*TrackedRecording, error) {
	var (
		id             int64
		recordingID    string
		title          sql.NullString
		stateStr       string
		attempt        int64
		lastStatus     sql.NullString
		failureKind    sql.NullString
		errorMessage   sql.NullString
		evaluationID   sql.NullString
		evaluationJSON sql.NullString
		requiresReview sql.NullInt64
		reviewedRaw    sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&recordingID,
		&title,
		&stateStr,
		&attempt,
		&lastStatus,
		&failureKind,
		&errorMessage,
		&evaluationID,
		&evaluationJSON,
		&requiresReview,
		&reviewedRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &TrackedRecording{
		ID:             id,
		RecordingID:    recordingID,
		Title:          title.String,
		State:          WatchState(stateStr),
		Attempt:        int(attempt),
		LastStatus:     evals.RecordingStatus(lastStatus.String),
		FailureKind:    evals.FailureKind(failureKind.String),
		ErrorMessage:   errorMessage.String,
		EvaluationID:   evaluationID.String,
		EvaluationJSON: evaluationJSON.String,
	}
	if requiresReview.Valid {
		record.RequiresReview = requiresReview.Int64 != 0
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	if reviewedRaw.Valid {
		if reviewed, err := parseTimeString(reviewedRaw.String); err == nil {
			record.ReviewSubmittedAt = &reviewed
		}
	}
	return record, nil
}

const reviewColumns = "id, evaluation_id, overall_score, overrides_json, notes, notable_count, submitted_at"

func scanReviewEntry(scanner interface{ Scan(dest ...any) error }) (*ReviewLogEntry, error) {
	var (
		id           int64
		evaluationID string
		overallScore int64
		overrides    sql.NullString
		notes        sql.NullString
		notableCount int64
		submittedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&evaluationID,
		&overallScore,
		&overrides,
		&notes,
		&notableCount,
		&submittedRaw,
	); err != nil {
		return nil, err
	}

	entry := &ReviewLogEntry{
		ID:            id,
		EvaluationID:  evaluationID,
		OverallScore:  int(overallScore),
		OverridesJSON: overrides.String,
		Notes:         notes.String,
		NotableCount:  int(notableCount),
	}
	if submitted, err := parseTimeString(submittedRaw.String); err == nil {
		entry.SubmittedAt = submitted
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
