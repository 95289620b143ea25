package ipc

import "cadence/internal/api"

// StartRequest triggers daemon watch startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops daemon watch activity.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// Recording mirrors the HTTP API recording DTO for internal IPC callers.
type Recording = api.TrackedRecording

// PendingReview mirrors the HTTP API pending-review DTO.
type PendingReview = api.PendingReview

// CheckStatus describes one daemon readiness check.
type CheckStatus = api.CheckStatus

// StatusLine describes one rendered status report line.
type StatusLine = api.StatusLine

// StatusResponse represents combined daemon/watch status information.
// SystemChecks is assembled on the CLI side from config and probe results;
// the daemon never populates it.
type StatusResponse struct {
	Running       bool           `json:"running"`
	ActiveWatches int            `json:"active_watches"`
	TrackingStats map[string]int `json:"tracking_stats"`
	LastError     string         `json:"last_error"`
	LockPath      string         `json:"lock_path"`
	DatabasePath  string         `json:"database_path"`
	Checks        []CheckStatus  `json:"checks"`
	SystemChecks  []StatusLine   `json:"system_checks,omitempty"`
	PID           int            `json:"pid"`
}

// TrackRequest begins watching a platform recording.
type TrackRequest struct {
	RecordingID string `json:"recording_id"`
	Title       string `json:"title"`
}

// TrackResponse returns the tracked recording.
type TrackResponse struct {
	Recording Recording `json:"recording"`
}

// CancelRequest cancels the watch for a recording.
type CancelRequest struct {
	RecordingID string `json:"recording_id"`
}

// CancelResponse returns the recording after cancellation.
type CancelResponse struct {
	Recording Recording `json:"recording"`
}

// RecheckRequest re-polls recordings. An empty list targets every
// timed-out recording; explicit identifiers may name any finished row.
type RecheckRequest struct {
	RecordingIDs []string `json:"recording_ids"`
}

// RecheckResponse reports number of recordings queued for recheck.
type RecheckResponse struct {
	Updated int64 `json:"updated"`
}

// TrackingListRequest filters tracked recordings by watch state.
type TrackingListRequest struct {
	States []string `json:"states"`
}

// TrackingListResponse contains tracked recordings.
type TrackingListResponse struct {
	Recordings []Recording `json:"recordings"`
}

// TrackingDescribeRequest fetches a single recording by platform id.
type TrackingDescribeRequest struct {
	RecordingID string `json:"recording_id"`
}

// TrackingDescribeResponse contains a single recording when found.
type TrackingDescribeResponse struct {
	Found     bool      `json:"found"`
	Recording Recording `json:"recording"`
}

// TrackingRemoveRequest deletes specific recordings from tracking.
type TrackingRemoveRequest struct {
	RecordingIDs []string `json:"recording_ids"`
}

// TrackingRemoveResponse reports number of removed rows.
type TrackingRemoveResponse struct {
	Removed int64 `json:"removed"`
}

// TrackingClearRequest removes all tracked recordings.
type TrackingClearRequest struct{}

// TrackingClearResponse reports number of removed rows.
type TrackingClearResponse struct {
	Removed int64 `json:"removed"`
}

// TrackingClearTerminalRequest removes recordings in terminal states.
type TrackingClearTerminalRequest struct{}

// TrackingClearTerminalResponse reports number of removed rows.
type TrackingClearTerminalResponse struct {
	Removed int64 `json:"removed"`
}

// TrackingHealthRequest fetches aggregate tracking diagnostics.
type TrackingHealthRequest struct{}

// TrackingHealthResponse reports tracking health information.
type TrackingHealthResponse struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	Completed      int `json:"completed"`
	Failed         int `json:"failed"`
	TimedOut       int `json:"timed_out"`
	Cancelled      int `json:"cancelled"`
	AwaitingReview int `json:"awaiting_review"`
}

// DatabaseHealthRequest fetches detailed database diagnostics.
type DatabaseHealthRequest struct{}

// DatabaseHealthResponse reports database health information.
type DatabaseHealthResponse struct {
	DBPath           string   `json:"db_path"`
	DatabaseExists   bool     `json:"database_exists"`
	DatabaseReadable bool     `json:"database_readable"`
	SchemaVersion    string   `json:"schema_version"`
	TableExists      bool     `json:"table_exists"`
	ColumnsPresent   []string `json:"columns_present"`
	MissingColumns   []string `json:"missing_columns"`
	IntegrityCheck   bool     `json:"integrity_check"`
	TotalRecords     int      `json:"total_records"`
	Error            string   `json:"error"`
}

// PendingReviewsRequest fetches the platform's human-review worklist.
type PendingReviewsRequest struct {
	Limit int `json:"limit"`
}

// PendingReviewsResponse contains pending review entries.
type PendingReviewsResponse struct {
	Reviews []PendingReview `json:"reviews"`
}

// StageOverride carries one reviewer stage-score correction.
type StageOverride struct {
	StageID string `json:"stage_id"`
	Score   int    `json:"score"`
}

// SubmitReviewRequest submits a human review for an evaluation.
type SubmitReviewRequest struct {
	EvaluationID string          `json:"evaluation_id"`
	RecordingID  string          `json:"recording_id"`
	Overrides    []StageOverride `json:"overrides"`
	Notes        string          `json:"notes"`
}

// SubmitReviewResponse reports the reconciled submission.
type SubmitReviewResponse struct {
	Result api.SubmitReviewResult `json:"result"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
