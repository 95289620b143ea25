package api

import "time"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TrackedRecording describes a watched recording in a transport-friendly format.
type TrackedRecording struct {
	ID                int64       `json:"id"`
	RecordingID       string      `json:"recordingId"`
	Title             string      `json:"title"`
	State             string      `json:"state"`
	Attempt           int         `json:"attempt"`
	LastStatus        string      `json:"lastStatus,omitempty"`
	FailureKind       string      `json:"failureKind,omitempty"`
	ErrorMessage      string      `json:"errorMessage,omitempty"`
	EvaluationID      string      `json:"evaluationId,omitempty"`
	RequiresReview    bool        `json:"requiresReview"`
	ReviewSubmittedAt string      `json:"reviewSubmittedAt,omitempty"`
	CreatedAt         string      `json:"createdAt,omitempty"`
	UpdatedAt         string      `json:"updatedAt,omitempty"`
	Evaluation        *Evaluation `json:"evaluation,omitempty"`
}

// Evaluation is the transport form of a stored evaluation snapshot.
type Evaluation struct {
	ID                  string       `json:"id"`
	RecordingID         string       `json:"recordingId"`
	OverallScore        int          `json:"overallScore"`
	Passed              bool         `json:"passed"`
	Confidence          float64      `json:"confidence"`
	RequiresHumanReview bool         `json:"requiresHumanReview"`
	StageScores         []StageScore `json:"stageScores"`
	Violations          []Violation  `json:"violations,omitempty"`
	Explanation         *Explanation `json:"explanation,omitempty"`
	CreatedAt           string       `json:"createdAt,omitempty"`
}

// StageScore is one weighted evaluation component.
type StageScore struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Score     int             `json:"score"`
	Weight    float64         `json:"weight"`
	Passed    bool            `json:"passed"`
	Required  bool            `json:"required"`
	Feedback  string          `json:"feedback,omitempty"`
	Behaviors []BehaviorScore `json:"behaviors,omitempty"`
}

// BehaviorScore is a behavior-level sub-score under one stage.
type BehaviorScore struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Passed bool   `json:"passed"`
}

// Violation is one detected policy breach.
type Violation struct {
	Type          string   `json:"type"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	OffsetSeconds *float64 `json:"offsetSeconds,omitempty"`
	RuleID        string   `json:"ruleId,omitempty"`
}

// StageContribution is one stage's share of the overall score.
type StageContribution struct {
	StageID string  `json:"stageId"`
	Name    string  `json:"name"`
	Points  float64 `json:"points"`
}

// ConfidenceSignal is one component of the platform's confidence estimate.
type ConfidenceSignal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Explanation carries the optional score-breakdown payload.
type Explanation struct {
	StageContributions []StageContribution `json:"stageContributions,omitempty"`
	ConfidenceSignals  []ConfidenceSignal  `json:"confidenceSignals,omitempty"`
}

// Disagreement is one per-stage reviewer/AI score difference.
type Disagreement struct {
	StageID    string `json:"stageId"`
	Name       string `json:"name"`
	AIScore    int    `json:"aiScore"`
	HumanScore int    `json:"humanScore"`
	Delta      int    `json:"delta"`
	Notable    bool   `json:"notable"`
}

// PendingReview is one entry of the platform's human-review worklist.
type PendingReview struct {
	EvaluationID  string  `json:"evaluationId"`
	RecordingID   string  `json:"recordingId"`
	RecordingName string  `json:"recordingName"`
	OverallScore  int     `json:"overallScore"`
	Confidence    float64 `json:"confidence"`
	Reason        string  `json:"reason,omitempty"`
	QueuedAt      string  `json:"queuedAt,omitempty"`
}

// ReviewLogEntry is one locally recorded review submission.
type ReviewLogEntry struct {
	ID           int64  `json:"id"`
	EvaluationID string `json:"evaluationId"`
	OverallScore int    `json:"overallScore"`
	Notes        string `json:"notes,omitempty"`
	NotableCount int    `json:"notableCount"`
	SubmittedAt  string `json:"submittedAt,omitempty"`
}

// WatchStatus summarizes watch manager execution state.
type WatchStatus struct {
	Running       bool           `json:"running"`
	ActiveWatches int            `json:"activeWatches"`
	LastError     string         `json:"lastError,omitempty"`
	TrackingStats map[string]int `json:"trackingStats"`
}

// CheckStatus captures one daemon readiness check result.
type CheckStatus struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// StatusLine is one rendered line of the status report with its severity.
type StatusLine struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	DatabasePath string        `json:"databasePath"`
	LockFilePath string        `json:"lockFilePath"`
	SocketPath   string        `json:"socketPath"`
	Watch        WatchStatus   `json:"watch"`
	Checks       []CheckStatus `json:"checks,omitempty"`
}

// TrackingStatsResponse provides a normalized tracking stats payload.
type TrackingStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// RecordingListResponse wraps a collection of tracked recordings.
type RecordingListResponse struct {
	Recordings []TrackedRecording `json:"recordings"`
}

// RecordingResponse wraps a single tracked recording.
type RecordingResponse struct {
	Recording TrackedRecording `json:"recording"`
}

// LogEvent is the transport form of one structured log line.
type LogEvent struct {
	Sequence      uint64            `json:"sequence"`
	Timestamp     time.Time         `json:"timestamp"`
	Level         string            `json:"level"`
	Message       string            `json:"message"`
	Component     string            `json:"component,omitempty"`
	RecordingID   string            `json:"recordingId,omitempty"`
	State         string            `json:"state,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Details       []DetailField     `json:"details,omitempty"`
}

// DetailField is one labeled value attached to a log event.
type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LogStreamResponse carries a page of log events plus the cursor for the
// next fetch.
type LogStreamResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}
