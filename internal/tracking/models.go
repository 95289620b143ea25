package tracking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cadence/internal/evals"
)

// WatchState represents the local watch lifecycle of a tracked recording.
type WatchState string

const (
	StateIdle      WatchState = "idle"
	StatePolling   WatchState = "polling"
	StateCompleted WatchState = "completed"
	StateFailed    WatchState = "failed"
	StateTimedOut  WatchState = "timed_out"
	StateCancelled WatchState = "cancelled"
)

var allStates = []WatchState{
	StateIdle,
	StatePolling,
	StateCompleted,
	StateFailed,
	StateTimedOut,
	StateCancelled,
}

var stateSet = func() map[WatchState]struct{} {
	set := make(map[WatchState]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

var activeStates = map[WatchState]struct{}{
	StateIdle:    {},
	StatePolling: {},
}

// AllStates returns the ordered list of known watch states.
func AllStates() []WatchState {
	cp := make([]WatchState, len(allStates))
	copy(cp, allStates)
	return cp
}

// ParseWatchState converts a string into a known WatchState.
func ParseWatchState(value string) (WatchState, bool) {
	normalized := WatchState(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stateSet[normalized]
	return normalized, ok
}

// Terminal reports whether the watch has finished and no further transitions
// will occur without an explicit re-track or recheck.
func (s WatchState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateCancelled:
		return true
	default:
		return false
	}
}

// Active reports whether a watch in this state should be resumed by a
// restarting daemon.
func (s WatchState) Active() bool {
	_, ok := activeStates[s]
	return ok
}

// DatabaseHealth captures diagnostic information about the tracking database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalRecords     int
	Error            string
}

// HealthSummary describes aggregated watch counts per key lifecycle states.
type HealthSummary struct {
	Total          int
	Active         int
	Completed      int
	Failed         int
	TimedOut       int
	Cancelled      int
	AwaitingReview int
}

// TrackedRecording is one watched recording persisted in SQLite. RecordingID
// is the platform identifier and is unique per row; re-tracking reuses the row.
type TrackedRecording struct {
	ID                int64
	RecordingID       string
	Title             string
	State             WatchState
	Attempt           int
	LastStatus        evals.RecordingStatus
	FailureKind       evals.FailureKind
	ErrorMessage      string
	EvaluationID      string
	EvaluationJSON    string
	RequiresReview    bool
	ReviewSubmittedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReviewLogEntry is one submitted human review recorded after the platform
// acknowledged it. Entries are append-only; a resubmission adds a new row.
type ReviewLogEntry struct {
	ID            int64
	EvaluationID  string
	OverallScore  int
	OverridesJSON string
	Notes         string
	NotableCount  int
	SubmittedAt   time.Time
}

// Evaluation decodes the stored evaluation snapshot. Returns nil when no
// snapshot has been captured yet.
func (r *TrackedRecording) Evaluation() (*evals.Evaluation, error) {
	if r == nil || r.EvaluationJSON == "" {
		return nil, nil
	}
	var eval evals.Evaluation
	if err := json.Unmarshal([]byte(r.EvaluationJSON), &eval); err != nil {
		return nil, fmt.Errorf("decode evaluation snapshot: %w", err)
	}
	return &eval, nil
}

// SetCompleted marks the watch finished with an evaluation snapshot. The
// requiresReview flag is the locally derived routing decision, not the
// platform's.
func (r *TrackedRecording) SetCompleted(eval *evals.Evaluation, requiresReview bool) error {
	r.State = StateCompleted
	r.LastStatus = evals.StatusCompleted
	r.FailureKind = ""
	r.ErrorMessage = ""
	r.RequiresReview = requiresReview
	if eval == nil {
		r.EvaluationID = ""
		r.EvaluationJSON = ""
		return nil
	}
	encoded, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("encode evaluation snapshot: %w", err)
	}
	r.EvaluationID = eval.ID
	r.EvaluationJSON = string(encoded)
	return nil
}

// SetFailed marks the watch failed and classifies the platform error message
// into a privacy-block vs generic branch.
func (r *TrackedRecording) SetFailed(message string) {
	r.State = StateFailed
	r.LastStatus = evals.StatusFailed
	r.FailureKind = evals.ClassifyFailure(message)
	r.ErrorMessage = message
}

// SetTimedOut marks the watch as having exhausted its attempt budget while
// the platform job was still running.
func (r *TrackedRecording) SetTimedOut() {
	r.State = StateTimedOut
	r.FailureKind = ""
	r.ErrorMessage = ""
}

// SetCancelled marks the watch cancelled by the caller.
func (r *TrackedRecording) SetCancelled() {
	r.State = StateCancelled
	r.FailureKind = ""
	r.ErrorMessage = ""
}
