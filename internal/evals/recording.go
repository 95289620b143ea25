package evals

import (
	"strings"
	"time"
)

// RecordingStatus is the processing lifecycle reported by the platform for one
// uploaded recording.
type RecordingStatus string

const (
	StatusQueued     RecordingStatus = "queued"
	StatusProcessing RecordingStatus = "processing"
	StatusCompleted  RecordingStatus = "completed"
	StatusFailed     RecordingStatus = "failed"
)

var allStatuses = []RecordingStatus{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[RecordingStatus]struct{} {
	set := make(map[RecordingStatus]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known recording statuses.
func AllStatuses() []RecordingStatus {
	cp := make([]RecordingStatus, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseRecordingStatus converts a string into a known RecordingStatus.
func ParseRecordingStatus(value string) (RecordingStatus, bool) {
	normalized := RecordingStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Terminal reports whether the platform will never move the recording past
// this status. Once terminal, the poller stops.
func (s RecordingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Recording is one uploaded media unit owned by the caller's workspace.
// The platform creates it on upload and is the only writer of its status.
type Recording struct {
	ID              string
	Name            string
	Status          RecordingStatus
	ErrorMessage    string
	DurationSeconds float64
	UploadedAt      time.Time
	ProcessedAt     *time.Time
}
