package api

import (
	"sort"
	"time"
)

// SortRecordingsNewestFirst orders tracked recordings by CreatedAt descending, breaking ties by ID descending.
func SortRecordingsNewestFirst(recordings []TrackedRecording) []TrackedRecording {
	if len(recordings) == 0 {
		return nil
	}
	sorted := make([]TrackedRecording, len(recordings))
	copy(sorted, recordings)
	sort.Slice(sorted, func(i, j int) bool {
		ti := parseRecordingTime(sorted[i].CreatedAt)
		tj := parseRecordingTime(sorted[j].CreatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})
	return sorted
}

func parseRecordingTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

// ParseRecordingTime exposes timestamp parsing for consumers that need display formatting.
func ParseRecordingTime(value string) time.Time {
	return parseRecordingTime(value)
}
