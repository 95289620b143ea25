package testsupport

import (
	"context"
	"testing"

	"cadence/internal/config"
	"cadence/internal/tracking"
)

// MustOpenStore opens a tracking.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *tracking.Store {
	t.Helper()

	store, err := tracking.Open(cfg)
	if err != nil {
		t.Fatalf("tracking.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// TrackRecording creates a tracked recording for tests using the provided store.
func TrackRecording(t testing.TB, store *tracking.Store, recordingID, title string) *tracking.TrackedRecording {
	t.Helper()

	record, err := store.Track(context.Background(), recordingID, title)
	if err != nil {
		t.Fatalf("store.Track: %v", err)
	}
	return record
}
