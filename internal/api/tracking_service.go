package api

import (
	"context"

	"cadence/internal/tracking"
)

// TrackingReader abstracts tracking persistence interactions needed for API queries.
type TrackingReader interface {
	List(ctx context.Context, states ...tracking.WatchState) ([]*tracking.TrackedRecording, error)
	Stats(ctx context.Context) (map[tracking.WatchState]int, error)
	GetByRecordingID(ctx context.Context, recordingID string) (*tracking.TrackedRecording, error)
}

// TrackingService exposes read-only tracking operations returning API DTOs.
type TrackingService struct {
	store TrackingReader
}

// NewTrackingService constructs a TrackingService around the provided reader.
func NewTrackingService(store TrackingReader) *TrackingService {
	if store == nil {
		return nil
	}
	return &TrackingService{store: store}
}

// List returns tracked recordings filtered by watch state.
func (s *TrackingService) List(ctx context.Context, states ...tracking.WatchState) ([]TrackedRecording, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	records, err := s.store.List(ctx, states...)
	if err != nil {
		return nil, err
	}
	return FromTrackedRecordings(records), nil
}

// Stats returns tracking summary counts keyed by state string.
func (s *TrackingService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeTrackingStats(stats), nil
}

// Describe fetches a single tracked recording by its platform identifier.
func (s *TrackingService) Describe(ctx context.Context, recordingID string) (*TrackedRecording, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	record, err := s.store.GetByRecordingID(ctx, recordingID)
	if err != nil || record == nil {
		return nil, err
	}
	dto := FromTrackedRecording(record)
	return &dto, nil
}
