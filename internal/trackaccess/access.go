package trackaccess

import (
	"context"

	"cadence/internal/api"
	"cadence/internal/ipc"
	"cadence/internal/tracking"
)

// Access provides tracking operations regardless of IPC or direct store backing.
type Access interface {
	Stats(ctx context.Context) (map[string]int, error)
	List(ctx context.Context, states []string) ([]api.TrackedRecording, error)
	Describe(ctx context.Context, recordingID string) (*api.TrackedRecording, error)
	Track(ctx context.Context, recordingID, title string) (api.TrackedRecording, error)
	Cancel(ctx context.Context, recordingID string) (*api.TrackedRecording, error)
	Recheck(ctx context.Context, recordingIDs []string) (int64, error)
	Remove(ctx context.Context, recordingIDs []string) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	ClearTerminal(ctx context.Context) (int64, error)
}

// NewIPCAccess returns an Access backed by daemon IPC.
func NewIPCAccess(client *ipc.Client) Access {
	return &ipcAccess{client: client}
}

// NewStoreAccess returns an Access backed by direct DB access. Recordings
// tracked this way start polling when the daemon next resumes its watches.
func NewStoreAccess(store *tracking.Store) Access {
	return &storeAccess{store: store, service: api.NewTrackingService(store)}
}

type ipcAccess struct {
	client *ipc.Client
}

func (a *ipcAccess) Stats(_ context.Context) (map[string]int, error) {
	resp, err := a.client.Status()
	if err != nil {
		return nil, err
	}
	return resp.TrackingStats, nil
}

func (a *ipcAccess) List(_ context.Context, states []string) ([]api.TrackedRecording, error) {
	resp, err := a.client.TrackingList(states)
	if err != nil {
		return nil, err
	}
	return resp.Recordings, nil
}

func (a *ipcAccess) Describe(_ context.Context, recordingID string) (*api.TrackedRecording, error) {
	resp, err := a.client.TrackingDescribe(recordingID)
	if err != nil {
		return nil, err
	}
	if resp == nil || !resp.Found {
		return nil, nil
	}
	return &resp.Recording, nil
}

func (a *ipcAccess) Track(_ context.Context, recordingID, title string) (api.TrackedRecording, error) {
	resp, err := a.client.Track(recordingID, title)
	if err != nil {
		return api.TrackedRecording{}, err
	}
	return resp.Recording, nil
}

func (a *ipcAccess) Cancel(_ context.Context, recordingID string) (*api.TrackedRecording, error) {
	resp, err := a.client.Cancel(recordingID)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Recording.RecordingID == "" {
		return nil, nil
	}
	return &resp.Recording, nil
}

func (a *ipcAccess) Recheck(_ context.Context, recordingIDs []string) (int64, error) {
	resp, err := a.client.Recheck(recordingIDs)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *ipcAccess) Remove(_ context.Context, recordingIDs []string) (int64, error) {
	resp, err := a.client.TrackingRemove(recordingIDs)
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearAll(_ context.Context) (int64, error) {
	resp, err := a.client.TrackingClear()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *ipcAccess) ClearTerminal(_ context.Context) (int64, error) {
	resp, err := a.client.TrackingClearTerminal()
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

type storeAccess struct {
	store   *tracking.Store
	service *api.TrackingService
}

func (a *storeAccess) Stats(ctx context.Context) (map[string]int, error) {
	return a.service.Stats(ctx)
}

func (a *storeAccess) List(ctx context.Context, states []string) ([]api.TrackedRecording, error) {
	var filters []tracking.WatchState
	for _, s := range states {
		if parsed, ok := tracking.ParseWatchState(s); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *storeAccess) Describe(ctx context.Context, recordingID string) (*api.TrackedRecording, error) {
	return a.service.Describe(ctx, recordingID)
}

func (a *storeAccess) Track(ctx context.Context, recordingID, title string) (api.TrackedRecording, error) {
	record, err := a.store.Track(ctx, recordingID, title)
	if err != nil {
		return api.TrackedRecording{}, err
	}
	return api.FromTrackedRecording(record), nil
}

func (a *storeAccess) Cancel(ctx context.Context, recordingID string) (*api.TrackedRecording, error) {
	record, err := a.store.GetByRecordingID(ctx, recordingID)
	if err != nil || record == nil {
		return nil, err
	}
	if record.State.Terminal() {
		dto := api.FromTrackedRecording(record)
		return &dto, nil
	}
	record.SetCancelled()
	if err := a.store.Update(ctx, record); err != nil {
		return nil, err
	}
	dto := api.FromTrackedRecording(record)
	return &dto, nil
}

func (a *storeAccess) Recheck(ctx context.Context, recordingIDs []string) (int64, error) {
	return a.store.ResetForRecheck(ctx, recordingIDs...)
}

func (a *storeAccess) Remove(ctx context.Context, recordingIDs []string) (int64, error) {
	var count int64
	for _, id := range recordingIDs {
		removed, err := a.store.Remove(ctx, id)
		if err != nil {
			return count, err
		}
		if removed {
			count++
		}
	}
	return count, nil
}

func (a *storeAccess) ClearAll(ctx context.Context) (int64, error) {
	return a.store.Clear(ctx)
}

func (a *storeAccess) ClearTerminal(ctx context.Context) (int64, error) {
	return a.store.ClearTerminal(ctx)
}
