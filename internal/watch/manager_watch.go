package watch

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"cadence/internal/logging"
	"cadence/internal/tracking"
)

// Track registers the recording and starts its watch, superseding any watch
// already in flight for the same identifier.
func (m *Manager) Track(ctx context.Context, recordingID, title string) (*tracking.TrackedRecording, error) {
	m.mu.RLock()
	running := m.running
	m.mu.RUnlock()
	if !running {
		return nil, errors.New("watch manager not running")
	}

	record, err := m.store.Track(ctx, recordingID, title)
	if err != nil {
		return nil, err
	}
	if err := m.startWatch(record.RecordingID); err != nil {
		return nil, err
	}
	return record, nil
}

// Cancel stops any in-flight watch and marks an active row cancelled. The
// returned record is nil when the recording is not tracked; a row already in
// a terminal state is returned unchanged.
func (m *Manager) Cancel(ctx context.Context, recordingID string) (*tracking.TrackedRecording, error) {
	m.mu.Lock()
	if entry, ok := m.watches[recordingID]; ok {
		delete(m.watches, recordingID)
		entry.cancel()
	}
	m.mu.Unlock()

	record, err := m.store.GetByRecordingID(ctx, recordingID)
	if err != nil || record == nil {
		return nil, err
	}
	if record.State.Terminal() {
		return record, nil
	}
	record.SetCancelled()
	if err := m.store.Update(ctx, record); err != nil {
		return nil, err
	}
	m.logger.Info("watch cancelled", logging.String(logging.FieldRecordingID, recordingID))
	return record, nil
}

// Recheck returns timed-out rows (or, when identifiers are given, any named
// terminal rows) to the watch pool with a fresh attempt budget. It reports
// how many rows were reset.
func (m *Manager) Recheck(ctx context.Context, recordingIDs ...string) (int64, error) {
	reset, err := m.store.ResetForRecheck(ctx, recordingIDs...)
	if err != nil {
		return 0, err
	}
	if reset == 0 {
		return 0, nil
	}
	started, err := m.resumeActive(ctx)
	if err != nil {
		return reset, err
	}
	m.logger.Info("recheck scheduled",
		logging.Int64("reset", reset),
		logging.Int("started", started))
	return reset, nil
}

// startWatch installs a new generation for the recording and spawns its
// goroutine. The previous generation, if any, is cancelled under the lock so
// only the newest watch can ever apply an outcome.
func (m *Manager) startWatch(recordingID string) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return errors.New("watch manager not running")
	}
	if prev, ok := m.watches[recordingID]; ok {
		prev.cancel()
		m.logger.Debug("superseding in-flight watch",
			logging.String(logging.FieldRecordingID, recordingID))
	}
	m.generation++
	gen := m.generation
	watchCtx, cancel := context.WithCancel(m.runCtx)
	m.watches[recordingID] = &watchEntry{generation: gen, cancel: cancel}
	m.wg.Add(1)
	go m.runWatch(watchCtx, gen, recordingID)
	m.mu.Unlock()

	m.logger.Info("watch started", logging.String(logging.FieldRecordingID, recordingID))
	return nil
}

func (m *Manager) runWatch(ctx context.Context, gen uint64, recordingID string) {
	defer m.wg.Done()
	logger := m.logger.With(
		logging.String(logging.FieldRecordingID, recordingID),
		logging.String(logging.FieldCorrelationID, uuid.NewString()),
	)

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		m.finishWatch(gen, recordingID)
		return
	}

	outcome := m.poller.Run(ctx, recordingID, func(obsCtx context.Context, observed Observation) {
		if err := m.store.RecordAttempt(obsCtx, observed.RecordingID, observed.Attempt, observed.Status); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			m.setLastError(err)
			logger.Warn("attempt bookkeeping failed; status display may lag",
				logging.Error(err),
				logging.Int(logging.FieldAttempt, observed.Attempt),
				logging.String(logging.FieldEventType, "tracking_store_failed"),
				logging.String(logging.FieldErrorHint, "check tracking database access"),
			)
		}
	})
	<-m.sem

	if !m.finishWatch(gen, recordingID) {
		logger.Debug("watch no longer current; outcome discarded",
			logging.String(logging.FieldState, string(outcome.State)))
		return
	}
	if outcome.State == tracking.StateCancelled {
		logger.Debug("watch interrupted by shutdown; row stays active for resume")
		return
	}
	m.applyOutcome(ctx, logger, outcome)
}

// finishWatch reports whether this goroutine still owns the watch entry and
// removes it when it does.
func (m *Manager) finishWatch(gen uint64, recordingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.watches[recordingID]
	if !ok || entry.generation != gen {
		return false
	}
	delete(m.watches, recordingID)
	return true
}
