package watch

import (
	"context"
	"errors"

	"cadence/internal/logging"
)

// Start begins watch processing and resumes stored active watches.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("watch manager already running")
	}
	if m.store == nil {
		m.mu.Unlock()
		return errors.New("watch manager requires a tracking store")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.runCtx = runCtx
	m.cancel = cancel
	m.running = true
	m.mu.Unlock()

	resumed, err := m.resumeActive(runCtx)
	if err != nil {
		m.setLastError(err)
		m.logger.Warn("stored watches could not be resumed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "watch_resume_failed"),
			logging.String(logging.FieldErrorHint, "run recheck to restart them"),
		)
		return nil
	}
	if resumed > 0 {
		m.logger.Info("resumed stored watches", logging.Int("count", resumed))
	}
	return nil
}

// Stop terminates watch processing and waits for in-flight goroutines.
// Interrupted watches are not persisted as cancelled; their rows stay active
// so the next Start resumes them.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.runCtx = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()

	m.mu.Lock()
	m.watches = make(map[string]*watchEntry)
	m.mu.Unlock()
}

// resumeActive starts watches for stored active rows that have no live
// watch. Resumed watches poll with a full attempt budget: attempts count per
// daemon run, not cumulatively across restarts.
func (m *Manager) resumeActive(ctx context.Context) (int, error) {
	records, err := m.store.Active(ctx)
	if err != nil {
		return 0, err
	}
	started := 0
	for _, record := range records {
		m.mu.RLock()
		_, watching := m.watches[record.RecordingID]
		m.mu.RUnlock()
		if watching {
			continue
		}
		if err := m.startWatch(record.RecordingID); err != nil {
			return started, err
		}
		started++
	}
	return started, nil
}
