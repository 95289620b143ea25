package watch

import (
	"context"

	"cadence/internal/logging"
	"cadence/internal/tracking"
)

// StatusSummary represents lightweight watch-manager diagnostics.
type StatusSummary struct {
	Running       bool
	ActiveWatches int
	LastError     string
	TrackingStats map[tracking.WatchState]int
}

// Status returns the latest watch-manager information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	active := len(m.watches)
	lastErr := m.lastErr
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read tracking stats", logging.Error(err))
	}

	summary := StatusSummary{Running: running, ActiveWatches: active, TrackingStats: stats}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
