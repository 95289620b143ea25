package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"cadence/internal/api"
	"cadence/internal/config"
	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/preflight"
	"cadence/internal/services/evalapi"
	"cadence/internal/tracking"
	"cadence/internal/watch"
)

// Daemon coordinates the background watch loop and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *tracking.Store
	watcher *watch.Manager
	logPath string
	hub     *logging.StreamHub
	archive *logging.EventArchive

	api *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	checks []preflight.Result
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Watch        watch.StatusSummary
	DatabasePath string
	LockFilePath string
	SocketPath   string
	Checks       []preflight.Result
}

// New constructs a daemon with initialized dependencies. The hub and archive
// may be nil when log streaming is not wired.
func New(cfg *config.Config, store *tracking.Store, logger *slog.Logger, watcher *watch.Manager, logPath string, hub *logging.StreamHub, archive *logging.EventArchive) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || watcher == nil {
		return nil, errors.New("daemon requires config, store, logger, and watch manager")
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		watcher:  watcher,
		logPath:  logPath,
		hub:      hub,
		archive:  archive,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	apiSrv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv
	return d, nil
}

// Start acquires the daemon lock and launches the watch manager.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another cadence daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.watcher.Start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start watch manager: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.watcher.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start api server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("cadence daemon started", logging.String("lock", d.lockPath))

	d.refreshChecks(d.ctx)
	return nil
}

// refreshChecks runs the readiness checks and caches the results for status
// reporting. Failures are logged but never stop the daemon.
func (d *Daemon) refreshChecks(ctx context.Context) {
	checks := preflight.RunAll(ctx, d.cfg)
	d.mu.Lock()
	d.checks = checks
	d.mu.Unlock()
	for _, check := range checks {
		if check.Passed {
			continue
		}
		d.logger.Warn("readiness check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail))
	}
}

// Stop stops background watching and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.watcher.Stop()
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("cadence daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Track registers a recording and begins watching it.
func (d *Daemon) Track(ctx context.Context, recordingID, title string) (*tracking.TrackedRecording, error) {
	if d.watcher == nil {
		return nil, errors.New("watch manager unavailable")
	}
	return d.watcher.Track(ctx, recordingID, title)
}

// Cancel stops an active watch and marks the recording cancelled.
func (d *Daemon) Cancel(ctx context.Context, recordingID string) (*tracking.TrackedRecording, error) {
	if d.watcher == nil {
		return nil, errors.New("watch manager unavailable")
	}
	return d.watcher.Cancel(ctx, recordingID)
}

// Recheck resets terminal recordings back to polling.
func (d *Daemon) Recheck(ctx context.Context, recordingIDs ...string) (int64, error) {
	if d.watcher == nil {
		return 0, errors.New("watch manager unavailable")
	}
	return d.watcher.Recheck(ctx, recordingIDs...)
}

// ListRecordings returns tracked recordings filtered by optional states.
func (d *Daemon) ListRecordings(ctx context.Context, states []tracking.WatchState) ([]*tracking.TrackedRecording, error) {
	if d.store == nil {
		return nil, errors.New("tracking store unavailable")
	}
	return d.store.List(ctx, states...)
}

// GetRecording returns one tracked recording by its platform identifier.
func (d *Daemon) GetRecording(ctx context.Context, recordingID string) (*tracking.TrackedRecording, error) {
	if d.store == nil {
		return nil, errors.New("tracking store unavailable")
	}
	return d.store.GetByRecordingID(ctx, recordingID)
}

// Remove deletes a tracked recording regardless of state.
func (d *Daemon) Remove(ctx context.Context, recordingID string) (bool, error) {
	if d.store == nil {
		return false, errors.New("tracking store unavailable")
	}
	return d.store.Remove(ctx, recordingID)
}

// ClearTerminal removes recordings that already reached a final state.
func (d *Daemon) ClearTerminal(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("tracking store unavailable")
	}
	return d.store.ClearTerminal(ctx)
}

// Clear removes all tracked recordings.
func (d *Daemon) Clear(ctx context.Context) (int64, error) {
	if d.store == nil {
		return 0, errors.New("tracking store unavailable")
	}
	return d.store.Clear(ctx)
}

// TrackingStats returns per-state tracking counts.
func (d *Daemon) TrackingStats(ctx context.Context) (map[tracking.WatchState]int, error) {
	if d.store == nil {
		return nil, errors.New("tracking store unavailable")
	}
	return d.store.Stats(ctx)
}

// TrackingHealth returns aggregate tracking diagnostics.
func (d *Daemon) TrackingHealth(ctx context.Context) (tracking.HealthSummary, error) {
	if d.store == nil {
		return tracking.HealthSummary{}, errors.New("tracking store unavailable")
	}
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (tracking.DatabaseHealth, error) {
	if d.store == nil {
		return tracking.DatabaseHealth{}, errors.New("tracking store unavailable")
	}
	return d.store.CheckHealth(ctx)
}

// PendingReviews fetches the platform's human-review worklist.
func (d *Daemon) PendingReviews(ctx context.Context, limit int) ([]evals.PendingReview, error) {
	if d.cfg == nil {
		return nil, errors.New("configuration unavailable")
	}
	client := evalapi.NewFromConfig(d.cfg)
	return client.PendingHumanReviews(ctx, limit)
}

// SubmitReview reconciles reviewer overrides against the stored evaluation,
// submits the result to the platform, and records it locally.
func (d *Daemon) SubmitReview(ctx context.Context, evaluationID, recordingID string, overrides []evals.StageOverride, notes string) (api.SubmitReviewResult, error) {
	if d.cfg == nil {
		return api.SubmitReviewResult{}, errors.New("configuration unavailable")
	}
	if d.store == nil {
		return api.SubmitReviewResult{}, errors.New("tracking store unavailable")
	}
	return api.SubmitReview(ctx, api.SubmitReviewRequest{
		Store:        d.store,
		Platform:     evalapi.NewFromConfig(d.cfg),
		Notifier:     notify.NewService(d.cfg),
		Logger:       d.logger,
		EvaluationID: evaluationID,
		RecordingID:  recordingID,
		Overrides:    overrides,
		Notes:        notes,
	})
}

// TestNotification triggers a test notification using the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg == nil {
		return false, "configuration unavailable", errors.New("configuration unavailable")
	}
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	notifier := notify.NewService(d.cfg)
	if err := notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// LogPath returns the active log file path, or empty when logging to
// stdout only.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LogStream returns the in-memory log hub serving live tails.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.hub
}

// LogArchive returns the on-disk log journal serving replay.
func (d *Daemon) LogArchive() *logging.EventArchive {
	return d.archive
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	summary := d.watcher.Status(ctx)
	d.mu.Lock()
	checks := append([]preflight.Result(nil), d.checks...)
	d.mu.Unlock()
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Watch:        summary,
		DatabasePath: d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		SocketPath:   d.cfg.SocketPath(),
		Checks:       checks,
	}
}
