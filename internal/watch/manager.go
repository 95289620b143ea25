package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/notify"
	"cadence/internal/results"
	"cadence/internal/scoring"
	"cadence/internal/tracking"
)

// Client is the platform surface the manager consumes. *evalapi.Client
// satisfies it.
type Client interface {
	StatusClient
	results.Client
}

// watchEntry identifies the newest watch for one recording. Generation
// counters implement supersede: a finishing goroutine applies its outcome
// only when its generation still matches the map entry.
type watchEntry struct {
	generation uint64
	cancel     context.CancelFunc
}

// Manager coordinates one watch goroutine per tracked recording.
type Manager struct {
	cfg      *config.Config
	store    *tracking.Store
	poller   *Poller
	notifier notify.Service
	logger   *slog.Logger

	thresholds scoring.Thresholds
	sem        chan struct{}

	mu         sync.RWMutex
	running    bool
	runCtx     context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	lastErr    error
	watches    map[string]*watchEntry
	generation uint64
}

// ManagerOption configures optional Manager behavior.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	notifier    notify.Service
	interval    time.Duration
	maxAttempts int
}

// WithNotifier overrides the notification service built from config (used in
// tests).
func WithNotifier(notifier notify.Service) ManagerOption {
	return func(o *managerOptions) {
		o.notifier = notifier
	}
}

// WithPollSettings overrides the configured poll interval and attempt budget
// (used in tests).
func WithPollSettings(interval time.Duration, maxAttempts int) ManagerOption {
	return func(o *managerOptions) {
		o.interval = interval
		o.maxAttempts = maxAttempts
	}
}

// NewManager constructs a watch manager over the given store and platform
// client.
func NewManager(cfg *config.Config, store *tracking.Store, client Client, logger *slog.Logger, opts ...ManagerOption) *Manager {
	options := &managerOptions{
		interval:    cfg.PollInterval(),
		maxAttempts: cfg.Poller.MaxAttempts,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.notifier == nil {
		options.notifier = notify.NewService(cfg)
	}
	logger = logging.NewComponentLogger(logger, "watch-manager")
	if override := cfg.Logging.OverrideFor("watch"); override != "" {
		logger = logging.WithMinLevel(logger, logging.ParseLevel(override))
	}

	fetcher := results.NewFetcher(client, logger)
	poller := NewPoller(client, fetcher, logger, options.interval, options.maxAttempts, results.Options{
		IncludeExplanation: cfg.Poller.IncludeExplanation,
		FetchTranscript:    cfg.Poller.FetchTranscript,
		FetchMedia:         cfg.Poller.FetchMedia,
	})

	maxConcurrent := cfg.Poller.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Manager{
		cfg:      cfg,
		store:    store,
		poller:   poller,
		notifier: options.notifier,
		logger:   logger,
		thresholds: scoring.Thresholds{
			PassingScore:    cfg.Scoring.PassingThreshold,
			ConfidenceFloor: cfg.Scoring.ConfidenceThreshold,
			WeightTolerance: cfg.Scoring.WeightTolerance,
		},
		sem:     make(chan struct{}, maxConcurrent),
		watches: make(map[string]*watchEntry),
	}
}
