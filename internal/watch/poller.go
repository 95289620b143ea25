package watch

import (
	"context"
	"log/slog"
	"time"

	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/results"
	"cadence/internal/services"
	"cadence/internal/services/evalapi"
	"cadence/internal/tracking"
)

const (
	defaultInterval    = 5 * time.Second
	defaultMaxAttempts = 60
)

// StatusClient is the single platform call the poll loop depends on.
type StatusClient interface {
	RecordingStatus(ctx context.Context, recordingID string) (evalapi.StatusSnapshot, error)
}

// ResultFetcher retrieves the payload bundle for a completed recording.
type ResultFetcher interface {
	Fetch(ctx context.Context, recordingID string, opts results.Options) (results.Bundle, error)
}

// Observation is one successful status fetch, reported before the poller
// acts on it.
type Observation struct {
	RecordingID string
	Attempt     int
	Status      evals.RecordingStatus
}

// AttemptFunc receives each Observation. Implementations must return
// quickly; the poll loop blocks on them.
type AttemptFunc func(ctx context.Context, observed Observation)

// Outcome is the terminal result of one watch.
type Outcome struct {
	RecordingID string
	State       tracking.WatchState
	// Status is the last platform status observed. Empty when every fetch
	// errored before one succeeded.
	Status       evals.RecordingStatus
	Attempts     int
	FailureKind  evals.FailureKind
	ErrorMessage string
	// Bundle carries the fetched results of a completed watch. It is nil when
	// the result fetch itself failed; ErrorMessage records why.
	Bundle *results.Bundle
}

// Poller drives one recording through queued/processing until the platform
// reports a terminal status, the attempt budget runs out, or the context is
// cancelled. The interval is a fixed constant rather than a backoff: platform
// jobs finish in bounded, roughly known time.
type Poller struct {
	client      StatusClient
	fetcher     ResultFetcher
	logger      *slog.Logger
	interval    time.Duration
	maxAttempts int
	options     results.Options
}

// NewPoller constructs a poller. Non-positive interval or budget fall back
// to the defaults.
func NewPoller(client StatusClient, fetcher ResultFetcher, logger *slog.Logger, interval time.Duration, maxAttempts int, options results.Options) *Poller {
	if logger == nil {
		logger = logging.NewNop()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Poller{
		client:      client,
		fetcher:     fetcher,
		logger:      logger,
		interval:    interval,
		maxAttempts: maxAttempts,
		options:     options,
	}
}

// Run polls until terminal and returns the outcome. Cancellation is checked
// before every fetch and again before the fetch's result is accepted, so a
// cancelled watch never applies a transition from a late-resolving call.
// Every scheduled fetch consumes one attempt, whether it succeeds or fails
// transiently.
func (p *Poller) Run(ctx context.Context, recordingID string, observe AttemptFunc) Outcome {
	logger := p.logger.With(logging.String(logging.FieldRecordingID, recordingID))
	sampler := logging.NewAttemptSampler(25)

	var lastStatus evals.RecordingStatus
	attempt := 0
	for {
		if ctx.Err() != nil {
			return p.cancelled(recordingID, attempt, lastStatus)
		}

		attempt++
		snapshot, err := p.client.RecordingStatus(ctx, recordingID)
		if ctx.Err() != nil {
			// The call resolved after cancellation; its result is dead.
			return p.cancelled(recordingID, attempt, lastStatus)
		}
		if err != nil {
			if !services.Retryable(err) {
				return Outcome{
					RecordingID:  recordingID,
					State:        tracking.StateFailed,
					Status:       lastStatus,
					Attempts:     attempt,
					FailureKind:  evals.FailureGeneric,
					ErrorMessage: err.Error(),
				}
			}
			logger.Debug("status fetch failed; retrying next tick",
				logging.Int(logging.FieldAttempt, attempt),
				logging.Error(err))
			if attempt >= p.maxAttempts {
				return p.timedOut(recordingID, attempt, lastStatus)
			}
			if !p.wait(ctx) {
				return p.cancelled(recordingID, attempt, lastStatus)
			}
			continue
		}

		lastStatus = snapshot.Status
		if observe != nil {
			observe(ctx, Observation{RecordingID: recordingID, Attempt: attempt, Status: snapshot.Status})
		}

		switch snapshot.Status {
		case evals.StatusCompleted:
			return p.completed(ctx, logger, recordingID, attempt)
		case evals.StatusFailed:
			return Outcome{
				RecordingID:  recordingID,
				State:        tracking.StateFailed,
				Status:       snapshot.Status,
				Attempts:     attempt,
				FailureKind:  evals.ClassifyFailure(snapshot.ErrorMessage),
				ErrorMessage: snapshot.ErrorMessage,
			}
		}

		if sampler.ShouldLog(attempt, p.maxAttempts, string(snapshot.Status)) {
			logger.Info("watch progress",
				logging.String("status", string(snapshot.Status)),
				logging.Int(logging.FieldAttempt, attempt),
				logging.Int("budget", p.maxAttempts),
			)
		}

		if attempt >= p.maxAttempts {
			return p.timedOut(recordingID, attempt, snapshot.Status)
		}
		if !p.wait(ctx) {
			return p.cancelled(recordingID, attempt, snapshot.Status)
		}
	}
}

// completed runs the result fetch for a recording the platform reported
// done. A fetch failure keeps the Completed state: the platform verdict
// stands, only the local copy is missing.
func (p *Poller) completed(ctx context.Context, logger *slog.Logger, recordingID string, attempts int) Outcome {
	outcome := Outcome{
		RecordingID: recordingID,
		State:       tracking.StateCompleted,
		Status:      evals.StatusCompleted,
		Attempts:    attempts,
	}
	bundle, err := p.fetcher.Fetch(ctx, recordingID, p.options)
	if ctx.Err() != nil {
		return p.cancelled(recordingID, attempts, evals.StatusCompleted)
	}
	if err != nil {
		outcome.ErrorMessage = err.Error()
		logger.Warn("results unavailable after completion",
			logging.Error(err),
			logging.String(logging.FieldEventType, "result_fetch_failed"),
			logging.String(logging.FieldErrorHint, "run recheck to fetch the evaluation again"),
		)
		return outcome
	}
	outcome.Bundle = &bundle
	return outcome
}

func (p *Poller) cancelled(recordingID string, attempts int, lastStatus evals.RecordingStatus) Outcome {
	return Outcome{
		RecordingID: recordingID,
		State:       tracking.StateCancelled,
		Status:      lastStatus,
		Attempts:    attempts,
	}
}

func (p *Poller) timedOut(recordingID string, attempts int, lastStatus evals.RecordingStatus) Outcome {
	return Outcome{
		RecordingID: recordingID,
		State:       tracking.StateTimedOut,
		Status:      lastStatus,
		Attempts:    attempts,
	}
}

// wait sleeps one interval, reporting false when cancelled mid-sleep.
func (p *Poller) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.interval):
		return true
	}
}
