package daemon_test

import (
	"context"
	"testing"
	"time"

	"cadence/internal/daemon"
	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/services/evalapi"
	"cadence/internal/testsupport"
	"cadence/internal/watch"
)

type idlePlatform struct{}

func (idlePlatform) RecordingStatus(_ context.Context, recordingID string) (evalapi.StatusSnapshot, error) {
	return evalapi.StatusSnapshot{
		RecordingID: recordingID,
		Status:      evals.StatusProcessing,
		ObservedAt:  time.Now().UTC(),
	}, nil
}

func (idlePlatform) Evaluation(context.Context, string, evalapi.EvaluationOptions) (evals.Evaluation, error) {
	return evals.Evaluation{}, nil
}

func (idlePlatform) Transcript(_ context.Context, recordingID string) (evals.Transcript, error) {
	return evals.Transcript{RecordingID: recordingID}, nil
}

func (idlePlatform) MediaAccessURL(context.Context, string) (evals.MediaAccess, error) {
	return evals.MediaAccess{}, nil
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := watch.NewManager(cfg, store, idlePlatform{}, logger)
	d, err := daemon.New(cfg, store, logger, mgr, "", nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID <= 0 {
		t.Fatalf("expected positive pid, got %d", status.PID)
	}
	if len(status.Checks) == 0 {
		t.Fatal("expected readiness checks after start")
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	time.Sleep(50 * time.Millisecond)
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonTrackAndCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = ""
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := watch.NewManager(cfg, store, idlePlatform{}, logger)
	d, err := daemon.New(cfg, store, logger, mgr, "", nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer d.Stop()

	record, err := d.Track(ctx, "rec-1", "Billing call")
	if err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if record.RecordingID != "rec-1" {
		t.Fatalf("unexpected recording id %q", record.RecordingID)
	}

	records, err := d.ListRecordings(ctx, nil)
	if err != nil {
		t.Fatalf("ListRecordings failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 tracked recording, got %d", len(records))
	}

	cancelled, err := d.Cancel(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if !cancelled.State.Terminal() {
		t.Fatalf("expected terminal state after cancel, got %s", cancelled.State)
	}
}
