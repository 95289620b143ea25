package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"cadence/internal/api"
	"cadence/internal/daemon"
	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/logs"
	"cadence/internal/tracking"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Cadence", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun cadence stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	s.log().Debug("daemon start requested")
	if err := s.daemon.Start(s.ctx); err != nil {
		resp.Started = false
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	resp.Message = "daemon started"
	s.log().Info("daemon started via IPC",
		logging.String(logging.FieldEventType, "daemon_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.ActiveWatches = status.Watch.ActiveWatches
	resp.TrackingStats = api.MergeTrackingStats(status.Watch.TrackingStats)
	resp.LastError = status.Watch.LastError
	resp.LockPath = status.LockFilePath
	resp.DatabasePath = status.DatabasePath
	resp.PID = status.PID
	if len(status.Checks) > 0 {
		resp.Checks = make([]CheckStatus, 0, len(status.Checks))
		for _, check := range status.Checks {
			resp.Checks = append(resp.Checks, CheckStatus{
				Name:   check.Name,
				Passed: check.Passed,
				Detail: check.Detail,
			})
		}
	}
	return nil
}

func (s *service) Track(req TrackRequest, resp *TrackResponse) error {
	s.log().Debug("track requested", logging.String(logging.FieldRecordingID, req.RecordingID))
	record, err := s.daemon.Track(s.ctx, req.RecordingID, req.Title)
	if err != nil {
		return err
	}
	resp.Recording = api.FromTrackedRecording(record)
	s.log().Info("recording tracked",
		logging.String(logging.FieldEventType, "watch_track"),
		logging.String(logging.FieldRecordingID, req.RecordingID))
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	s.log().Debug("cancel requested", logging.String(logging.FieldRecordingID, req.RecordingID))
	record, err := s.daemon.Cancel(s.ctx, req.RecordingID)
	if err != nil {
		return err
	}
	resp.Recording = api.FromTrackedRecording(record)
	s.log().Info("watch cancelled",
		logging.String(logging.FieldEventType, "watch_cancel"),
		logging.String(logging.FieldRecordingID, req.RecordingID))
	return nil
}

func (s *service) Recheck(req RecheckRequest, resp *RecheckResponse) error {
	s.log().Debug("recheck requested", logging.Int("recording_count", len(req.RecordingIDs)))
	updated, err := s.daemon.Recheck(s.ctx, req.RecordingIDs...)
	if err != nil {
		return err
	}
	resp.Updated = updated
	s.log().Info("recordings queued for recheck",
		logging.String(logging.FieldEventType, "watch_recheck"),
		logging.Int64("updated_count", updated))
	return nil
}

func (s *service) TrackingList(req TrackingListRequest, resp *TrackingListResponse) error {
	states := make([]tracking.WatchState, 0, len(req.States))
	for _, state := range req.States {
		parsed, ok := tracking.ParseWatchState(state)
		if !ok {
			continue
		}
		states = append(states, parsed)
	}
	records, err := s.daemon.ListRecordings(s.ctx, states)
	if err != nil {
		return err
	}
	resp.Recordings = make([]Recording, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		resp.Recordings = append(resp.Recordings, api.FromTrackedRecording(record))
	}
	return nil
}

func (s *service) TrackingDescribe(req TrackingDescribeRequest, resp *TrackingDescribeResponse) error {
	if req.RecordingID == "" {
		return errors.New("recording id required")
	}
	record, err := s.daemon.GetRecording(s.ctx, req.RecordingID)
	if err != nil {
		return err
	}
	if record == nil {
		resp.Found = false
		return nil
	}
	resp.Found = true
	resp.Recording = api.FromTrackedRecording(record)
	return nil
}

func (s *service) TrackingRemove(req TrackingRemoveRequest, resp *TrackingRemoveResponse) error {
	if len(req.RecordingIDs) == 0 {
		return errors.New("tracking remove requires at least one recording id")
	}
	s.log().Debug("tracking remove requested", logging.Int("recording_count", len(req.RecordingIDs)))
	var removed int64
	for _, id := range req.RecordingIDs {
		ok, err := s.daemon.Remove(s.ctx, id)
		if err != nil {
			return err
		}
		if ok {
			removed++
		}
	}
	resp.Removed = removed
	s.log().Info("tracking rows removed",
		logging.String(logging.FieldEventType, "tracking_remove"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) TrackingClear(_ TrackingClearRequest, resp *TrackingClearResponse) error {
	s.log().Debug("tracking clear requested")
	removed, err := s.daemon.Clear(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("tracking cleared",
		logging.String(logging.FieldEventType, "tracking_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) TrackingClearTerminal(_ TrackingClearTerminalRequest, resp *TrackingClearTerminalResponse) error {
	s.log().Debug("tracking clear terminal requested")
	removed, err := s.daemon.ClearTerminal(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.log().Info("tracking terminal rows cleared",
		logging.String(logging.FieldEventType, "tracking_clear_terminal"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) TrackingHealth(_ TrackingHealthRequest, resp *TrackingHealthResponse) error {
	health, err := s.daemon.TrackingHealth(s.ctx)
	if err != nil {
		return err
	}
	resp.Total = health.Total
	resp.Active = health.Active
	resp.Completed = health.Completed
	resp.Failed = health.Failed
	resp.TimedOut = health.TimedOut
	resp.Cancelled = health.Cancelled
	resp.AwaitingReview = health.AwaitingReview
	return nil
}

func (s *service) DatabaseHealth(_ DatabaseHealthRequest, resp *DatabaseHealthResponse) error {
	health, err := s.daemon.DatabaseHealth(s.ctx)
	if err != nil && health.Error == "" {
		return err
	}
	resp.DBPath = health.DBPath
	resp.DatabaseExists = health.DatabaseExists
	resp.DatabaseReadable = health.DatabaseReadable
	resp.SchemaVersion = health.SchemaVersion
	resp.TableExists = health.TableExists
	resp.ColumnsPresent = append(resp.ColumnsPresent, health.ColumnsPresent...)
	resp.MissingColumns = append(resp.MissingColumns, health.MissingColumns...)
	resp.IntegrityCheck = health.IntegrityCheck
	resp.TotalRecords = health.TotalRecords
	resp.Error = health.Error
	if err != nil {
		return err
	}
	return nil
}

func (s *service) PendingReviews(req PendingReviewsRequest, resp *PendingReviewsResponse) error {
	reviews, err := s.daemon.PendingReviews(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Reviews = api.FromPendingReviews(reviews)
	return nil
}

func (s *service) SubmitReview(req SubmitReviewRequest, resp *SubmitReviewResponse) error {
	s.log().Debug("review submission requested",
		logging.String(logging.FieldEvaluationID, req.EvaluationID))
	overrides := make([]evals.StageOverride, 0, len(req.Overrides))
	for _, override := range req.Overrides {
		overrides = append(overrides, evals.StageOverride{
			StageID: override.StageID,
			Score:   override.Score,
		})
	}
	result, err := s.daemon.SubmitReview(s.ctx, req.EvaluationID, req.RecordingID, overrides, req.Notes)
	if err != nil {
		return err
	}
	resp.Result = result
	s.log().Info("human review submitted via IPC",
		logging.String(logging.FieldEventType, "review_submit"),
		logging.String(logging.FieldEvaluationID, req.EvaluationID))
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.daemon.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
