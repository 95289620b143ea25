package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"cadence/internal/api"
	"cadence/internal/config"
	"cadence/internal/logging"
	"cadence/internal/tracking"
)

type apiServer struct {
	bind        string
	logger      *slog.Logger
	daemon      *Daemon
	trackingSvc *api.TrackingService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	svc := api.NewTrackingService(d.store)
	mux := http.NewServeMux()
	srv := &apiServer{
		bind:        bind,
		logger:      logger,
		daemon:      d,
		trackingSvc: svc,
	}

	token := strings.TrimSpace(cfg.Paths.APIToken)
	mux.HandleFunc("/api/status", authMiddleware(token, srv.handleStatus))
	mux.HandleFunc("/api/recordings", authMiddleware(token, srv.handleRecordings))
	mux.HandleFunc("/api/recordings/", authMiddleware(token, srv.handleRecording))
	mux.HandleFunc("/api/logs", authMiddleware(token, srv.handleLogs))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	checks := make([]api.CheckStatus, len(status.Checks))
	for i, check := range status.Checks {
		checks[i] = api.CheckStatus{
			Name:   check.Name,
			Passed: check.Passed,
			Detail: check.Detail,
		}
	}
	payload := api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		SocketPath:   status.SocketPath,
		Watch:        api.FromStatusSummary(status.Watch),
		Checks:       checks,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *apiServer) handleRecordings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.trackingSvc == nil {
		s.writeJSON(w, http.StatusOK, api.RecordingListResponse{Recordings: nil})
		return
	}
	var states []tracking.WatchState
	for _, value := range r.URL.Query()["state"] {
		parsed, ok := tracking.ParseWatchState(value)
		if !ok {
			continue
		}
		states = append(states, parsed)
	}

	recordings, err := s.trackingSvc.List(r.Context(), states...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RecordingListResponse{Recordings: recordings})
}

func (s *apiServer) handleRecording(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.trackingSvc == nil {
		s.writeError(w, http.StatusNotFound, "recording not found")
		return
	}
	recordingID := strings.TrimPrefix(r.URL.Path, "/api/recordings/")
	if recordingID == "" || strings.Contains(recordingID, "/") {
		s.writeError(w, http.StatusNotFound, "recording not found")
		return
	}
	recording, err := s.trackingSvc.Describe(r.Context(), recordingID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recording == nil {
		s.writeError(w, http.StatusNotFound, "recording not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.RecordingResponse{Recording: *recording})
}

func (s *apiServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	hub := s.daemon.LogStream()
	archive := s.daemon.LogArchive()
	if hub == nil && archive == nil {
		s.writeJSON(w, http.StatusOK, api.LogStreamResponse{Events: nil, Next: 0})
		return
	}

	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = 200
	}
	follow := query.Get("follow") == "1" || strings.EqualFold(query.Get("follow"), "true")
	tail := query.Get("tail") == "1" || strings.EqualFold(query.Get("tail"), "true")

	match := eventMatcher(strings.TrimSpace(query.Get("recording")), strings.TrimSpace(query.Get("component")))

	var (
		events []logging.LogEvent
		next   uint64
	)

	if archive != nil && since > 0 {
		firstSeq := uint64(0)
		if hub != nil {
			firstSeq = hub.FirstSequence()
		}
		if hub == nil || (firstSeq > 0 && since < firstSeq) {
			archived, cursor, archErr := archive.ReadSince(since, limit, match)
			if archErr != nil {
				s.log().Warn("log archive read failed", logging.Error(archErr))
			} else if len(archived) > 0 {
				events = archived
				next = cursor
			}
		}
	}
	if tail && since == 0 && !follow && hub != nil {
		raw, cursor := hub.Tail(limit)
		events = filterEvents(raw, match)
		next = cursor
	} else if len(events) == 0 && hub != nil {
		raw, cursor, fetchErr := hub.Fetch(r.Context(), since, limit, follow)
		if fetchErr != nil && !errors.Is(fetchErr, context.Canceled) && !errors.Is(fetchErr, context.DeadlineExceeded) {
			s.writeError(w, http.StatusInternalServerError, fetchErr.Error())
			return
		}
		events = filterEvents(raw, match)
		next = cursor
	}

	s.writeJSON(w, http.StatusOK, api.LogStreamResponse{
		Events: api.FromLogEvents(events),
		Next:   next,
	})
}

// eventMatcher builds the replay filter for the logs endpoint. Recording ids
// match exactly; component names match case-insensitively.
func eventMatcher(recordingID, component string) logging.EventMatcher {
	if recordingID == "" && component == "" {
		return nil
	}
	return func(evt logging.LogEvent) bool {
		if recordingID != "" && evt.RecordingID != recordingID {
			return false
		}
		if component != "" && !strings.EqualFold(component, evt.Component) {
			return false
		}
		return true
	}
}

func filterEvents(events []logging.LogEvent, match logging.EventMatcher) []logging.LogEvent {
	if match == nil {
		return events
	}
	filtered := make([]logging.LogEvent, 0, len(events))
	for _, evt := range events {
		if match(evt) {
			filtered = append(filtered, evt)
		}
	}
	return filtered
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
