package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cadence/internal/config"
	"cadence/internal/daemon"
	"cadence/internal/ipc"
	"cadence/internal/logging"
	"cadence/internal/services/evalapi"
	"cadence/internal/testsupport"
	"cadence/internal/tracking"
	"cadence/internal/watch"
)

// platformStub fakes the evaluation platform HTTP API. The zero value
// reports every recording as still processing, an empty review worklist,
// and accepts review submissions.
type platformStub struct {
	mu          sync.Mutex
	statuses    map[string]string
	pendingJSON string
	submissions []string
	server      *httptest.Server
}

func newPlatformStub(t *testing.T) *platformStub {
	t.Helper()
	stub := &platformStub{statuses: make(map[string]string)}
	stub.server = httptest.NewServer(http.HandlerFunc(stub.handle))
	t.Cleanup(stub.server.Close)
	return stub
}

func (p *platformStub) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case path == "/reviews/pending":
		p.mu.Lock()
		payload := p.pendingJSON
		p.mu.Unlock()
		if payload == "" {
			payload = `{"reviews":[]}`
		}
		_, _ = w.Write([]byte(payload))
	case strings.HasPrefix(path, "/evaluations/") && strings.HasSuffix(path, "/review"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/evaluations/"), "/review")
		p.mu.Lock()
		p.submissions = append(p.submissions, id)
		p.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	case strings.HasPrefix(path, "/recordings/") && strings.HasSuffix(path, "/status"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/recordings/"), "/status")
		p.mu.Lock()
		status := p.statuses[id]
		p.mu.Unlock()
		if status == "" {
			status = "processing"
		}
		fmt.Fprintf(w, `{"recording_id":%q,"status":%q}`, id, status)
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (p *platformStub) setStatus(recordingID, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[recordingID] = status
}

func (p *platformStub) setPendingReviews(payload string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingJSON = payload
}

func (p *platformStub) reviewSubmissions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.submissions...)
}

type cliTestEnv struct {
	cfg        *config.Config
	store      *tracking.Store
	daemon     *daemon.Daemon
	server     *ipc.Server
	platform   *platformStub
	socketPath string
	configPath string
	baseDir    string
	logPath    string
	cancel     context.CancelFunc
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	platform := newPlatformStub(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithPlatformURL(platform.server.URL),
		testsupport.WithPollInterval(1),
	)
	logPath := filepath.Join(cfg.Paths.LogDir, "cadence-test.log")
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(logPath, nil, 0o644); err != nil {
			t.Fatalf("create log file: %v", err)
		}
	}

	configPath := filepath.Join(homeDir, ".config", "cadence", "config.toml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	writeTestConfig(t, configPath, cfg)

	store := testsupport.MustOpenStore(t, cfg)

	logger := logging.NewNop()
	mgr := watch.NewManager(cfg, store, evalapi.NewFromConfig(cfg), logger)

	d, err := daemon.New(cfg, store, logger, mgr, logPath, logging.NewStreamHub(128), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		store:      store,
		daemon:     d,
		server:     srv,
		platform:   platform,
		socketPath: socketPath,
		configPath: configPath,
		baseDir:    base,
		logPath:    logPath,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
	})

	return env
}

// deadSocketPath returns a socket nothing listens on, forcing commands with
// a store fallback to take the direct database path.
func (env *cliTestEnv) deadSocketPath() string {
	return filepath.Join(env.baseDir, "dead.sock")
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	return err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\napi_bind = %q\n\n[platform]\nbase_url = %q\napi_key = %q\n\n[poller]\ninterval_seconds = %d\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.APIBind,
		cfg.Platform.BaseURL,
		cfg.Platform.APIKey,
		cfg.Poller.IntervalSeconds,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func waitFor(t *testing.T, duration time.Duration, fn func() bool) {
	t.Helper()
	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", duration)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
