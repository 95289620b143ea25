package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cadence/internal/config"
)

func TestLoadDefaultConfigUsesEnvAPIKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("CADENCE_PLATFORM_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "cadence")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.LogDir != filepath.Join(wantData, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7519" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Platform.APIKey != "test-key" {
		t.Fatalf("expected platform key from env, got %q", cfg.Platform.APIKey)
	}
	if cfg.Platform.BaseURL != config.Default().Platform.BaseURL {
		t.Fatalf("unexpected platform base url: %q", cfg.Platform.BaseURL)
	}
	if cfg.Poller.IntervalSeconds != 5 {
		t.Fatalf("unexpected poll interval: %d", cfg.Poller.IntervalSeconds)
	}
	if cfg.Poller.MaxAttempts != 60 {
		t.Fatalf("unexpected attempt budget: %d", cfg.Poller.MaxAttempts)
	}
	if cfg.Poller.IncludeExplanation {
		t.Fatal("expected explanation fetch disabled by default")
	}
	if cfg.Scoring.PassingThreshold != 70 {
		t.Fatalf("unexpected passing threshold: %d", cfg.Scoring.PassingThreshold)
	}
	if cfg.Scoring.ConfidenceThreshold != 0.8 {
		t.Fatalf("unexpected confidence threshold: %v", cfg.Scoring.ConfidenceThreshold)
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected notifications disabled by default, got topic %q", cfg.Notifications.NtfyTopic)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}

	if cfg.DatabasePath() != filepath.Join(cfg.Paths.DataDir, "tracking.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.SocketPath() != filepath.Join(cfg.Paths.DataDir, "cadenced.sock") {
		t.Fatalf("unexpected socket path: %q", cfg.SocketPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cadence.toml")

	type payload struct {
		Platform struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"platform"`
		Poller struct {
			IntervalSeconds int `toml:"interval_seconds"`
			MaxAttempts     int `toml:"max_attempts"`
		} `toml:"poller"`
		Scoring struct {
			PassingThreshold int `toml:"passing_threshold"`
		} `toml:"scoring"`
	}
	custom := payload{}
	custom.Platform.APIKey = "abc123"
	custom.Platform.BaseURL = "https://example.com/api/"
	custom.Poller.IntervalSeconds = 10
	custom.Poller.MaxAttempts = 30
	custom.Scoring.PassingThreshold = 85
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Platform.APIKey != "abc123" {
		t.Fatalf("expected platform key from file, got %q", cfg.Platform.APIKey)
	}
	if cfg.Platform.BaseURL != "https://example.com/api" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Platform.BaseURL)
	}
	if cfg.Poller.IntervalSeconds != 10 {
		t.Fatalf("expected poll interval 10, got %d", cfg.Poller.IntervalSeconds)
	}
	if cfg.Poller.MaxAttempts != 30 {
		t.Fatalf("expected attempt budget 30, got %d", cfg.Poller.MaxAttempts)
	}
	if cfg.Scoring.PassingThreshold != 85 {
		t.Fatalf("expected passing threshold 85, got %d", cfg.Scoring.PassingThreshold)
	}
}

func TestEnvVarDoesNotOverrideConfigFileKey(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cadence.toml")

	type payload struct {
		Platform struct {
			APIKey string `toml:"api_key"`
		} `toml:"platform"`
	}
	custom := payload{}
	custom.Platform.APIKey = "file-key"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("CADENCE_PLATFORM_API_KEY", "env-key")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Platform.APIKey != "file-key" {
		t.Fatalf("expected file key to win, got %q", cfg.Platform.APIKey)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[platform]") {
		t.Fatalf("sample config missing platform section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Poller.IntervalSeconds != 5 {
		t.Fatalf("expected sample to carry default interval, got %d", cfg.Poller.IntervalSeconds)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Platform.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing platform key")
	}

	cfg = config.Default()
	cfg.Platform.APIKey = "key"
	cfg.Poller.IntervalSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive interval")
	}

	cfg = config.Default()
	cfg.Platform.APIKey = "key"
	cfg.Scoring.PassingThreshold = 120
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range threshold")
	}

	cfg = config.Default()
	cfg.Platform.APIKey = "key"
	cfg.Scoring.ConfidenceThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range confidence")
	}
}
