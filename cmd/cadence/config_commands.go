package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set platform api_key (or export CADENCE_PLATFORM_API_KEY) before running Cadence.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

// configView is the sanitized form of the resolved configuration. Secrets are
// reported as set/unset so the output is safe to paste into bug reports.
type configView struct {
	DataDir             string  `json:"dataDir"`
	LogDir              string  `json:"logDir"`
	APIBind             string  `json:"apiBind,omitempty"`
	APITokenSet         bool    `json:"apiTokenSet"`
	PlatformURL         string  `json:"platformUrl"`
	PlatformKeySet      bool    `json:"platformKeySet"`
	PlatformTimeout     int     `json:"platformTimeoutSeconds"`
	PollInterval        int     `json:"pollIntervalSeconds"`
	MaxAttempts         int     `json:"maxAttempts"`
	MaxConcurrent       int     `json:"maxConcurrent"`
	IncludeExplanation  bool    `json:"includeExplanation"`
	FetchTranscript     bool    `json:"fetchTranscript"`
	FetchMedia          bool    `json:"fetchMedia"`
	PassingThreshold    int     `json:"passingThreshold"`
	ConfidenceThreshold float64 `json:"confidenceThreshold"`
	NtfyConfigured      bool    `json:"ntfyConfigured"`
	LogFormat           string  `json:"logFormat"`
	LogLevel            string  `json:"logLevel"`
	LogRetentionDays    int     `json:"logRetentionDays"`
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration (secrets redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view := configView{
				DataDir:             cfg.Paths.DataDir,
				LogDir:              cfg.Paths.LogDir,
				APIBind:             cfg.Paths.APIBind,
				APITokenSet:         strings.TrimSpace(cfg.Paths.APIToken) != "",
				PlatformURL:         cfg.Platform.BaseURL,
				PlatformKeySet:      strings.TrimSpace(cfg.Platform.APIKey) != "",
				PlatformTimeout:     cfg.Platform.TimeoutSeconds,
				PollInterval:        cfg.Poller.IntervalSeconds,
				MaxAttempts:         cfg.Poller.MaxAttempts,
				MaxConcurrent:       cfg.Poller.MaxConcurrent,
				IncludeExplanation:  cfg.Poller.IncludeExplanation,
				FetchTranscript:     cfg.Poller.FetchTranscript,
				FetchMedia:          cfg.Poller.FetchMedia,
				PassingThreshold:    cfg.Scoring.PassingThreshold,
				ConfidenceThreshold: cfg.Scoring.ConfidenceThreshold,
				NtfyConfigured:      strings.TrimSpace(cfg.Notifications.NtfyTopic) != "",
				LogFormat:           cfg.Logging.Format,
				LogLevel:            cfg.Logging.Level,
				LogRetentionDays:    cfg.Logging.RetentionDays,
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, view)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Data dir: %s\n", view.DataDir)
			fmt.Fprintf(out, "Log dir: %s\n", view.LogDir)
			if view.APIBind != "" {
				fmt.Fprintf(out, "API bind: %s\n", view.APIBind)
				fmt.Fprintf(out, "API token: %s\n", setUnset(view.APITokenSet))
			}
			fmt.Fprintf(out, "Platform URL: %s\n", view.PlatformURL)
			fmt.Fprintf(out, "Platform API key: %s\n", setUnset(view.PlatformKeySet))
			fmt.Fprintf(out, "Platform timeout: %ds\n", view.PlatformTimeout)
			fmt.Fprintf(out, "Poll interval: %ds\n", view.PollInterval)
			fmt.Fprintf(out, "Max attempts: %d\n", view.MaxAttempts)
			fmt.Fprintf(out, "Max concurrent: %d\n", view.MaxConcurrent)
			fmt.Fprintf(out, "Include explanation: %s\n", yesNo(view.IncludeExplanation))
			fmt.Fprintf(out, "Fetch transcript: %s\n", yesNo(view.FetchTranscript))
			fmt.Fprintf(out, "Fetch media: %s\n", yesNo(view.FetchMedia))
			fmt.Fprintf(out, "Passing threshold: %d\n", view.PassingThreshold)
			fmt.Fprintf(out, "Confidence threshold: %.2f\n", view.ConfidenceThreshold)
			fmt.Fprintf(out, "Notifications: %s\n", setUnset(view.NtfyConfigured))
			fmt.Fprintf(out, "Log format: %s\n", view.LogFormat)
			fmt.Fprintf(out, "Log level: %s\n", view.LogLevel)
			fmt.Fprintf(out, "Log retention: %d days\n", view.LogRetentionDays)
			return nil
		},
	}
}

func setUnset(value bool) string {
	if value {
		return "configured"
	}
	return "not set"
}
