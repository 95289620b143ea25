package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePlatform()
	c.normalizePoller()
	c.normalizeScoring()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizePlatform() {
	c.Platform.BaseURL = strings.TrimRight(strings.TrimSpace(c.Platform.BaseURL), "/")
	if c.Platform.BaseURL == "" {
		c.Platform.BaseURL = defaultPlatformBaseURL
	}
	c.Platform.APIKey = strings.TrimSpace(c.Platform.APIKey)
	if c.Platform.APIKey == "" {
		if value, ok := os.LookupEnv("CADENCE_PLATFORM_API_KEY"); ok {
			c.Platform.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Platform.TimeoutSeconds <= 0 {
		c.Platform.TimeoutSeconds = defaultPlatformTimeout
	}
}

func (c *Config) normalizePoller() {
	if c.Poller.IntervalSeconds <= 0 {
		c.Poller.IntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Poller.MaxAttempts <= 0 {
		c.Poller.MaxAttempts = defaultPollMaxAttempts
	}
	if c.Poller.MaxConcurrent <= 0 {
		c.Poller.MaxConcurrent = defaultPollMaxConcurrent
	}
}

func (c *Config) normalizeScoring() {
	if c.Scoring.PassingThreshold <= 0 {
		c.Scoring.PassingThreshold = defaultPassingThreshold
	}
	if c.Scoring.ConfidenceThreshold <= 0 {
		c.Scoring.ConfidenceThreshold = defaultConfidenceThreshold
	}
	if c.Scoring.WeightTolerance < 0 {
		c.Scoring.WeightTolerance = defaultWeightTolerance
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
