package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePlatform(); err != nil {
		return err
	}
	if err := c.validatePoller(); err != nil {
		return err
	}
	if err := c.validateScoring(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlatform() error {
	if strings.TrimSpace(c.Platform.BaseURL) == "" {
		return errors.New("platform.base_url must be set")
	}
	if c.Platform.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/cadence/config.toml"
		}
		return fmt.Errorf("platform.api_key is required. Set CADENCE_PLATFORM_API_KEY env var or edit %s (create with 'cadence config init')", defaultPath)
	}
	if c.Platform.TimeoutSeconds <= 0 {
		return errors.New("platform.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePoller() error {
	if err := ensurePositiveMap(map[string]int{
		"poller.interval_seconds": c.Poller.IntervalSeconds,
		"poller.max_attempts":     c.Poller.MaxAttempts,
		"poller.max_concurrent":   c.Poller.MaxConcurrent,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScoring() error {
	if c.Scoring.PassingThreshold < 0 || c.Scoring.PassingThreshold > 100 {
		return errors.New("scoring.passing_threshold must be between 0 and 100")
	}
	if c.Scoring.ConfidenceThreshold < 0 || c.Scoring.ConfidenceThreshold > 1 {
		return errors.New("scoring.confidence_threshold must be between 0 and 1")
	}
	if c.Scoring.WeightTolerance < 0 {
		return errors.New("scoring.weight_tolerance must be >= 0")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
