package preflight

import (
	"context"
	"strings"

	"cadence/internal/config"
)

// CheckPlatformFromConfig evaluates platform status from config and connectivity.
func CheckPlatformFromConfig(cfg *config.Config) Result {
	const name = "Evaluation platform"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Platform.BaseURL) == "" {
		return Result{Name: name, Detail: "Missing base URL"}
	}
	if cfg.Platform.APIKey == "" {
		return Result{Name: name, Detail: "Missing API key"}
	}
	check := CheckPlatform(context.Background(), cfg.Platform)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}

// CheckNotificationsFromConfig evaluates notification status from config and connectivity.
func CheckNotificationsFromConfig(cfg *config.Config) Result {
	const name = "Notifications"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	check := CheckNotifications(context.Background(), cfg.Notifications.NtfyTopic)
	if check.Passed {
		return Result{Name: name, Passed: true, Detail: check.Detail}
	}
	return Result{Name: name, Detail: check.Detail}
}
