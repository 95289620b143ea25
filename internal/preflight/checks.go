package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"cadence/internal/config"
	"cadence/internal/services/evalapi"
)

// CheckPlatform verifies that the evaluation platform API is reachable.
// It uses a 5-second timeout and a single attempt (no retries).
func CheckPlatform(ctx context.Context, cfg config.Platform) Result {
	const name = "Evaluation platform"

	if strings.TrimSpace(cfg.BaseURL) == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := evalapi.NewClient(
		cfg.APIKey,
		evalapi.WithBaseURL(cfg.BaseURL),
		evalapi.WithTimeout(5*time.Second),
	)

	if err := client.Healthy(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizePlatformError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckNotifications verifies that the ntfy topic endpoint answers HTTP.
// The probe is a plain GET so no notification is published.
func CheckNotifications(ctx context.Context, topicURL string) Result {
	const name = "Notifications"

	topic := strings.TrimSpace(topicURL)
	if topic == "" {
		return Result{Name: name, Detail: "missing topic"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, topic, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%v)", err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < http.StatusInternalServerError:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("reachability check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// summarizePlatformError produces a human-readable summary for platform probe failures.
func summarizePlatformError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (platform API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (platform API unreachable)"
	}
	return err.Error()
}
