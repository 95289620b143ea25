package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cadence/internal/config"
	"cadence/internal/evals"
)

const userAgent = "Cadence/0.1.0"

// Service defines the notification surface exposed to the watch manager.
type Service interface {
	NotifyEvaluationCompleted(ctx context.Context, recordingTitle string, overall int, passed bool) error
	NotifyEvaluationFailed(ctx context.Context, recordingTitle string, kind evals.FailureKind, reason string) error
	NotifyWatchTimedOut(ctx context.Context, recordingTitle string, attempts int) error
	NotifyReviewRequired(ctx context.Context, recordingTitle, reason string) error
	NotifyReviewSubmitted(ctx context.Context, recordingTitle string, overall, notable int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	return &ntfyService{
		endpoint: topic,
		client:   client,
		events:   cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	events   config.Notifications
}

func (n *ntfyService) NotifyEvaluationCompleted(ctx context.Context, recordingTitle string, overall int, passed bool) error {
	if !n.events.Completed {
		return nil
	}
	recordingTitle = strings.TrimSpace(recordingTitle)
	verdict := "fail"
	if passed {
		verdict = "pass"
	}
	data := payload{
		title:   "Cadence - Evaluation Complete",
		message: fmt.Sprintf("✅ Scored %d/100 (%s): %s", overall, verdict, recordingTitle),
		tags:    []string{"cadence", "evaluation", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEvaluationFailed(ctx context.Context, recordingTitle string, kind evals.FailureKind, reason string) error {
	if !n.events.Failed {
		return nil
	}
	recordingTitle = strings.TrimSpace(recordingTitle)
	reason = strings.TrimSpace(reason)

	var data payload
	if kind == evals.FailurePrivacyBlock {
		message := fmt.Sprintf("🔒 Privacy policy blocked processing: %s", recordingTitle)
		if reason != "" {
			message = fmt.Sprintf("%s\nPolicy: %s", message, reason)
		}
		data = payload{
			title:   "Cadence - Recording Blocked",
			message: message,
			tags:    []string{"cadence", "evaluation", "privacy"},
		}
	} else {
		message := fmt.Sprintf("❌ Evaluation failed: %s", recordingTitle)
		if reason != "" {
			message = fmt.Sprintf("%s\nReason: %s", message, reason)
		}
		data = payload{
			title:    "Cadence - Evaluation Failed",
			message:  message,
			tags:     []string{"cadence", "evaluation", "failed"},
			priority: "high",
		}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyWatchTimedOut(ctx context.Context, recordingTitle string, attempts int) error {
	if !n.events.TimedOut {
		return nil
	}
	recordingTitle = strings.TrimSpace(recordingTitle)
	data := payload{
		title:   "Cadence - Still Processing",
		message: fmt.Sprintf("⏳ No result after %d checks: %s\nRun 'cadence recheck' later", attempts, recordingTitle),
		tags:    []string{"cadence", "watch", "timeout"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, recordingTitle, reason string) error {
	if !n.events.ReviewRequired {
		return nil
	}
	recordingTitle = strings.TrimSpace(recordingTitle)
	reason = strings.TrimSpace(reason)
	message := fmt.Sprintf("📋 Human review required: %s", recordingTitle)
	if reason != "" {
		message = fmt.Sprintf("%s (%s)", message, reason)
	}
	data := payload{
		title:    "Cadence - Review Required",
		message:  message,
		tags:     []string{"cadence", "review", "required"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewSubmitted(ctx context.Context, recordingTitle string, overall, notable int) error {
	if !n.events.ReviewSubmitted {
		return nil
	}
	recordingTitle = strings.TrimSpace(recordingTitle)
	message := fmt.Sprintf("📝 Review submitted for %s: %d/100", recordingTitle, overall)
	if notable > 0 {
		message = fmt.Sprintf("%s\n%d notable disagreement(s) with the AI scores", message, notable)
	}
	data := payload{
		title:   "Cadence - Review Submitted",
		message: message,
		tags:    []string{"cadence", "review", "submitted"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Cadence - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"cadence", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyEvaluationCompleted(context.Context, string, int, bool) error { return nil }
func (noopService) NotifyEvaluationFailed(context.Context, string, evals.FailureKind, string) error {
	return nil
}
func (noopService) NotifyWatchTimedOut(context.Context, string, int) error        { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error    { return nil }
func (noopService) NotifyReviewSubmitted(context.Context, string, int, int) error { return nil }
func (noopService) TestNotification(context.Context) error                        { return nil }
