package notify_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cadence/internal/config"
	"cadence/internal/evals"
	"cadence/internal/notify"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notify.NewService(&cfg)
	if err := svc.NotifyEvaluationCompleted(context.Background(), "Example", 80, true); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		publish        func(svc notify.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "evaluation completed pass",
			publish: func(svc notify.Service) error {
				return svc.NotifyEvaluationCompleted(context.Background(), "Billing dispute call", 87, true)
			},
			expectTitle:   "Cadence - Evaluation Complete",
			expectMessage: "✅ Scored 87/100 (pass): Billing dispute call",
			expectTags:    "cadence,evaluation,completed",
		},
		{
			name: "evaluation completed fail",
			publish: func(svc notify.Service) error {
				return svc.NotifyEvaluationCompleted(context.Background(), "Escalated call", 54, false)
			},
			expectTitle:   "Cadence - Evaluation Complete",
			expectMessage: "✅ Scored 54/100 (fail): Escalated call",
			expectTags:    "cadence,evaluation,completed",
		},
		{
			name: "generic failure",
			publish: func(svc notify.Service) error {
				return svc.NotifyEvaluationFailed(context.Background(), "Broken upload", evals.FailureGeneric, "transcoding error")
			},
			expectTitle:    "Cadence - Evaluation Failed",
			expectMessage:  "❌ Evaluation failed: Broken upload\nReason: transcoding error",
			expectTags:     "cadence,evaluation,failed",
			expectPriority: "high",
		},
		{
			name: "privacy block",
			publish: func(svc notify.Service) error {
				return svc.NotifyEvaluationFailed(context.Background(), "Sensitive call", evals.FailurePrivacyBlock, "PII redaction policy refused content")
			},
			expectTitle:   "Cadence - Recording Blocked",
			expectMessage: "🔒 Privacy policy blocked processing: Sensitive call\nPolicy: PII redaction policy refused content",
			expectTags:    "cadence,evaluation,privacy",
		},
		{
			name: "watch timed out",
			publish: func(svc notify.Service) error {
				return svc.NotifyWatchTimedOut(context.Background(), "Long call", 60)
			},
			expectTitle:   "Cadence - Still Processing",
			expectMessage: "⏳ No result after 60 checks: Long call\nRun 'cadence recheck' later",
			expectTags:    "cadence,watch,timeout",
		},
		{
			name: "review required",
			publish: func(svc notify.Service) error {
				return svc.NotifyReviewRequired(context.Background(), "Flagged call", "critical violation")
			},
			expectTitle:    "Cadence - Review Required",
			expectMessage:  "📋 Human review required: Flagged call (critical violation)",
			expectTags:     "cadence,review,required",
			expectPriority: "high",
		},
		{
			name: "review submitted",
			publish: func(svc notify.Service) error {
				return svc.NotifyReviewSubmitted(context.Background(), "Reviewed call", 72, 2)
			},
			expectTitle:   "Cadence - Review Submitted",
			expectMessage: "📝 Review submitted for Reviewed call: 72/100\n2 notable disagreement(s) with the AI scores",
			expectTags:    "cadence,review,submitted",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notify.NewService(&cfg)
			if err := tc.publish(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsEventToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled event: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Completed = false
	cfg.Notifications.Failed = false
	cfg.Notifications.TimedOut = false
	cfg.Notifications.ReviewRequired = false
	cfg.Notifications.ReviewSubmitted = false

	svc := notify.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifyEvaluationCompleted(ctx, "muted", 80, true); err != nil {
		t.Fatalf("expected nil for disabled completed event, got %v", err)
	}
	if err := svc.NotifyEvaluationFailed(ctx, "muted", evals.FailureGeneric, "boom"); err != nil {
		t.Fatalf("expected nil for disabled failed event, got %v", err)
	}
	if err := svc.NotifyWatchTimedOut(ctx, "muted", 10); err != nil {
		t.Fatalf("expected nil for disabled timeout event, got %v", err)
	}
	if err := svc.NotifyReviewRequired(ctx, "muted", ""); err != nil {
		t.Fatalf("expected nil for disabled review event, got %v", err)
	}
	if err := svc.NotifyReviewSubmitted(ctx, "muted", 70, 0); err != nil {
		t.Fatalf("expected nil for disabled submitted event, got %v", err)
	}
}

func TestNtfyServiceReportsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notify.NewService(&cfg)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error from failing ntfy endpoint")
	}
}
