package evalapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cadence/internal/services"
)

func TestClientSendsAuthHeaders(t *testing.T) {
	var captured *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	client := NewClient("secret-key", WithBaseURL(server.URL))
	if _, err := client.RecordingStatus(context.Background(), "rec_0001"); err != nil {
		t.Fatalf("RecordingStatus returned error: %v", err)
	}

	if captured == nil {
		t.Fatal("expected request to reach server")
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer secret-key" {
		t.Errorf("Authorization = %q, want bearer token", got)
	}
	if got := captured.Header.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %q, want application/json", got)
	}
	if got := captured.URL.Path; got != "/recordings/rec_0001/status" {
		t.Errorf("path = %q, want /recordings/rec_0001/status", got)
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	client := NewClient("key", WithBaseURL("http://example.test/api/v1/"))
	if client.BaseURL() != "http://example.test/api/v1" {
		t.Fatalf("BaseURL = %q, want trailing slash trimmed", client.BaseURL())
	}
}

func TestStatusCodeClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		marker    error
		retryable bool
	}{
		{"not found", http.StatusNotFound, services.ErrNotFound, false},
		{"unauthorized", http.StatusUnauthorized, services.ErrConfiguration, false},
		{"forbidden", http.StatusForbidden, services.ErrConfiguration, false},
		{"rate limited", http.StatusTooManyRequests, services.ErrTransient, true},
		{"server error", http.StatusInternalServerError, services.ErrTransient, true},
		{"bad gateway", http.StatusBadGateway, services.ErrTransient, true},
		{"bad request", http.StatusBadRequest, services.ErrValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client := NewClient("key", WithBaseURL(server.URL))
			_, err := client.RecordingStatus(context.Background(), "rec_0001")
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if !errors.Is(err, tt.marker) {
				t.Errorf("error %v missing marker %v", err, tt.marker)
			}
			if got := services.Retryable(err); got != tt.retryable {
				t.Errorf("Retryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestCancelledContextPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"queued"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("key", WithBaseURL(server.URL))
	_, err := client.RecordingStatus(ctx, "rec_0001")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("cancellation must not classify as retryable")
	}
}

func TestTransportFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	_, err := client.RecordingStatus(context.Background(), "rec_0001")
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !services.Retryable(err) {
		t.Fatalf("expected retryable transport error, got %v", err)
	}
}
