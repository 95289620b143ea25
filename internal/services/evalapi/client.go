package evalapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cadence/internal/config"
	"cadence/internal/services"
)

const (
	defaultBaseURL     = "http://127.0.0.1:8080/api/v1"
	defaultHTTPTimeout = 30 * time.Second
	maxErrorBody       = 2048
	componentName      = "evalapi"
	userAgent          = "Cadence/0.1.0"
)

// Client wraps the recording platform's HTTP API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the platform client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient constructs a platform API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// NewFromConfig constructs a client from application configuration.
func NewFromConfig(cfg *config.Config) *Client {
	if cfg == nil {
		return NewClient("")
	}
	return NewClient(
		cfg.Platform.APIKey,
		WithBaseURL(cfg.Platform.BaseURL),
		WithTimeout(cfg.PlatformTimeout()),
	)
}

// BaseURL reports the resolved API base, mainly for preflight diagnostics.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) getJSON(ctx context.Context, operation string, query url.Values, out any, segments ...string) error {
	endpoint, err := c.endpoint(operation, query, segments...)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, componentName, operation, "build request", err)
	}
	return c.do(req, operation, out)
}

func (c *Client) postJSON(ctx context.Context, operation string, payload any, out any, segments ...string) error {
	endpoint, err := c.endpoint(operation, nil, segments...)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrValidation, componentName, operation, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return services.Wrap(services.ErrValidation, componentName, operation, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, operation, out)
}

func (c *Client) endpoint(operation string, query url.Values, segments ...string) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, componentName, operation, "build url", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint, nil
}

func (c *Client) do(req *http.Request, operation string, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(req.Context(), operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(operation, resp.StatusCode, body)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, componentName, operation, "read body", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrExternalService, componentName, operation, "decode response", err)
	}
	return nil
}

// classifyTransport maps connection-level failures onto the service error
// taxonomy. Context cancellation passes through untagged so callers can
// distinguish their own cancellation from platform trouble.
func classifyTransport(ctx context.Context, operation string, err error) error {
	if ctx != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return ctx.Err()
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, componentName, operation, "request timed out", err)
	}
	return services.Wrap(services.ErrTransient, componentName, operation, "request failed", err)
}

func classifyStatus(operation string, status int, body []byte) error {
	message := strings.TrimSpace(string(body))
	detail := fmt.Sprintf("platform returned %d", status)
	if message != "" {
		detail += ": " + message
	}
	switch {
	case status == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, componentName, operation, detail, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, componentName, operation, detail+" (check platform api key)", nil)
	case status == http.StatusTooManyRequests:
		return services.Wrap(services.ErrTransient, componentName, operation, detail, nil)
	case status >= http.StatusInternalServerError:
		return services.Wrap(services.ErrTransient, componentName, operation, detail, nil)
	default:
		return services.Wrap(services.ErrValidation, componentName, operation, detail, nil)
	}
}
