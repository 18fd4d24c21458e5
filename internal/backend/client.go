// Package backend implements the client for the external health backend:
// the user-profile patch endpoint and the health-assessment persistence
// endpoint. Both are authorized with a bearer token supplied per call.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vitalpath/intakeflow/internal/models"
)

// DefaultTimeout bounds each backend call when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// Opts holds configuration options for the backend client.
type Opts struct {
	// BaseURL is the backend's base URL (required).
	BaseURL string
	// Timeout bounds each HTTP call.
	Timeout time.Duration
	// HTTPClient overrides the underlying HTTP client (tests).
	HTTPClient *http.Client
}

// Option configures backend client construction.
type Option func(*Opts)

// WithBaseURL sets the backend base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *Opts) {
		o.BaseURL = baseURL
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = timeout
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = client
	}
}

// Client calls the external health backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client. The base URL is required.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BaseURL == "" {
		slog.Error("Backend client base URL not set")
		return nil, fmt.Errorf("backend base URL not set")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	slog.Debug("Backend client created", "base_url", cfg.BaseURL)
	return &Client{baseURL: strings.TrimRight(cfg.BaseURL, "/"), http: httpClient}, nil
}

// PatchProfile applies a sparse profile patch for the user. Only fields the
// user actually supplied are present in the request body.
func (c *Client) PatchProfile(ctx context.Context, token, userID string, update models.UserProfileUpdate) models.Outcome {
	url := fmt.Sprintf("%s/users/%s/profile", c.baseURL, userID)
	return c.do(ctx, http.MethodPatch, url, token, update, "profile patch")
}

// SaveAssessment writes the full health assessment record for the user.
func (c *Client) SaveAssessment(ctx context.Context, token, userID string, assessment models.HealthAssessment) models.Outcome {
	url := fmt.Sprintf("%s/users/%s/assessments", c.baseURL, userID)
	return c.do(ctx, http.MethodPost, url, token, assessment, "assessment write")
}

// backendResponse is the backend's success/failure envelope.
type backendResponse struct {
	Message string `json:"message,omitempty"`
}

// do performs one JSON call and maps the response to an Outcome. Transport
// errors and non-2xx statuses become failed outcomes, never panics or
// propagated errors: the submission stage always resolves to a terminal result.
func (c *Client) do(ctx context.Context, method, url, token string, body interface{}, what string) models.Outcome {
	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error("Backend client marshal failed", "error", err, "operation", what)
		return models.Outcome{Message: fmt.Sprintf("failed to encode %s request: %v", what, err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("Backend client request build failed", "error", err, "operation", what)
		return models.Outcome{Message: fmt.Sprintf("failed to build %s request: %v", what, err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("Backend client call failed", "error", err, "operation", what, "url", url)
		return models.Outcome{Message: fmt.Sprintf("%s failed: %v", what, err)}
	}
	defer resp.Body.Close()

	var envelope backendResponse
	if data, readErr := io.ReadAll(resp.Body); readErr == nil && len(data) > 0 {
		// Body is advisory; a decode failure doesn't change the outcome.
		_ = json.Unmarshal(data, &envelope)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("%s returned status %d", what, resp.StatusCode)
		}
		slog.Warn("Backend client call rejected", "operation", what, "status", resp.StatusCode, "message", message)
		return models.Outcome{Message: message}
	}

	slog.Debug("Backend client call succeeded", "operation", what, "status", resp.StatusCode)
	return models.Outcome{OK: true, Message: envelope.Message}
}
