package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"curator/internal/logging"
	"curator/internal/workspace"
)

// maxErrorBody bounds how much of an error response is kept for display.
const maxErrorBody = 2048

// Credentials supplies the current bearer token, if any. The session
// store satisfies it; tests substitute fakes.
type Credentials interface {
	Token() (string, bool)
}

// Client talks to the control service. Every call hits the server fresh;
// nothing is cached between calls.
type Client struct {
	base   *url.URL
	creds  Credentials
	http   *http.Client
	logger *slog.Logger
}

// New builds a client for the given base URL. creds may be nil for a
// client that only performs login.
func New(baseURL string, creds Credentials, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("control service URL is empty")
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse control service URL: %w", err)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		base:   base,
		creds:  creds,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// Login exchanges operator credentials for a bearer token. It never
// attaches an existing token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp, false)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Me returns the authenticated operator identity.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	var resp Identity
	err := c.do(ctx, http.MethodGet, "/me", nil, &resp, true)
	return resp, err
}

// FetchConfig returns the persisted workspace config.
func (c *Client) FetchConfig(ctx context.Context) (workspace.Config, error) {
	var resp workspace.Config
	err := c.do(ctx, http.MethodGet, "/api/config", nil, &resp, true)
	return resp, err
}

// SaveConfig persists the workspace config and returns the stored value.
func (c *Client) SaveConfig(ctx context.Context, cfg workspace.Config) (workspace.Config, error) {
	var resp workspace.Config
	err := c.do(ctx, http.MethodPost, "/api/config", cfg, &resp, true)
	return resp, err
}

// ListSources returns all registered source pages.
func (c *Client) ListSources(ctx context.Context) ([]workspace.Source, error) {
	var resp []workspace.Source
	err := c.do(ctx, http.MethodGet, "/api/sources", nil, &resp, true)
	return resp, err
}

// AddSource registers a new source page.
func (c *Client) AddSource(ctx context.Context, platform workspace.Platform, handle string, enabled bool) (workspace.Source, error) {
	var resp workspace.Source
	req := sourceRequest{Platform: string(platform), Handle: handle, Enabled: enabled}
	err := c.do(ctx, http.MethodPost, "/api/sources", req, &resp, true)
	return resp, err
}

// FetchStats returns the current aggregate snapshot.
func (c *Client) FetchStats(ctx context.Context) (workspace.Stats, error) {
	var resp workspace.Stats
	err := c.do(ctx, http.MethodGet, "/api/stats", nil, &resp, true)
	return resp, err
}

// ListLogs returns recent pipeline log events, newest first.
func (c *Client) ListLogs(ctx context.Context) ([]workspace.LogEvent, error) {
	var resp []workspace.LogEvent
	err := c.do(ctx, http.MethodGet, "/api/logs", nil, &resp, true)
	return resp, err
}

// ClearLogs asks the control service to drop all log events. Callers
// must re-fetch to observe the empty set.
func (c *Client) ClearLogs(ctx context.Context) error {
	var resp okResponse
	return c.do(ctx, http.MethodPost, "/api/logs/clear", struct{}{}, &resp, true)
}

// ListCandidates returns the candidate snapshot, newest first.
func (c *Client) ListCandidates(ctx context.Context) ([]workspace.Candidate, error) {
	var resp []workspace.Candidate
	err := c.do(ctx, http.MethodGet, "/api/posts", nil, &resp, true)
	return resp, err
}

// Approve asks the control service to approve one candidate. Whether the
// candidate was actually awaiting approval is the server's call.
func (c *Client) Approve(ctx context.Context, candidateID int64) error {
	var resp okResponse
	path := fmt.Sprintf("/api/posts/%d/approve", candidateID)
	return c.do(ctx, http.MethodPost, path, struct{}{}, &resp, true)
}

// Run enqueues one pipeline run with the resolved effective mode. Each
// invocation enqueues exactly one job; there is no client-side
// deduplication.
func (c *Client) Run(ctx context.Context, autoPublish bool) (RunResult, error) {
	var resp RunResult
	err := c.do(ctx, http.MethodPost, "/api/run", runRequest{AutoPublish: autoPublish}, &resp, true)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	endpoint := c.base.ResolveReference(&url.URL{Path: c.base.Path + path})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if authed && c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Debug("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return &AuthError{Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
