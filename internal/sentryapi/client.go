package sentryapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// maximum number of response bytes echoed into parse-error diagnostics
const errBodyExcerpt = 500

// Config carries the settings needed to construct a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://sentry.io/api/0". Takes
	// precedence over Host when set (used by tests against httptest).
	BaseURL string

	// Host is the backend hostname, default "sentry.io".
	Host string

	// AuthToken is the bearer token sent on every request. Required.
	AuthToken string

	// Timeout bounds each request; zero means the 30s default.
	Timeout time.Duration

	// HTTPClient overrides the default transport (proxy-aware, 30s timeout).
	HTTPClient *http.Client

	Logger *zap.Logger
}

// Client is a stateless handle for the read-only backend API. It is safe
// for concurrent use; every call is a single request/response with no
// retries and no shared mutable state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authToken  string
	logger     *zap.Logger
}

// New builds a Client from cfg. It fails fast when the auth token is
// missing so the error surfaces at startup rather than on the first call.
func New(cfg Config) (*Client, error) {
	if cfg.AuthToken == "" {
		return nil, errors.New("SENTRY_AUTH_TOKEN must be set")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		host := cfg.Host
		if host == "" {
			host = "sentry.io"
		}
		baseURL = fmt.Sprintf("https://%s/api/0", host)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: proxyFromEnv()},
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		authToken:  cfg.AuthToken,
		logger:     logger,
	}, nil
}

// proxyFromEnv routes requests through SOCKS_PROXY when set, otherwise
// through HTTPS_PROXY, otherwise directly. Lowercase variants are honored
// the way the standard environment convention does.
func proxyFromEnv() func(*http.Request) (*url.URL, error) {
	proxyURL := firstEnv("SOCKS_PROXY", "socks_proxy")
	if proxyURL == "" {
		proxyURL = firstEnv("HTTPS_PROXY", "https_proxy")
	}
	if proxyURL == "" {
		return nil
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil
	}
	return http.ProxyURL(parsed)
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// GetIssue fetches one issue by organization slug and issue id.
func (c *Client) GetIssue(ctx context.Context, orgSlug, issueID string) (*Issue, error) {
	u := fmt.Sprintf("%s/organizations/%s/issues/%s/", c.baseURL, orgSlug, issueID)
	var issue Issue
	if err := c.getJSON(ctx, u, &issue); err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return &issue, nil
}

// GetLatestEvent fetches the most recent event for an issue.
func (c *Client) GetLatestEvent(ctx context.Context, orgSlug, issueID string) (*Event, error) {
	u := fmt.Sprintf("%s/organizations/%s/issues/%s/events/latest/", c.baseURL, orgSlug, issueID)
	var event Event
	if err := c.getJSON(ctx, u, &event); err != nil {
		return nil, fmt.Errorf("failed to get latest event: %w", err)
	}
	return &event, nil
}

// GetEvent fetches a specific event for an issue by event id.
func (c *Client) GetEvent(ctx context.Context, orgSlug, issueID, eventID string) (*Event, error) {
	u := fmt.Sprintf("%s/organizations/%s/issues/%s/events/%s/", c.baseURL, orgSlug, issueID, eventID)
	var event Event
	if err := c.getJSON(ctx, u, &event); err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

// GetTrace fetches the span tree for a trace id. The response is
// normalized into the single internal Span shape regardless of which of
// the two wire formats the backend returns.
func (c *Client) GetTrace(ctx context.Context, orgSlug, traceID string) (*TraceResponse, error) {
	u := fmt.Sprintf("%s/organizations/%s/events-trace/%s/?limit=100&useSpans=1", c.baseURL, orgSlug, traceID)
	var trace TraceResponse
	if err := c.getJSON(ctx, u, &trace); err != nil {
		return nil, fmt.Errorf("failed to get trace: %w", err)
	}
	return &trace, nil
}

// GetTraceMeta fetches the server-computed aggregate for a trace. Callers
// treat failures as "metadata absent" rather than failing the request.
func (c *Client) GetTraceMeta(ctx context.Context, orgSlug, traceID string) (*TraceMeta, error) {
	u := fmt.Sprintf("%s/organizations/%s/events-trace-meta/%s/", c.baseURL, orgSlug, traceID)
	var meta TraceMeta
	if err := c.getJSON(ctx, u, &meta); err != nil {
		return nil, fmt.Errorf("failed to get trace meta: %w", err)
	}
	return &meta, nil
}

// ListIssueEvents fetches events for an issue, filtered and ordered by q.
func (c *Client) ListIssueEvents(ctx context.Context, orgSlug, issueID string, q EventsQuery) ([]Event, error) {
	u := fmt.Sprintf("%s/organizations/%s/issues/%s/events/", c.baseURL, orgSlug, issueID)
	if qs := q.Encode(); qs != "" {
		u += "?" + qs
	}
	var events []Event
	if err := c.getJSON(ctx, u, &events); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// getJSON performs one authenticated GET and decodes the response body.
// Non-2xx responses surface as errors carrying the status and body text;
// decode failures carry the diagnostic plus a body excerpt.
func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	c.logger.Info("GET", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%d %s - %s", resp.StatusCode, http.StatusText(resp.StatusCode), string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		excerpt := string(body)
		if len(excerpt) > errBodyExcerpt {
			excerpt = excerpt[:errBodyExcerpt]
		}
		c.logger.Error("failed to parse response JSON",
			zap.String("url", u),
			zap.Error(err),
			zap.String("body", excerpt))
		return fmt.Errorf("JSON parse error: %w", err)
	}
	return nil
}
