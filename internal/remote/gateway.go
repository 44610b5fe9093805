package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 5 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// Outcome classifies a request result.
type Outcome int

const (
	OutcomeUnavailable Outcome = iota
	OutcomeEmpty
	OutcomeOK
)

// String returns the outcome name used in logs and traces.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	default:
		return "unavailable"
	}
}

// Reachable reports whether the remote store answered successfully.
func (o Outcome) Reachable() bool {
	return o != OutcomeUnavailable
}

// Result is the outcome of one request. Data is set only for OutcomeOK.
type Result struct {
	Outcome Outcome
	Data    json.RawMessage
}

// Gateway issues requests against one document store.
type Gateway struct {
	baseURL   string
	authToken string
	timeout   time.Duration
	client    *http.Client
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithAuthToken appends ?auth=<token> to every request.
func WithAuthToken(token string) Option {
	return func(g *Gateway) {
		g.authToken = token
	}
}

// WithHTTPClient replaces the HTTP client (tests use httptest clients).
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		if c != nil {
			g.client = c
		}
	}
}

// New creates a gateway for the store rooted at baseURL.
func New(baseURL string, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL returns the store root the gateway talks to.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do issues one request. body, when non-nil, is sent as JSON.
// It never returns an error; every failure becomes OutcomeUnavailable.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) Result {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			slog.Warn("remote request body not encodable", "method", method, "path", path, "error", err)
			return Result{Outcome: OutcomeUnavailable}
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, g.url(path), reader)
	if err != nil {
		slog.Warn("remote request invalid", "method", method, "path", path, "error", err)
		return Result{Outcome: OutcomeUnavailable}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		slog.Debug("remote request failed", "method", method, "path", path, "error", err)
		return Result{Outcome: OutcomeUnavailable}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		slog.Debug("remote request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return Result{Outcome: OutcomeUnavailable}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		slog.Debug("remote response truncated", "method", method, "path", path, "error", err)
		return Result{Outcome: OutcomeUnavailable}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return Result{Outcome: OutcomeEmpty}
	}
	if !json.Valid(raw) {
		slog.Warn("remote response is not JSON", "method", method, "path", path)
		return Result{Outcome: OutcomeUnavailable}
	}
	return Result{Outcome: OutcomeOK, Data: json.RawMessage(raw)}
}

func (g *Gateway) url(path string) string {
	u := g.baseURL + "/" + strings.TrimLeft(path, "/")
	if g.authToken != "" {
		u += "?auth=" + url.QueryEscape(g.authToken)
	}
	return u
}
