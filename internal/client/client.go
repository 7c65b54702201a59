// Package client is a typed HTTP client for the loaner API. It attaches
// the session's bearer token, ends the session when the server rejects it,
// and checks booking rules locally before any request is sent.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultRetries is how many times an idempotent request is repeated
	// after a network error or 5xx response.
	DefaultRetries = 3

	defaultRetryDelay = 250 * time.Millisecond
	apiPrefix         = "/api/v1"
	maxBodyBytes      = 4 << 20
)

// Session supplies the bearer token and is told to sign out when the
// server rejects it. *session.Manager implements it.
type Session interface {
	Token() string
	Logout()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRetries sets how many times idempotent requests are retried.
// Zero disables retries.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = max(n, 0) }
}

// WithRetryDelay sets the pause between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSession attaches the session used for bearer tokens.
func WithSession(s Session) Option {
	return func(c *Client) { c.session = s }
}

// Client talks to one loaner service.
type Client struct {
	baseURL    string
	http       *http.Client
	session    Session
	retries    int
	retryDelay time.Duration
	logger     zerolog.Logger
}

// New creates a Client for the service at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api uri %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api uri %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + apiPrefix,
		http:       http.DefaultClient,
		retries:    DefaultRetries,
		retryDelay: defaultRetryDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetSession attaches s after construction, for callers that build the
// session manager on top of this client.
func (c *Client) SetSession(s Session) { c.session = s }

type request struct {
	method string
	path   string
	query  url.Values
	body   any

	// anonymous requests carry no token and never end the session.
	anonymous bool
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// do sends req, retrying idempotent methods on network and server
// errors, and decodes a 2xx body into result when result is non-nil.
func (c *Client) do(ctx context.Context, req request, result any) error {
	attempts := 1
	if idempotent(req.method) {
		attempts += c.retries
	}

	var lastErr *Error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug().
				Str("method", req.method).
				Str("path", req.path).
				Int("attempt", attempt).
				Err(lastErr).
				Msg("Retrying request")
			if err := sleep(ctx, c.retryDelay); err != nil {
				return &Error{Kind: KindNetwork, err: err}
			}
		}

		lastErr = c.once(ctx, req, result)
		if lastErr == nil {
			return nil
		}
		if !lastErr.retryable() || ctx.Err() != nil {
			break
		}
	}

	if !req.anonymous && (lastErr.Kind == KindUnauthorized || lastErr.Kind == KindForbidden) && c.session != nil {
		c.logger.Info().Int("status", lastErr.Status).Str("path", req.path).Msg("Token rejected, signing out")
		c.session.Logout()
	}
	return lastErr
}

func (c *Client) once(ctx context.Context, req request, result any) *Error {
	var body io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "encode request body", err: err}
		}
		body = bytes.NewReader(encoded)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return &Error{Kind: KindNetwork, err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.anonymous && c.session != nil {
		if tok := c.session.Token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &Error{Kind: KindNetwork, err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, err: err}
	}

	c.logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("HTTP request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data, req.anonymous)
	}
	if result == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "decode response", err: err}
	}
	return nil
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func decodeError(status int, data []byte, anonymous bool) *Error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(data))
		if eb.Error == "" {
			eb.Error = http.StatusText(status)
		}
	}

	kind := kindForStatus(status)
	if anonymous && kind == KindUnauthorized {
		kind = KindInvalidCredentials
	}
	return &Error{Kind: kind, Status: status, Message: eb.Error, Fields: eb.Fields}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
