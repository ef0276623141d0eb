// Package api is the HTTP client of the credit-management backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mahmoud-slama/creditapp/internal/common"
)

// Defaults applied by New.
const (
	DefaultBaseURL    = "http://localhost:8882"
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
)

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 2048

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Body   string
	Status int
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is maps well-known statuses onto the common sentinel errors.
func (e *StatusError) Is(target error) bool {
	switch target {
	case common.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case common.ErrNotFound:
		return e.Status == http.StatusNotFound
	case common.ErrServerUnavailable:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	}
	return false
}

// Client talks to the backend. Authenticated calls go through the auth transport;
// login, registration and token refresh use the plain transport.
type Client struct {
	authed     *http.Client
	plain      *http.Client
	tokens     TokenStore
	logger     *slog.Logger
	baseURL    *url.URL
	timeout    time.Duration
	maxRetries int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client whose transport carries every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.plain = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithTokens enables authenticated calls backed by store.
func WithTokens(store TokenStore) Option {
	return func(c *Client) {
		c.tokens = store
	}
}

// WithMaxRetries sets how many attempts idempotent reads get.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: api base url %q: %w", common.ErrInvalidConfig, baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: api base url %q must be http or https", common.ErrInvalidConfig, baseURL)
	}

	c := &Client{
		baseURL:    u,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
		plain:      &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.plain.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	logged := &loggingTransport{base: base, logger: c.logger}

	c.plain = &http.Client{Transport: logged, Timeout: c.timeout}
	c.authed = &http.Client{
		Transport: &authTransport{
			base:    logged,
			tokens:  c.tokens,
			refresh: c.refresh,
			logger:  c.logger,
		},
		Timeout: c.timeout,
	}

	return c, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

// call describes one request.
type call struct {
	body   any
	out    any
	method string
	path   string
	// bearer overrides the session token on public calls.
	bearer string
	public bool
}

// do sends the request and decodes the JSON response into out when out is non-nil.
// Reads are retried on transient failures; writes are sent once.
func (c *Client) do(ctx context.Context, rc call) error {
	if rc.method == http.MethodGet {
		return common.WithRetry(ctx, func() error {
			return c.send(ctx, rc)
		}, c.retryOptions())
	}
	return c.send(ctx, rc)
}

func (c *Client) retryOptions() common.RetryOptions {
	opts := common.DefaultRetryOptions()
	opts.MaxAttempts = c.maxRetries
	return opts
}

func (c *Client) send(ctx context.Context, rc call) error {
	var body io.Reader
	if rc.body != nil {
		data, err := json.Marshal(rc.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, c.endpoint(rc.path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if rc.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rc.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+rc.bearer)
	}

	hc := c.authed
	if rc.public {
		hc = c.plain
	}

	resp, err := hc.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: rc.method,
			Path:   rc.path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(data)),
		}
	}

	if rc.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return decodeBody(data, rc.out)
}

// decodeBody decodes JSON, and accepts a bare text body when out is a *string.
func decodeBody(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if s, ok := out.(*string); ok && (len(trimmed) == 0 || trimmed[0] != '"') {
		*s = string(trimmed)
		return nil
	}
	if len(trimmed) == 0 {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// classifyTransportError marks network failures as retryable. Auth and
// cancellation errors pass through unchanged.
func classifyTransportError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, common.ErrMissingAuth),
		errors.Is(err, common.ErrSessionExpired):
		return err
	}
	return &common.RetryableError{
		Err:       fmt.Errorf("%w: %w", common.ErrServerUnavailable, err),
		Retryable: true,
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, out: out})
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, call{method: http.MethodPost, path: path, body: body, out: out})
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, call{method: http.MethodPut, path: path, body: body, out: out})
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: path})
}
