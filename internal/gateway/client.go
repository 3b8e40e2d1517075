// Package gateway is the typed client for the tracker's REST backend.
//
// Every operation is a single request: no retries, no caching. Failures come
// back as *RequestFailedError, which also matches core.ErrNotFound on 404.
package gateway

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

	"moneyboard/internal/core"
	"moneyboard/internal/log"
)

const defaultTimeout = 10 * time.Second

// Client talks to one backend instance.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentGateway) }
}

// New builds a client for baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Categories returns the category endpoints.
func (c *Client) Categories() *CategoryAPI { return &CategoryAPI{c: c} }

// Expenses returns the expense collection endpoints.
func (c *Client) Expenses() *TransactionAPI { return c.Transactions(core.Expense) }

// Income returns the income collection endpoints.
func (c *Client) Income() *TransactionAPI { return c.Transactions(core.Income) }

// Transactions returns the endpoints of kind's collection.
func (c *Client) Transactions(kind core.Kind) *TransactionAPI {
	return &TransactionAPI{c: c, kind: kind}
}

// Dashboard returns the aggregation endpoints.
func (c *Client) Dashboard() *DashboardAPI { return &DashboardAPI{c: c} }

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return &RequestFailedError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(payload)
	}

	target := c.endpoint(path, query)
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &RequestFailedError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logFailure(ctx, op, method, target, 0, start, err)
		return &RequestFailedError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		rerr := &RequestFailedError{Op: op, Status: resp.StatusCode, Err: decodeAPIError(resp.Body)}
		c.logFailure(ctx, op, method, target, resp.StatusCode, start, rerr)
		return rerr
	}

	c.logger.Fields(ctx, slog.LevelDebug, "Gateway request completed", log.NewFields().
		WithOperation(op).
		WithHTTPResponse(resp.StatusCode, time.Since(start).Milliseconds(), true).
		With(log.FieldMethod, method).
		With(log.FieldURL, target))

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		rerr := &RequestFailedError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		c.logFailure(ctx, op, method, target, resp.StatusCode, start, rerr)
		return rerr
	}
	return nil
}

func (c *Client) logFailure(ctx context.Context, op, method, target string, status int, start time.Time, err error) {
	errType := log.ErrorTypeNetwork
	if status == http.StatusNotFound {
		errType = log.ErrorTypeNotFound
	} else if status != 0 {
		errType = log.ErrorTypeInternal
	}
	c.logger.Fields(ctx, slog.LevelWarn, "Gateway request failed", log.NewFields().
		WithOperation(op).
		WithError(err).
		WithErrorType(errType).
		WithHTTPResponse(status, time.Since(start).Milliseconds(), false).
		With(log.FieldMethod, method).
		With(log.FieldURL, target))
}
