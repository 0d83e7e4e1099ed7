package meetupapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"meetup/internal/adapters/http/perf"
)

// DefaultTimeout bounds every upstream call.
const DefaultTimeout = 10 * time.Second

// DefaultSlowCallMs is the threshold for slow upstream call warnings.
const DefaultSlowCallMs = 500

// maxErrorBody caps how much of a failed response is read for the detail field.
const maxErrorBody = 64 << 10

// Client talks to the meetup REST API under /api/v1.
type Client struct {
	base      *url.URL
	http      *http.Client
	collector *perf.Collector
	slowMs    float64
	requestID func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCollector records every call into the perf collector.
func WithCollector(col *perf.Collector) Option {
	return func(c *Client) { c.collector = col }
}

// WithSlowCallThreshold sets the slow call warning threshold in milliseconds.
func WithSlowCallThreshold(ms int) Option {
	return func(c *Client) {
		if ms > 0 {
			c.slowMs = float64(ms)
		}
	}
}

// New creates a Client for the API rooted at baseURL (scheme and host, no /api/v1).
// PRE: baseURL is an absolute http(s) URL
// POST: Returns a ready-to-use client or an error for a malformed URL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", baseURL)
	}
	c := &Client{
		base:      u,
		http:      &http.Client{Timeout: DefaultTimeout},
		slowMs:    DefaultSlowCallMs,
		requestID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call describes one upstream request.
type call struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

// do sends the call and decodes a JSON success body into out (when non-nil).
// Errors are always *HTTPError or *TransportError.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	u := *c.base
	u.Path = c.base.Path + "/api/v1" + cl.path
	if cl.query != nil {
		u.RawQuery = cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), cl.body)
	if err != nil {
		return &TransportError{Op: cl.op, Err: err}
	}
	reqID := c.requestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.observe(cl, reqID, status, start, err)
	if err != nil {
		return &TransportError{Op: cl.op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{Op: cl.op, StatusCode: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: cl.op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) observe(cl call, reqID string, status int, start time.Time, err error) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	attrs := []any{
		"op", cl.op,
		"request_id", reqID,
		"method", cl.method,
		"path", cl.path,
		"status", status,
		"duration_ms", durationMs,
	}
	switch {
	case err != nil:
		slog.Warn("upstream_call_failed", append(attrs, "error", err.Error())...)
	case durationMs >= c.slowMs:
		slog.Warn("slow_upstream_call", attrs...)
	default:
		slog.Debug("upstream_call", attrs...)
	}
	c.collector.Record(perf.Entry{
		Kind:       perf.KindUpstream,
		Path:       "meetupapi." + cl.op,
		StatusCode: status,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}

// parseDetail extracts {"detail": ...}. A string detail is returned as is; a
// validation error list is reduced to its first message.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var list []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &list); err == nil && len(list) > 0 {
		return list[0].Msg
	}
	return ""
}

// field is one ordered form field.
type field struct {
	name  string
	value string
}

// multipartBody encodes fields as multipart/form-data.
func multipartBody(fields ...field) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) postMultipart(ctx context.Context, op, path string, out any, fields ...field) error {
	body, ct, err := multipartBody(fields...)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	return c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: body, contentType: ct}, out)
}
