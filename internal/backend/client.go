package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrNotFound is matched by errors.Is for 404 responses.
var ErrNotFound = errors.New("not found")

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Snapshotter persists the last good response per key.
type Snapshotter interface {
	Put(key string, value any) error
	Get(key string, dst any) (time.Time, bool, error)
}

// Client talks to the news backend over HTTP/JSON.
type Client struct {
	baseURL        string
	http           *http.Client
	cache          Snapshotter
	sampleFallback bool
	log            *slog.Logger
	now            func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache enables the local snapshot fallback.
func WithCache(s Snapshotter) Option {
	return func(c *Client) { c.cache = s }
}

// WithSampleFallback makes Posts return the built-in sample posts when the
// backend is down and nothing is cached.
func WithSampleFallback(enabled bool) Option {
	return func(c *Client) { c.sampleFallback = enabled }
}

// WithLogger sets the logger used for fallback warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a client for the API rooted at baseURL, e.g.
// "http://localhost:8081/api".
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// origin is the backend root without the /api prefix; /health lives there.
func (c *Client) origin() string {
	return strings.TrimSuffix(c.baseURL, "/api")
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doURL(ctx, method, c.baseURL+path, path, body, out)
}

func (c *Client) doURL(ctx context.Context, method, url, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
		return &StatusError{Method: method, Path: path, Code: res.StatusCode, Detail: errorDetail(data)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// errorDetail pulls the message out of FastAPI-style {"detail": ...} or
// {"error": ...} bodies.
func errorDetail(data []byte) string {
	var parsed struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(data, &parsed); err == nil {
		if s, ok := parsed.Detail.(string); ok && s != "" {
			return s
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(data))
}

// envelope is the {status, data} wrapper most list endpoints use.
type envelope[T any] struct {
	Status string `json:"status"`
	Data   T      `json:"data"`
}

func (e envelope[T]) check(path string) error {
	if e.Status != "" && e.Status != "success" {
		return fmt.Errorf("%s: backend status %q", path, e.Status)
	}
	return nil
}

// snapshot records a good response. Cache failures never fail the call.
func (c *Client) snapshot(key string, value any) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Put(key, value); err != nil {
		c.log.Warn("store snapshot", slog.String("key", key), slog.Any("err", err))
	}
}

// restore loads the snapshot for key after fetchErr; it returns fetchErr
// when nothing usable is cached.
func (c *Client) restore(key string, dst any, fetchErr error) error {
	if c.cache == nil {
		return fetchErr
	}
	storedAt, found, err := c.cache.Get(key, dst)
	if err != nil {
		c.log.Warn("load snapshot", slog.String("key", key), slog.Any("err", err))
		return fetchErr
	}
	if !found {
		return fetchErr
	}
	c.log.Warn("backend unavailable, serving cached snapshot",
		slog.String("key", key),
		slog.Time("stored_at", storedAt),
		slog.Any("err", fetchErr),
	)
	return nil
}

// Health checks the backend's /health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.doURL(ctx, http.MethodGet, c.origin()+"/health", "/health", nil, nil)
}
