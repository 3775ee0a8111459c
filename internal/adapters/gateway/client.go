// Package gateway is the single outbound channel to the plagiarism API. It
// attaches the bearer token to every request and turns any 401 into a
// cleared credential store plus a session-invalidated signal.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"plagdesk/internal/adapters/http/perf"
	"plagdesk/internal/adapters/storage/credential"
)

// MaxResponseBytes caps any body read from the API, PDFs included.
const MaxResponseBytes = 64 << 20

// DefaultSlowUpstreamMs is the slow-call warning threshold.
const DefaultSlowUpstreamMs = 1000

// Revoker drops a token the server rejected. Revoke must clear the
// credential store and any in-memory copy as one step, and must leave a token
// that replaced rejected in place (reporting false).
type Revoker interface {
	Revoke(ctx context.Context, rejected string) (bool, error)
}

// Options configures a Client. Revoker defaults to a compare-and-clear of
// Credentials; the session context passes itself so the 401 path runs under
// its lock.
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials credential.Store
	Revoker     Revoker
	Collector   *perf.Collector
	SlowMs      int
}

// storeRevoker serializes compare-and-clear on a store no one else guards.
type storeRevoker struct {
	mu    sync.Mutex
	store credential.Store
}

func (s *storeRevoker) Revoke(ctx context.Context, rejected string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return credential.ClearIfHeld(ctx, s.store, rejected)
}

// Client talks to the plagiarism API.
type Client struct {
	base      *url.URL
	http      *http.Client
	creds     credential.Store
	revoker   Revoker
	collector *perf.Collector
	slowMs    float64

	mu          sync.Mutex
	subscribers []func()
}

// New builds a Client.
// PRE: opts.BaseURL is an absolute http(s) URL; opts.Credentials is non-nil
// POST: returns a ready Client or an error for a bad base URL
func New(opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
	}
	if opts.Credentials == nil {
		return nil, errors.New("gateway requires a credential store")
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	slow := opts.SlowMs
	if slow <= 0 {
		slow = DefaultSlowUpstreamMs
	}
	revoker := opts.Revoker
	if revoker == nil {
		revoker = &storeRevoker{store: opts.Credentials}
	}
	return &Client{
		base:      u,
		http:      hc,
		creds:     opts.Credentials,
		revoker:   revoker,
		collector: opts.Collector,
		slowMs:    float64(slow),
	}, nil
}

// OnSessionInvalidated registers fn to run after a 401 revokes the held
// token. fn must not block.
func (c *Client) OnSessionInvalidated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// invalidate revokes the token the rejected request carried, then notifies
// subscribers. A 401 for a token a newer login has replaced changes nothing.
func (c *Client) invalidate(ctx context.Context, method, path, sent string) {
	// The request context may already be done; the clear must still land.
	revoked, err := c.revoker.Revoke(context.WithoutCancel(ctx), sent)
	if err != nil {
		slog.Error("auth_event", "event", "credential_clear_failed", "error", err)
	}
	if !revoked {
		slog.Info("auth_event", "event", "stale_rejection_ignored", "method", method, "path", path)
		return
	}
	slog.Info("auth_event", "event", "session_invalidated", "method", method, "path", path)

	c.mu.Lock()
	subs := append([]func(){}, c.subscribers...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// request describes one outbound call.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	accept      string
}

// do sends r and returns the 2xx body.
// PRE: r.path starts with "/" and its segments are escaped
// POST: 401 -> *AuthError after invalidation; other failures -> *RequestError
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	// r.path is already escaped; Path must hold the decoded form or
	// String would escape it a second time.
	u := *c.base
	u.RawPath = c.base.EscapedPath() + r.path
	path, err := url.PathUnescape(u.RawPath)
	if err != nil {
		return nil, &RequestError{Method: r.method, Path: r.path, Err: err}
	}
	u.Path = path
	u.RawQuery = r.query.Encode()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, &RequestError{Method: r.method, Path: r.path, Err: err}
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	accept := r.accept
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	token, err := c.creds.Get(ctx)
	if err != nil {
		// An unreadable store is treated as no token; the server decides.
		slog.Warn("credential_read_failed", "error", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.record(r, reqID, 0, start)
		return nil, &RequestError{Method: r.method, Path: r.path, Err: err}
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	c.record(r, reqID, resp.StatusCode, start)
	if err != nil {
		return nil, &RequestError{Method: r.method, Path: r.path, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidate(ctx, r.method, r.path, token)
		return nil, &AuthError{Method: r.method, Path: r.path, Message: serverMessage(data)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &RequestError{
			Method:     r.method,
			Path:       r.path,
			StatusCode: resp.StatusCode,
			Message:    serverMessage(data),
		}
	}
	return data, nil
}

// record logs the call and feeds the perf collector.
func (c *Client) record(r request, reqID string, status int, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	attrs := []any{
		"request_id", reqID,
		"method", r.method,
		"path", r.path,
		"status", status,
		"duration_ms", durationMs,
	}
	if durationMs >= c.slowMs {
		slog.Warn("slow_upstream", attrs...)
	} else {
		slog.Debug("upstream", attrs...)
	}
	if c.collector != nil {
		c.collector.Record(perf.Entry{
			Kind:       perf.KindUpstream,
			Path:       r.method + " " + templatePath(r.path),
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// templatePath folds numeric path segments so per-id calls aggregate.
func templatePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			parts[i] = "{id}"
		}
	}
	return strings.Join(parts, "/")
}
