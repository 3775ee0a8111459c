// Package session owns the process-wide authenticated state: one bearer token
// mirrored from the credential store, plus the loading flag the route guard
// reads while the first store read is in flight.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"plagdesk/internal/adapters/storage/credential"
	domain "plagdesk/internal/domain/session"
)

// ErrEmptyToken is returned by LoginSuccess for a blank token.
var ErrEmptyToken = errors.New("login returned an empty token")

// Context is the session context shared by every request or command.
// INVARIANT: loading flips from true to false exactly once.
type Context struct {
	store credential.Store

	mu      sync.RWMutex
	token   string
	loading bool

	initOnce sync.Once
	ready    chan struct{}
}

// New returns a Context that reports IsLoading until Initialize completes.
func New(store credential.Store) *Context {
	return &Context{store: store, loading: true, ready: make(chan struct{})}
}

// Initialize performs the single startup read of the credential store.
// A failed read counts as "no token". Later calls are no-ops.
// PRE: none
// POST: IsLoading is false; Token mirrors the store
func (c *Context) Initialize(ctx context.Context) {
	c.initOnce.Do(func() {
		c.mu.Lock()
		token, err := c.store.Get(ctx)
		if err != nil {
			slog.Warn("auth_event", "event", "credential_read_failed", "error", err)
			token = ""
		}
		c.token = token
		c.loading = false
		c.mu.Unlock()
		close(c.ready)
		slog.Debug("auth_event", "event", "session_initialized", "authenticated", token != "")
	})
}

// Ready is closed once Initialize has completed.
func (c *Context) Ready() <-chan struct{} {
	return c.ready
}

// Snapshot returns the current state for the route guard.
func (c *Context) Snapshot() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.Session{Token: c.token, IsLoading: c.loading}
}

// IsAuthenticated reports whether a token is held.
func (c *Context) IsAuthenticated() bool {
	return c.Snapshot().IsAuthenticated()
}

// LoginSuccess persists token and adopts it.
// PRE: token is the server-issued bearer token
// POST: store and context both hold token
func (c *Context) LoginSuccess(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Set(ctx, token); err != nil {
		return err
	}
	c.token = token
	return nil
}

// Logout clears the store and the held token. Logging out twice is harmless.
// PRE: none
// POST: store and context both hold no token; on a store error both keep it
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Revoke handles a 401 for a request that carried rejected. Under the same
// lock as LoginSuccess it clears the store and drops the held token, unless a
// newer login has already replaced rejected. It implements gateway.Revoker.
// A failed store clear still drops the held token: the server has refused it.
// PRE: none
// POST: true means the context holds no token
func (c *Context) Revoke(ctx context.Context, rejected string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.token != rejected {
		return false, nil
	}
	revoked, err := credential.ClearIfHeld(ctx, c.store, rejected)
	if !revoked {
		return false, err
	}
	had := c.token != ""
	c.token = ""
	if had {
		slog.Info("auth_event", "event", "session_dropped")
	}
	return true, err
}
