// Package credential persists the single bearer token the client holds.
package credential

import (
	"context"
	"errors"
)

// ErrSealed is returned when a sealed token is found but no key is configured.
var ErrSealed = errors.New("stored credential is sealed and no store key is configured")

// Store persists the bearer token under a fixed key.
// Get returns "" with a nil error when nothing is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ClearIfHeld clears s when it holds rejected or nothing. A different token
// means a newer login replaced the rejected one; it is left in place and
// ClearIfHeld reports false. An unreadable store is cleared.
// PRE: the caller serializes writes to s
// POST: true means s is now empty, unless the returned error says otherwise
func ClearIfHeld(ctx context.Context, s Store, rejected string) (bool, error) {
	if cur, err := s.Get(ctx); err == nil && cur != "" && cur != rejected {
		return false, nil
	}
	return true, s.Clear(ctx)
}
