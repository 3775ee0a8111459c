package credential

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store. Tests use it in place of SQLiteStore.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	// Writes counts Set and Clear calls.
	Writes int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the held token.
func (m *MemoryStore) Get(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Set replaces the held token.
func (m *MemoryStore) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.Writes++
	return nil
}

// Clear drops the held token. Clearing an empty store is not an error.
func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.Writes++
	return nil
}
