package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"plagdesk/internal/adapters/storage"
	"plagdesk/internal/domain/session"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     storage.SQLDB
	sealer *Sealer
	now    func() time.Time
}

// NewSQLiteStore creates a new credential store. sealer may be nil, in which
// case tokens are stored as plain text.
func NewSQLiteStore(db storage.SQLDB, sealer *Sealer) *SQLiteStore {
	return &SQLiteStore{db: db, sealer: sealer, now: time.Now}
}

// Get retrieves the stored token.
// PRE: schema initialized
// POST: Returns the token, "" when none is stored, or an error
func (s *SQLiteStore) Get(ctx context.Context) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM credential WHERE name = ?", session.CredentialKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}
	if !IsSealed(value) {
		return value, nil
	}
	if s.sealer == nil {
		return "", ErrSealed
	}
	return s.sealer.Open(value)
}

// Set persists token, replacing any previous one.
// PRE: token is non-empty
// POST: Get returns token
func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("refusing to store an empty credential")
	}
	value := token
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			return err
		}
		value = sealed
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO credential (name, value, saved_at) VALUES (?, ?, ?) ON CONFLICT(name) DO UPDATE SET value=excluded.value, saved_at=excluded.saved_at",
		session.CredentialKey, value, s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
// PRE: schema initialized
// POST: Get returns ""
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credential WHERE name = ?", session.CredentialKey); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
