package credential

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"plagdesk/internal/adapters/storage"
)

func newTestStore(t *testing.T, sealer *Sealer) *SQLiteStore {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteStore(db, sealer)
}

func testSealer(t *testing.T) *Sealer {
	t.Helper()
	s, err := NewSealer(bytes.Repeat([]byte{7}, 32))
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return s
}

// TestSQLiteStore_RoundTrip verifies Set, Get, overwrite and Clear.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)

	if got, err := s.Get(ctx); err != nil || got != "" {
		t.Fatalf("empty Get = %q, %v", got, err)
	}
	if err := s.Set(ctx, "tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "tok-2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if got, _ := s.Get(ctx); got != "tok-2" {
		t.Errorf("Get = %q, want tok-2", got)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if got, _ := s.Get(ctx); got != "" {
		t.Errorf("Get after Clear = %q, want empty", got)
	}
}

// TestSQLiteStore_RejectsEmpty verifies an empty token is never written.
func TestSQLiteStore_RejectsEmpty(t *testing.T) {
	if err := newTestStore(t, nil).Set(context.Background(), ""); err == nil {
		t.Fatal("Set(\"\") error = nil, want error")
	}
}

// TestSQLiteStore_Sealed verifies the token is encrypted at rest.
func TestSQLiteStore_Sealed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, testSealer(t))
	if err := s.Set(ctx, "secret-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var stored string
	if err := s.db.QueryRowContext(ctx, "SELECT value FROM credential").Scan(&stored); err != nil {
		t.Fatal(err)
	}
	if !IsSealed(stored) || bytes.Contains([]byte(stored), []byte("secret-token")) {
		t.Errorf("stored value %q is not sealed", stored)
	}
	if got, err := s.Get(ctx); err != nil || got != "secret-token" {
		t.Errorf("Get = %q, %v", got, err)
	}

	// Same database, no key: the sealed value must not leak through.
	plain := NewSQLiteStore(s.db, nil)
	if _, err := plain.Get(ctx); !errors.Is(err, ErrSealed) {
		t.Errorf("Get without key error = %v, want ErrSealed", err)
	}
}

// TestSealer_WrongKey verifies authentication failure is reported.
func TestSealer_WrongKey(t *testing.T) {
	sealed, err := testSealer(t).Seal("x")
	if err != nil {
		t.Fatal(err)
	}
	other, _ := NewSealer(bytes.Repeat([]byte{8}, 32))
	if _, err := other.Open(sealed); !errors.Is(err, ErrOpen) {
		t.Errorf("Open with wrong key error = %v, want ErrOpen", err)
	}
	if _, err := other.Open("sb1:!!"); !errors.Is(err, ErrOpen) {
		t.Errorf("Open garbage error = %v, want ErrOpen", err)
	}
	if _, err := NewSealer([]byte("short")); err == nil {
		t.Error("NewSealer(short) error = nil")
	}
}

// TestMemoryStore verifies the in-memory stub behaves like the SQLite store.
func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NewMemoryStore()
	s.Set(ctx, "a")
	if got, _ := s.Get(ctx); got != "a" {
		t.Errorf("Get = %q, want a", got)
	}
	s.Clear(ctx)
	if got, _ := s.Get(ctx); got != "" {
		t.Errorf("Get after Clear = %q", got)
	}
	if w := s.(*MemoryStore).Writes; w != 2 {
		t.Errorf("Writes = %d, want 2", w)
	}
}

// TestClearIfHeld verifies a rejected token is cleared and a newer one kept.
func TestClearIfHeld(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name        string
		stored      string
		rejected    string
		wantCleared bool
		wantStored  string
	}{
		{"rejected token held", "old", "old", true, ""},
		{"newer login kept", "new", "old", false, "new"},
		{"sent without token, login since", "new", "", false, "new"},
		{"nothing stored", "", "old", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, nil)
			if tt.stored != "" {
				if err := s.Set(ctx, tt.stored); err != nil {
					t.Fatalf("Set: %v", err)
				}
			}
			cleared, err := ClearIfHeld(ctx, s, tt.rejected)
			if err != nil {
				t.Fatalf("ClearIfHeld: %v", err)
			}
			if cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v", cleared, tt.wantCleared)
			}
			if got, _ := s.Get(ctx); got != tt.wantStored {
				t.Errorf("stored = %q, want %q", got, tt.wantStored)
			}
		})
	}
}
