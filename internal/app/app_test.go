package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"plagdesk/internal/adapters/gateway"
	"plagdesk/internal/config"
)

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.APIBaseURL = apiURL
	cfg.DBPath = filepath.Join(t.TempDir(), "plagdesk.db")
	cfg.StageSchedule = nil
	return cfg
}

func openApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a.Session.Initialize(context.Background())
	return a
}

// TestOpen_UnauthorizedInvalidatesSession verifies the gateway's 401 signal
// reaches the session and the stored token does not survive a restart.
func TestOpen_UnauthorizedInvalidatesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"Token has expired"}`))
	}))
	defer srv.Close()
	cfg := testConfig(t, srv.URL)

	a := openApp(t, cfg)
	if err := a.Session.LoginSuccess(context.Background(), "tok-1"); err != nil {
		t.Fatalf("LoginSuccess: %v", err)
	}

	_, err := a.Gateway.Analytics(context.Background())
	if !IsAuthLoss(err) {
		t.Fatalf("err = %v, want an auth loss", err)
	}
	if a.Session.IsAuthenticated() {
		t.Error("session still authenticated after a 401")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openApp(t, cfg)
	defer reopened.Close()
	if reopened.Session.IsAuthenticated() {
		t.Error("token survived the 401 across a restart")
	}
}

// TestOpen_TokenPersistsAcrossRestart verifies a login is read back by the
// next process.
func TestOpen_TokenPersistsAcrossRestart(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")

	a := openApp(t, cfg)
	if err := a.Session.LoginSuccess(context.Background(), "tok-1"); err != nil {
		t.Fatalf("LoginSuccess: %v", err)
	}
	a.Close()

	reopened := openApp(t, cfg)
	defer reopened.Close()
	if !reopened.Session.IsAuthenticated() {
		t.Error("stored token was not read back")
	}
}

// TestOpen_SealedStore verifies a configured store key round-trips the token.
func TestOpen_SealedStore(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.StoreKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

	a := openApp(t, cfg)
	if err := a.Session.LoginSuccess(context.Background(), "tok-sealed"); err != nil {
		t.Fatalf("LoginSuccess: %v", err)
	}
	a.Close()

	reopened := openApp(t, cfg)
	defer reopened.Close()
	if !reopened.Session.IsAuthenticated() {
		t.Error("sealed token was not read back")
	}
}

// TestIsAuthLoss verifies only the unauthorized sentinel counts.
func TestIsAuthLoss(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"auth error", &gateway.AuthError{Method: "GET", Path: "/files/analytics"}, true},
		{"wrapped", errors.Join(errors.New("ctx"), gateway.ErrUnauthorized), true},
		{"not found", &gateway.RequestError{StatusCode: 404}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthLoss(tt.err); got != tt.want {
				t.Errorf("IsAuthLoss(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
