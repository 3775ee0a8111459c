package session_test

import (
	"testing"

	"plagdesk/internal/domain/session"
)

// TestEvaluate verifies the three guard verdicts.
func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		s    session.Session
		want session.GuardState
	}{
		{"loading wins over token", session.Session{Token: "t", IsLoading: true}, session.GuardLoading},
		{"loading without token", session.Session{IsLoading: true}, session.GuardLoading},
		{"authorized", session.Session{Token: "t"}, session.GuardAuthorized},
		{"unauthorized", session.Session{}, session.GuardUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := session.Evaluate(tt.s); got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSafeNext verifies only local paths are accepted as resume targets.
func TestSafeNext(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "/dashboard"},
		{"/history?page=2", "/history?page=2"},
		{"/results/42", "/results/42"},
		{"https://evil.example/", "/dashboard"},
		{"//evil.example/x", "/dashboard"},
		{`/\evil.example`, "/dashboard"},
		{"history", "/dashboard"},
		{"/login", "/dashboard"},
	}
	for _, tt := range tests {
		if got := session.SafeNext(tt.in); got != tt.want {
			t.Errorf("SafeNext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestLoginRedirect verifies the original location survives the round trip.
func TestLoginRedirect(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/history?page=2", "/login?next=%2Fhistory%3Fpage%3D2"},
		{"/dashboard", "/login?next=%2Fdashboard"},
		{"//evil.example", "/login"},
	}
	for _, tt := range tests {
		if got := session.LoginRedirect(tt.in); got != tt.want {
			t.Errorf("LoginRedirect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
