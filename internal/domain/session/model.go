// Package session models the client's authenticated state and the route guard
// decision derived from it.
package session

import (
	"net/url"
	"strings"
)

// CredentialKey is the fixed key the bearer token is stored under.
const CredentialKey = "access_token"

// DefaultLanding is where a successful login goes when no resume target exists.
const DefaultLanding = "/dashboard"

// LoginPath is the public page unauthenticated visitors are sent to.
const LoginPath = "/login"

// Session is a point-in-time view of the session context.
// INVARIANT: IsLoading is true only before the first credential read completes.
type Session struct {
	Token     string
	IsLoading bool
}

// IsAuthenticated reports whether a token is held. Validity is the server's call.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// GuardState is the route guard's verdict for a protected view.
type GuardState int

const (
	GuardLoading GuardState = iota
	GuardAuthorized
	GuardUnauthorized
)

// String returns the verdict name used in logs.
func (g GuardState) String() string {
	switch g {
	case GuardLoading:
		return "loading"
	case GuardAuthorized:
		return "authorized"
	default:
		return "unauthorized"
	}
}

// Evaluate maps a session snapshot to a guard verdict.
// PRE: none
// POST: LOADING while the store read is pending, else AUTHORIZED iff a token is held
func Evaluate(s Session) GuardState {
	if s.IsLoading {
		return GuardLoading
	}
	if s.IsAuthenticated() {
		return GuardAuthorized
	}
	return GuardUnauthorized
}

// LoginRedirect builds the login URL that resumes target after authentication.
// PRE: target is the originally requested path (with query)
// POST: returns /login?next=<target>, or bare /login when target is not resumable
func LoginRedirect(target string) string {
	next := SafeNext(target)
	if next == DefaultLanding && target != DefaultLanding {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a local absolute path, else DefaultLanding.
// Scheme-relative ("//host") and backslash tricks are rejected so the resume
// target cannot leave the site.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return DefaultLanding
	}
	if strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return DefaultLanding
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return DefaultLanding
	}
	if u.Path == LoginPath {
		return DefaultLanding
	}
	return next
}
