package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"plagdesk/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionSource yields the current session snapshot.
type SessionSource interface {
	Snapshot() session.Session
}

// loadingPage is served while the stored credential is still being read. It
// re-requests the same URL, so the guard decides again once loading ends.
const loadingPage = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><meta http-equiv="refresh" content="1">
<title>Loading…</title></head>
<body><main class="loading"><p>Loading…</p></main></body></html>`

// Auth returns middleware that puts the session snapshot in the request context.
// It does NOT block unauthenticated requests; RequireSession does that.
func Auth(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), sessionContextKey, src.Snapshot())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession guards a protected page.
// PRE: none
// POST: LOADING renders the neutral loading page; UNAUTHORIZED redirects to
// /login carrying the original path; AUTHORIZED serves next unchanged
// INVARIANT: the guard keeps no state between requests
func RequireSession(src SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch session.Evaluate(src.Snapshot()) {
			case session.GuardLoading:
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.Header().Set("Cache-Control", "no-store")
				_, _ = w.Write([]byte(loadingPage))
			case session.GuardUnauthorized:
				slog.Debug("auth_event", "event", "guard_redirect", "path", r.URL.Path)
				http.Redirect(w, r, session.LoginRedirect(ResumeTarget(r)), http.StatusSeeOther)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// ResumeTarget is the page to come back to after logging in. Only reads are
// resumable; a form post resumes at the landing page.
func ResumeTarget(r *http.Request) string {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return ""
	}
	return r.URL.RequestURI()
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(session.Session)
	return s, ok
}

// IsLoggedIn reports whether the request carries an authenticated session.
func IsLoggedIn(ctx context.Context) bool {
	s, ok := GetSessionFromContext(ctx)
	return ok && s.IsAuthenticated()
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}
