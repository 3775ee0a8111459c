package orchestrators

import (
	"context"
	"log/slog"
)

// SessionEnder drops the held token.
type SessionEnder interface {
	Logout(ctx context.Context) error
}

// JobCanceller detaches in-flight checks.
type JobCanceller interface {
	CancelAll()
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Session SessionEnder
	Jobs    JobCanceller // optional: nil when the front end runs no background checks
}

// ExecuteLogout ends the session. Logging out twice is harmless.
// PRE: none
// POST: no token is held or stored; pending checks are detached
func ExecuteLogout(ctx context.Context, deps LogoutDeps) error {
	if deps.Jobs != nil {
		deps.Jobs.CancelAll()
	}
	if err := deps.Session.Logout(ctx); err != nil {
		slog.Error("auth_event", "event", "logout_failed", "error", err)
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}
