package orchestrators

import (
	"context"
	"log/slog"

	"plagdesk/internal/domain/account"
	"plagdesk/internal/domain/session"
)

// MsgLoginFailed is shown when the server gives no reason.
const MsgLoginFailed = "Login failed"

// LoginGateway defines the gateway call needed by Login.
type LoginGateway interface {
	Login(ctx context.Context, creds account.Credentials) (string, error)
}

// SessionStarter adopts a freshly issued token.
type SessionStarter interface {
	LoginSuccess(ctx context.Context, token string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
	// Next is the protected page the user was sent away from, if any.
	Next string
}

// LoginResult carries where to go after a successful login.
type LoginResult struct {
	Redirect string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	Gateway LoginGateway
	Session SessionStarter
}

// ExecuteLogin exchanges credentials for a token and starts the session.
// PRE: none; credentials are validated here before any network call
// POST: on success the token is persisted and Redirect is a local path
// INVARIANT: an unsafe Next never becomes the redirect target
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	creds := account.Credentials{Email: input.Email, Password: input.Password}
	creds.Normalize()
	if err := creds.ValidateLogin(); err != nil {
		return LoginResult{}, &FlowError{Message: err.Error(), Err: err}
	}

	token, err := deps.Gateway.Login(ctx, creds)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", creds.Email)
		return LoginResult{}, fail(err, MsgLoginFailed)
	}
	if err := deps.Session.LoginSuccess(ctx, token); err != nil {
		slog.Error("auth_event", "event", "token_persist_failed", "error", err)
		return LoginResult{}, &FlowError{Message: MsgLoginFailed, Err: err}
	}

	slog.Info("auth_event", "event", "login_success", "email", creds.Email)
	return LoginResult{Redirect: session.SafeNext(input.Next)}, nil
}
