package orchestrators

import (
	"context"
	"log/slog"

	"plagdesk/internal/domain/account"
	"plagdesk/internal/domain/session"
)

// MsgRegistrationFailed is shown when the server gives no reason.
const MsgRegistrationFailed = "Registration failed"

// RegisterGateway defines the gateway calls needed by Register.
type RegisterGateway interface {
	Register(ctx context.Context, creds account.Credentials) error
	LoginGateway
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email    string
	Password string
	Confirm  string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	Gateway RegisterGateway
	Session SessionStarter
}

// ExecuteRegister creates the account, logs straight in, and lands on the
// dashboard.
// PRE: none
// POST: on success the session holds the new account's token
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (LoginResult, error) {
	creds := account.Credentials{Email: input.Email, Password: input.Password}
	creds.Normalize()
	if err := creds.ValidateRegistration(input.Confirm); err != nil {
		return LoginResult{}, &FlowError{Message: err.Error(), Err: err}
	}

	if err := deps.Gateway.Register(ctx, creds); err != nil {
		slog.Info("auth_event", "event", "register_failed", "email", creds.Email)
		return LoginResult{}, fail(err, MsgRegistrationFailed)
	}
	slog.Info("auth_event", "event", "register_success", "email", creds.Email)

	return ExecuteLogin(ctx, LoginInput{
		Email:    creds.Email,
		Password: creds.Password,
		Next:     session.DefaultLanding,
	}, LoginDeps{Gateway: deps.Gateway, Session: deps.Session})
}
