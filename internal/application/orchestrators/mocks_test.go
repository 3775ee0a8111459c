package orchestrators

import (
	"context"
	"errors"

	"plagdesk/internal/domain/account"
	"plagdesk/internal/domain/result"
)

// mockGateway implements every gateway interface the orchestrators need.
type mockGateway struct {
	token       string
	loginErr    error
	registerErr error
	deleteErr   error
	report      result.Report
	reportErr   error

	logins    []account.Credentials
	registers []account.Credentials
	deleted   []result.ID
}

func (m *mockGateway) Login(_ context.Context, creds account.Credentials) (string, error) {
	m.logins = append(m.logins, creds)
	if m.loginErr != nil {
		return "", m.loginErr
	}
	return m.token, nil
}

func (m *mockGateway) Register(_ context.Context, creds account.Credentials) error {
	m.registers = append(m.registers, creds)
	return m.registerErr
}

func (m *mockGateway) DeleteResult(_ context.Context, id result.ID) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

func (m *mockGateway) DownloadReport(context.Context, result.ID) (result.Report, error) {
	return m.report, m.reportErr
}

// mockSession records session transitions.
type mockSession struct {
	token     string
	setErr    error
	logoutErr error
	logouts   int
}

func (m *mockSession) LoginSuccess(_ context.Context, token string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.token = token
	return nil
}

func (m *mockSession) Logout(context.Context) error {
	m.logouts++
	m.token = ""
	return m.logoutErr
}

// serverErr mimics a gateway error carrying the server's text.
type serverErr struct{ msg string }

func (e *serverErr) Error() string         { return "request failed: " + e.msg }
func (e *serverErr) ServerMessage() string { return e.msg }

var errTransport = errors.New("dial tcp: connection refused")
