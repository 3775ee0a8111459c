package account_test

import (
	"errors"
	"testing"

	"plagdesk/internal/domain/account"
)

// TestCredentials_ValidateLogin tests validation of login input.
func TestCredentials_ValidateLogin(t *testing.T) {
	tests := []struct {
		name  string
		creds account.Credentials
		want  error
	}{
		{"valid", account.Credentials{Email: "a@b.co", Password: "x"}, nil},
		{"empty email", account.Credentials{Email: "  ", Password: "x"}, account.ErrEmptyEmail},
		{"no at sign", account.Credentials{Email: "ab.co", Password: "x"}, account.ErrInvalidEmail},
		{"empty password", account.Credentials{Email: "a@b.co"}, account.ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.creds.ValidateLogin(); !errors.Is(err, tt.want) {
				t.Errorf("ValidateLogin() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestCredentials_ValidateRegistration tests the extra registration rules.
func TestCredentials_ValidateRegistration(t *testing.T) {
	tests := []struct {
		name    string
		pass    string
		confirm string
		want    error
	}{
		{"valid", "secret1", "secret1", nil},
		{"too short", "abc", "abc", account.ErrPasswordTooShort},
		{"mismatch", "secret1", "secret2", account.ErrPasswordMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := account.Credentials{Email: "a@b.co", Password: tt.pass}
			if err := c.ValidateRegistration(tt.confirm); !errors.Is(err, tt.want) {
				t.Errorf("ValidateRegistration() = %v, want %v", err, tt.want)
			}
		})
	}
}

// TestCredentials_Normalize verifies whitespace around the email is dropped.
func TestCredentials_Normalize(t *testing.T) {
	c := account.Credentials{Email: "  a@b.co\n"}
	c.Normalize()
	if c.Email != "a@b.co" {
		t.Errorf("Email = %q, want %q", c.Email, "a@b.co")
	}
}
