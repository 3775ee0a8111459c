package account

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	// MinPasswordLength applies to registration only; login sends whatever
	// the user typed and lets the server decide.
	MinPasswordLength = 6
)

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmailTooLong     = errors.New("email cannot exceed 254 characters")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Credentials is the email/password pair sent to /auth/login and /auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize trims surrounding whitespace from the email.
// PRE: none
// POST: Email has no leading or trailing whitespace
func (c *Credentials) Normalize() {
	c.Email = strings.TrimSpace(c.Email)
}

// ValidateLogin checks the fields a login form must carry.
// PRE: Credentials struct is populated
// POST: Returns nil if valid, error otherwise
func (c Credentials) ValidateLogin() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmptyEmail
	}
	if len(c.Email) > MaxEmailLength {
		return ErrEmailTooLong
	}
	if !strings.Contains(c.Email, "@") {
		return ErrInvalidEmail
	}
	if c.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// ValidateRegistration applies the login rules plus the password length and
// confirmation checks.
// PRE: confirm is the second password entry from the form
// POST: Returns nil if valid, error otherwise
func (c Credentials) ValidateRegistration(confirm string) error {
	if err := c.ValidateLogin(); err != nil {
		return err
	}
	if len(c.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if c.Password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
