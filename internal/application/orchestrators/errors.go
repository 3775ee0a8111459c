package orchestrators

import "errors"

// FlowError is a user-facing failure of an orchestrated flow. Message is safe
// to render; Err keeps the cause for errors.Is/As (a gateway AuthError stays
// detectable through it).
type FlowError struct {
	Message string
	Err     error
}

func (e *FlowError) Error() string { return e.Message }

// Unwrap exposes the cause.
func (e *FlowError) Unwrap() error { return e.Err }

// serverMessenger is implemented by gateway errors that carry the server's text.
type serverMessenger interface {
	ServerMessage() string
}

// messageOf returns the server's text carried by err, or fallback.
func messageOf(err error, fallback string) string {
	var sm serverMessenger
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	return fallback
}

// fail wraps err in a FlowError with the server message or fallback.
func fail(err error, fallback string) error {
	return &FlowError{Message: messageOf(err, fallback), Err: err}
}
