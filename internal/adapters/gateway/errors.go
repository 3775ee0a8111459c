package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for errors.Is.
var (
	ErrUnauthorized = errors.New("session invalidated by server")
	ErrNotFound     = errors.New("resource not found")
)

// AuthError is returned for any 401. By the time a caller sees it the
// credential store has been cleared and subscribers notified.
type AuthError struct {
	Method  string
	Path    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: unauthorized: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: unauthorized", e.Method, e.Path)
}

// Is matches ErrUnauthorized.
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// ServerMessage returns the server's explanation, if it sent one.
func (e *AuthError) ServerMessage() string {
	return e.Message
}

// RequestError is any other failed call: a non-2xx status, or a transport
// failure when StatusCode is 0.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
}

// Unwrap exposes the transport error, if any.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ServerMessage returns the server's explanation, if it sent one.
func (e *RequestError) ServerMessage() string {
	return e.Message
}

// Is matches ErrNotFound for 404 responses.
func (e *RequestError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Message returns the server-supplied message carried by err, or fallback.
func Message(err error, fallback string) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ae *AuthError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

// serverMessage extracts the human-readable text from an error body.
// The API uses {"error": ...}; its auth layer answers with {"msg": ...}.
func serverMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	for _, m := range []string{payload.Error, payload.Message, payload.Msg} {
		if m = strings.TrimSpace(m); m != "" {
			return m
		}
	}
	return ""
}
