package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the single failure value for every gateway call. Status is the
// HTTP status code, or 0 when no response was received at all (network
// failure). Message carries the server-supplied text when present.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return "network error: " + e.Message
	}
	if e.Message != "" {
		return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error (%d)", e.Status)
}

// Network reports whether the failure happened before any HTTP response.
func (e *Error) Network() bool { return e.Status == 0 }

// Auth reports whether the server rejected the caller's credentials.
func (e *Error) Auth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// NotFound reports a 404 response.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// AsError unwraps err into *Error when the failure came from the gateway.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
