package api

import (
	"errors"
	"fmt"
)

// AuthError indicates the control service rejected the credential
// (unauthorized or forbidden). Callers recover by clearing the session
// and sending the operator back to login; it is never retried.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("control service rejected credentials (status %d)", e.Status)
}

// RequestError indicates any other non-success response. The body is
// kept (truncated) so the operator sees what the server complained about.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("control service returned status %d", e.Status)
	}
	return fmt.Sprintf("control service returned status %d: %s", e.Status, e.Body)
}

// NetworkError indicates a transport-level failure before any response
// was interpreted.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("control service unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsAuth reports whether err is (or wraps) an AuthError.
func IsAuth(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
