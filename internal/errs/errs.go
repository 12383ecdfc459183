// Package errs contains sentinel and typed errors used across layers for stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

// Common sentinels.
var (
	// ErrNotAuthenticated indicates an authenticated call was attempted before login.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrImmutableField indicates an attempt to rewrite a write-once field.
	ErrImmutableField = errors.New("immutable field")
)

// AuthError indicates failed credential exchange or token refresh.
type AuthError struct {
	Endpoint string
	Status   int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s returned %d", e.Endpoint, e.Status)
}

// DecodeError indicates a malformed server payload or a message that
// violates its schema (e.g. a missing required field).
type DecodeError struct {
	Message string // wire message name
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Message, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError indicates an invalid local field assignment. It is always
// returned synchronously, before any network activity.
type ValidationError struct {
	Field  string
	Reason string
	// Err is an optional sentinel the error matches through errors.Is,
	// e.g. ErrImmutableField for write-once rewrites.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StatusError indicates a non-2xx HTTP response unrelated to authentication.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Endpoint, e.Code)
}
