package anylist

import "github.com/lunarhue/anylist/internal/errs"

// Error taxonomy, re-exported so callers can match with errors.Is/As.
var (
	// ErrNotAuthenticated is returned for authenticated calls made before
	// Login completes.
	ErrNotAuthenticated = errs.ErrNotAuthenticated

	// ErrImmutableField is returned when rewriting a write-once field.
	ErrImmutableField = errs.ErrImmutableField
)

type (
	// AuthError indicates bad credentials, or a revoked refresh token
	// whose fallback credential exchange also failed.
	AuthError = errs.AuthError

	// DecodeError indicates a malformed server payload.
	DecodeError = errs.DecodeError

	// ValidationError indicates an invalid local field assignment,
	// raised before any network activity.
	ValidationError = errs.ValidationError

	// StatusError indicates a non-2xx response unrelated to
	// authentication.
	StatusError = errs.StatusError
)
