package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the failure taxonomy of the identity core.
// Transport adapters map these to wire status codes; the core never
// returns transport-specific types.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountInactive        = errors.New("account is inactive")
	ErrInvalidToken           = errors.New("invalid token")
	ErrNotAuthorized          = errors.New("not authorized")
	ErrCannotSelfDeactivate   = errors.New("administrators cannot deactivate themselves")
	ErrIdentityNotFound       = errors.New("identity not found")
	ErrStorage                = errors.New("storage failure")
)

// ValidationError reports malformed input on a specific field. It is a
// distinct type so adapters can surface field and reason verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// StorageError wraps an underlying persistence failure so callers can match
// it with errors.Is(err, ErrStorage) while retaining the cause.
func StorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
