package app

import (
	"errors"
	"fmt"

	"legalgpt/pkg/legal"
)

var (
	// ErrInvalidCredentials is shown to end users unchanged. It must not reveal
	// whether the email exists.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrDuplicateEmail     = errors.New("User already exists")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("Forbidden")

	// ErrGuidanceUnavailable is returned when the completion provider fails.
	ErrGuidanceUnavailable = legal.ErrGuidanceUnavailable

	ErrProvisioningFailed = errors.New("sign-in could not be completed")
	ErrStorageDisabled    = errors.New("document archive is not configured")
)

// ValidationError reports a malformed or incomplete request. Message is
// returned to the client as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// notFound wraps ErrNotFound so the message names the entity ("Notice not found").
func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}
