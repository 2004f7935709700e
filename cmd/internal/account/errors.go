package account

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityConflict is returned by Register when the email is taken.
	ErrIdentityConflict = errors.New("account: email already registered")

	// ErrInvalidCredentials is the single Login failure for unknown email and wrong password.
	ErrInvalidCredentials = errors.New("account: invalid credentials")

	// ErrUnauthorized means the caller has no authenticated identity.
	ErrUnauthorized = errors.New("account: unauthorized")

	// ErrNotFound means the authenticated account no longer exists.
	ErrNotFound = errors.New("account: not found")

	// ErrInvalidInput is the kind behind FieldError.
	ErrInvalidInput = errors.New("account: invalid input")
)

// FieldError rejects one input field (for example a password outside policy).
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvalidInput, e.Field, e.Message)
}

func (e FieldError) Unwrap() error { return ErrInvalidInput }
