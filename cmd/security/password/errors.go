package password

import (
	"errors"
	"fmt"
)

// Policy rule kinds, matched with errors.Is.
var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrWeakPassword     = errors.New("weak password")
)

// ErrInvalidHash is returned by Verify for malformed or unsupported encodings.
var ErrInvalidHash = errors.New("invalid password hash")

// PolicyError reports which rule rejected a password and the configured bound.
type PolicyError struct {
	Rule  error
	Limit int
}

func (e *PolicyError) Error() string { return e.Rule.Error() }

func (e *PolicyError) Unwrap() error { return e.Rule }

// Message is a user-facing sentence for the rejected rule.
func (e *PolicyError) Message() string {
	switch {
	case errors.Is(e.Rule, ErrPasswordTooShort):
		return fmt.Sprintf("Password must be at least %d characters", e.Limit)
	case errors.Is(e.Rule, ErrPasswordTooLong):
		return fmt.Sprintf("Password must be at most %d characters", e.Limit)
	default:
		return "Password is too easy to guess"
	}
}
