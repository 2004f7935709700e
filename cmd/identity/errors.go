package identity

import (
	"errors"
	"strings"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("account not found")
	ErrConflict     = errors.New("account already exists")
)

// Error is returned by every Store method that fails for a domain reason.
// Field names the conflicting column for ErrConflict; Detail never carries secrets.
type Error struct {
	Op     string
	Kind   error
	Field  string
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	switch {
	case e.Field != "":
		b.WriteString(" (")
		b.WriteString(e.Field)
		b.WriteString(")")
	case e.Detail != "":
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func invalid(op, detail string) error { return &Error{Op: op, Kind: ErrInvalidInput, Detail: detail} }

func notFound(op string) error { return &Error{Op: op, Kind: ErrNotFound} }

func conflict(op, field string) error { return &Error{Op: op, Kind: ErrConflict, Field: field} }

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err is ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }
