package identity

import (
	"context"
	"time"
)

// Account is the canonical security principal.
// PasswordHash is opaque and must never leave the service layer.
type Account struct {
	ID           string
	Email        string
	EmailNorm    string
	PasswordHash string
	DisplayName  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateAccountInput describes a new account. PasswordHash is already hashed.
type CreateAccountInput struct {
	Email        string
	PasswordHash string
	DisplayName  *string
	Now          time.Time
}

// Store is the credential persistence boundary.
//
// Create must reject a second account with the same normalized email with an
// *Error of kind ErrConflict with Field "email", even when two creates race.
type Store interface {
	Create(ctx context.Context, in CreateAccountInput) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string, now time.Time) error
}

func (in CreateAccountInput) normalize(op string) (CreateAccountInput, string, error) {
	out := in
	out.Email = trimSpace(in.Email)
	if out.Email == "" {
		return CreateAccountInput{}, "", invalid(op, "email is required")
	}
	if trimSpace(in.PasswordHash) == "" {
		return CreateAccountInput{}, "", invalid(op, "password hash is required")
	}
	out.DisplayName = normalizeDisplayName(in.DisplayName)
	if out.Now.IsZero() {
		out.Now = time.Now().UTC()
	}
	return out, NormalizeEmail(out.Email), nil
}
