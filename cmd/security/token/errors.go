package token

import "errors"

// Public, stable errors for callers.
var (
	ErrSecretMissing  = errors.New("token signing secret missing")
	ErrSecretTooShort = errors.New("token signing secret too short")
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidClaims  = errors.New("invalid token claims")
	ErrConfig         = errors.New("invalid token config")
)
