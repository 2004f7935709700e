package app

import (
	"errors"
	"fmt"

	"fooddecider/cmd/security/token"
)

// securityError turns token configuration failures into startup messages
// that name the variable to fix. A missing secret is fatal.
func securityError(err error) error {
	switch {
	case errors.Is(err, token.ErrSecretMissing):
		return fmt.Errorf("security policy: %s is required", token.SecretEnvKey)
	case errors.Is(err, token.ErrSecretTooShort):
		return fmt.Errorf("security policy: %s is too short (min %d bytes)", token.SecretEnvKey, token.MinSecretBytes)
	default:
		return fmt.Errorf("token config: %w", err)
	}
}
