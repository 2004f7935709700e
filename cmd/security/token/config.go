package token

import (
	"os"
	"strings"
	"time"
)

const (
	// SecretEnvKey is the env var holding the token signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SecretEnvKey = "FD_JWT_SECRET"

	// MinSecretBytes is the minimum HMAC-SHA256 secret size.
	MinSecretBytes = 32

	DefaultIssuer = "fooddecider"
	DefaultTTL    = 7 * 24 * time.Hour
	maxTTL        = 90 * 24 * time.Hour
)

// Config is the construction-time configuration of a Manager.
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	// Leeway tolerates small clock differences on iat/exp checks.
	Leeway time.Duration
}

// DefaultConfig returns defaults without a secret; callers must set Secret.
func DefaultConfig() Config {
	return Config{
		Issuer: DefaultIssuer,
		TTL:    DefaultTTL,
	}
}

// SecretFromEnv returns the configured signing secret (trimmed), enforcing a minimum byte length.
// If the env var is missing/blank -> ErrSecretMissing.
// If too short -> ErrSecretTooShort.
func SecretFromEnv(minBytes int) ([]byte, error) {
	raw := strings.TrimSpace(os.Getenv(SecretEnvKey))
	if raw == "" {
		return nil, ErrSecretMissing
	}
	// Length is measured in bytes because the key is used as raw bytes.
	b := []byte(raw)
	if minBytes > 0 && len(b) < minBytes {
		return nil, ErrSecretTooShort
	}
	return b, nil
}

// FromEnv loads the token configuration.
//
// Required:
//   - FD_JWT_SECRET (>= MinSecretBytes bytes)
//
// Optional:
//   - FD_JWT_ISSUER
//   - FD_JWT_TTL (Go duration, capped at 90 days)
//   - FD_JWT_LEEWAY (Go duration)
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	secret, err := SecretFromEnv(MinSecretBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.Secret = secret

	if v := strings.TrimSpace(os.Getenv("FD_JWT_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	if v := strings.TrimSpace(os.Getenv("FD_JWT_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 || d > maxTTL {
			return Config{}, ErrConfig
		}
		cfg.TTL = d
	}

	if v := strings.TrimSpace(os.Getenv("FD_JWT_LEEWAY")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 || d > time.Minute {
			return Config{}, ErrConfig
		}
		cfg.Leeway = d
	}

	return cfg, nil
}
