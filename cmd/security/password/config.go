package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int
	MaxLength int
	// If true, enable an extra, minimal weak-pattern rejection.
	RejectVeryWeak bool
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams
	Policy Policy
}

// DefaultConfig returns the production baseline.
// MinLength matches the registration contract of the mobile client (6 characters).
func DefaultConfig() Config {
	// Parallelism follows the host but is clamped to [1..4] for container limits.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024,      // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		Policy: Policy{
			MinLength:      6,
			MaxLength:      256,
			RejectVeryWeak: false,
		},
	}
}

// FromEnv starts from DefaultConfig and applies the FD_PASSWORD_* and
// FD_ARGON2_* overrides that are set. Out-of-range values are errors.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	overrides := []struct {
		key   string
		apply func(string) error
	}{
		{"FD_PASSWORD_MIN_LEN", intSetter(&cfg.Policy.MinLength, 1, 1024)},
		{"FD_PASSWORD_MAX_LEN", intSetter(&cfg.Policy.MaxLength, 1, 4096)},
		{"FD_PASSWORD_REJECT_VERY_WEAK", func(v string) (err error) {
			cfg.Policy.RejectVeryWeak, err = strconv.ParseBool(v)
			return err
		}},
		{"FD_ARGON2_MEMORY_KIB", uintSetter(&cfg.Params.MemoryKiB, 8*1024, 1024*1024)},
		{"FD_ARGON2_ITERATIONS", uintSetter(&cfg.Params.Iterations, 1, 20)},
		{"FD_ARGON2_PARALLELISM", uintSetter(&cfg.Params.Parallelism, 1, 64)},
		{"FD_ARGON2_SALT_LEN", uintSetter(&cfg.Params.SaltLength, 8, 64)},
		{"FD_ARGON2_KEY_LEN", uintSetter(&cfg.Params.KeyLength, 16, 64)},
	}

	for _, o := range overrides {
		v, ok := os.LookupEnv(o.key)
		if !ok {
			continue
		}
		if err := o.apply(strings.TrimSpace(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", o.key, err)
		}
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf("password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength, cfg.Policy.MaxLength)
	}
	return cfg, nil
}

func intSetter(dst *int, lo, hi int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("not an integer")
		}
		if n < lo || n > hi {
			return fmt.Errorf("out of range [%d..%d]", lo, hi)
		}
		*dst = n
		return nil
	}
}

func uintSetter[T uint8 | uint32](dst *T, lo, hi T) func(string) error {
	return func(v string) error {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("not an unsigned integer")
		}
		if n < uint64(lo) || n > uint64(hi) {
			return fmt.Errorf("out of range [%d..%d]", lo, hi)
		}
		*dst = T(n) // #nosec G115 -- bounded by hi above.
		return nil
	}
}
