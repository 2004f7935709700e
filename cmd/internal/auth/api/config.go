package authapi

import (
	"strconv"
	"strings"
)

const defaultMaxBodyBytes = 1 << 20

// Config controls auth API request handling.
type Config struct {
	// TrustProxy makes audit logs take the client IP from X-Forwarded-For / X-Real-IP.
	TrustProxy   bool
	MaxBodyBytes int64
}

// DefaultConfig does not trust proxy headers and caps bodies at 1 MiB.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: defaultMaxBodyBytes}
}

// LoadConfig reads FD_AUTH_TRUST_PROXY and FD_MAX_BODY_BYTES through lookup
// (os.LookupEnv in production). Unparseable values keep the defaults.
func LoadConfig(lookup func(string) (string, bool)) Config {
	cfg := DefaultConfig()

	if v, ok := lookup("FD_AUTH_TRUST_PROXY"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.TrustProxy = b
		}
	}
	if v, ok := lookup("FD_MAX_BODY_BYTES"); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
			cfg.MaxBodyBytes = n
		}
	}
	return cfg
}
