package password

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"FD_PASSWORD_MIN_LEN", "FD_PASSWORD_MAX_LEN", "FD_PASSWORD_REJECT_VERY_WEAK",
	"FD_ARGON2_MEMORY_KIB", "FD_ARGON2_ITERATIONS", "FD_ARGON2_PARALLELISM",
	"FD_ARGON2_SALT_LEN", "FD_ARGON2_KEY_LEN",
}

func TestFromEnv(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		check   func(t *testing.T, cfg Config)
		wantErr string
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, DefaultConfig(), cfg)
				assert.Equal(t, 6, cfg.Policy.MinLength)
			},
		},
		{
			name: "overrides",
			env: map[string]string{
				"FD_PASSWORD_MIN_LEN": "10", "FD_PASSWORD_MAX_LEN": "200", "FD_PASSWORD_REJECT_VERY_WEAK": "true",
				"FD_ARGON2_MEMORY_KIB": "32768", "FD_ARGON2_ITERATIONS": "4", "FD_ARGON2_PARALLELISM": "2",
				"FD_ARGON2_SALT_LEN": "24", "FD_ARGON2_KEY_LEN": " 32 ",
			},
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Policy{MinLength: 10, MaxLength: 200, RejectVeryWeak: true}, cfg.Policy)
				assert.Equal(t, Argon2idParams{MemoryKiB: 32768, Iterations: 4, Parallelism: 2, SaltLength: 24, KeyLength: 32}, cfg.Params)
			},
		},
		{
			name:    "min above max",
			env:     map[string]string{"FD_PASSWORD_MIN_LEN": "20", "FD_PASSWORD_MAX_LEN": "10"},
			wantErr: "min_len(20) > max_len(10)",
		},
		{
			name:    "memory below floor",
			env:     map[string]string{"FD_ARGON2_MEMORY_KIB": "1024"},
			wantErr: "FD_ARGON2_MEMORY_KIB: out of range",
		},
		{
			name:    "parallelism not a number",
			env:     map[string]string{"FD_ARGON2_PARALLELISM": "many"},
			wantErr: "FD_ARGON2_PARALLELISM: not an unsigned integer",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"FD_PASSWORD_REJECT_VERY_WEAK": "sometimes"},
			wantErr: "FD_PASSWORD_REJECT_VERY_WEAK",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range envKeys {
				t.Setenv(k, "") // restores the original value after the test
				require.NoError(t, os.Unsetenv(k))
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := FromEnv()
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
