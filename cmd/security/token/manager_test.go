package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestManager(t *testing.T, clock *fakeClock, secret []byte) *Manager {
	t.Helper()
	m, err := NewManager(Config{Secret: secret, Issuer: "fd-test", TTL: time.Hour}, WithClock(clock.Now))
	require.NoError(t, err)
	return m
}

func TestManager_IssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock, testSecret)

	issued, err := m.Issue(Subject{AccountID: "01HZX", Email: "a@x.io"}, 0)
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(time.Hour), issued.ExpiresAt)

	claims, err := m.Verify(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "01HZX", claims.AccountID)
	assert.Equal(t, "a@x.io", claims.Email)
	assert.Equal(t, clock.t, claims.IssuedAt)
	assert.Equal(t, issued.ExpiresAt, claims.ExpiresAt)
}

func TestManager_Verify_ExpiredAndForeignFailIdentically(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock, testSecret)

	issued, err := m.Issue(Subject{AccountID: "acc-1", Email: "a@x.io"}, 30*time.Minute)
	require.NoError(t, err)

	// Exactly at expiry the token is no longer valid.
	clock.t = clock.t.Add(30 * time.Minute)
	_, expiredErr := m.Verify(issued.Token)
	require.ErrorIs(t, expiredErr, ErrInvalidToken)

	clock.t = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	other := newTestManager(t, clock, []byte("ffffffffffffffffffffffffffffffff"))
	foreign, err := other.Issue(Subject{AccountID: "acc-1", Email: "a@x.io"}, 0)
	require.NoError(t, err)

	_, foreignErr := m.Verify(foreign.Token)
	require.ErrorIs(t, foreignErr, ErrInvalidToken)
	assert.Equal(t, expiredErr, foreignErr)
}

func TestManager_Verify_Rejects(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock, testSecret)

	issued, err := m.Issue(Subject{AccountID: "acc-1"}, 0)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "acc-1",
		Issuer:    "fd-test",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "fd-test",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "acc-1",
		Issuer:  "fd-test",
	}).SignedString(testSecret)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "acc-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	cases := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"tampered":        parts[0] + "." + parts[1] + "x." + parts[2],
		"unsigned":        parts[0] + "." + parts[1] + ".",
		"other algorithm": hs512,
		"no subject":      noSubject,
		"no expiry":       noExpiry,
		"wrong issuer":    wrongIssuer,
		"oversized":       strings.Repeat("a", 5000),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.True(t, IsInvalid(err))
		})
	}
}

func TestManager_Issue_RequiresSubject(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	m := newTestManager(t, clock, testSecret)

	_, err := m.Issue(Subject{Email: "a@x.io"}, 0)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestNewManager_SecretRequired(t *testing.T) {
	_, err := NewManager(Config{})
	assert.ErrorIs(t, err, ErrSecretMissing)

	_, err = NewManager(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSecretTooShort)

	m, err := NewManager(Config{Secret: testSecret})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, m.TTL())
}

func TestFromEnv(t *testing.T) {
	t.Setenv(SecretEnvKey, "")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrSecretMissing)

	t.Setenv(SecretEnvKey, "  too-short  ")
	_, err = FromEnv()
	assert.ErrorIs(t, err, ErrSecretTooShort)

	t.Setenv(SecretEnvKey, string(testSecret))
	t.Setenv("FD_JWT_ISSUER", "fd-prod")
	t.Setenv("FD_JWT_TTL", "24h")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Secret)
	assert.Equal(t, "fd-prod", cfg.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.TTL)

	t.Setenv("FD_JWT_TTL", "-1h")
	_, err = FromEnv()
	assert.ErrorIs(t, err, ErrConfig)
}
