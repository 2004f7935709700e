package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Subject is the identity bound into an issued token.
type Subject struct {
	AccountID string
	Email     string
}

// Claims is the verified content of a session token.
type Claims struct {
	AccountID string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issued is a freshly signed token and its expiry.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// jwtClaims is the wire form: registered claims plus the account email.
type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 session tokens.
// It is safe for concurrent use; all fields are immutable after construction.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewManager builds a Manager. A missing secret is a configuration error the
// process must not start with.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrSecretMissing
	}
	if len(cfg.Secret) < MinSecretBytes {
		return nil, ErrSecretTooShort
	}

	m := &Manager{
		secret: append([]byte(nil), cfg.Secret...),
		issuer: strings.TrimSpace(cfg.Issuer),
		ttl:    cfg.TTL,
		leeway: cfg.Leeway,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if m.issuer == "" {
		m.issuer = DefaultIssuer
	}
	if m.ttl <= 0 {
		m.ttl = DefaultTTL
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// TTL returns the default token lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a token for sub valid for ttl (the configured default when ttl <= 0).
func (m *Manager) Issue(sub Subject, ttl time.Duration) (Issued, error) {
	if strings.TrimSpace(sub.AccountID) == "" {
		return Issued{}, ErrInvalidClaims
	}
	if ttl <= 0 {
		ttl = m.ttl
	}

	now := m.now()
	iat := jwt.NewNumericDate(now)
	exp := jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: sub.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub.AccountID,
			Issuer:    m.issuer,
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
	})

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ExpiresAt: exp.UTC()}, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the claims.
// Any failure is reported as ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	// Sanity bound against pathological inputs.
	if tokenString == "" || len(tokenString) > 4096 {
		return Claims{}, ErrInvalidToken
	}

	var wire jwtClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &wire,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(wire.Subject) == "" || wire.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{
		AccountID: wire.Subject,
		Email:     wire.Email,
		ExpiresAt: wire.ExpiresAt.UTC(),
	}
	if wire.IssuedAt != nil {
		out.IssuedAt = wire.IssuedAt.UTC()
	}
	return out, nil
}

// IsInvalid reports whether err is a token verification failure.
func IsInvalid(err error) bool { return errors.Is(err, ErrInvalidToken) }
