package session

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fooddecider/cmd/internal/httpx"
	"fooddecider/cmd/security/token"
)

var (
	// ErrNoToken means the request carried no bearer token.
	ErrNoToken = errors.New("no bearer token")

	// ErrInvalidToken means a token was present but failed verification.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier checks a token string and returns its claims.
// *token.Manager satisfies it.
type Verifier interface {
	Verify(tok string) (token.Claims, error)
}

// Outcome labels reported to the observer.
const (
	OutcomeOK        = "ok"
	OutcomeMissing   = "missing"
	OutcomeInvalid   = "invalid"
	OutcomeAnonymous = "anonymous"
)

// Observer is notified once per gated request with the policy name
// ("require" or "optional") and the outcome.
type Observer func(policy, outcome string)

// Gate authenticates requests from an "Authorization: Bearer <token>" header.
type Gate struct {
	verifier Verifier
	log      *slog.Logger
	observe  Observer
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithObserver reports gate outcomes (metrics).
func WithObserver(o Observer) GateOption {
	return func(g *Gate) {
		if o != nil {
			g.observe = o
		}
	}
}

// NewGate builds a Gate around v.
func NewGate(v Verifier, log *slog.Logger, opts ...GateOption) *Gate {
	if log == nil {
		log = slog.Default()
	}
	g := &Gate{verifier: v, log: log, observe: func(string, string) {}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate extracts and verifies the bearer token of r.
// It returns ErrNoToken or ErrInvalidToken on failure.
func (g *Gate) Authenticate(r *http.Request) (token.Claims, error) {
	raw, ok := BearerToken(r)
	if !ok {
		return token.Claims{}, ErrNoToken
	}
	claims, err := g.verifier.Verify(raw)
	if err != nil {
		return token.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Require rejects requests without a valid token.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.Authenticate(r)
		switch {
		case errors.Is(err, ErrNoToken):
			g.observe("require", OutcomeMissing)
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthorized, "Access token required")
			return
		case err != nil:
			g.observe("require", OutcomeInvalid)
			g.log.Debug("auth.gate.rejected", "path", r.URL.Path)
			httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeInvalidToken, "Invalid or expired token")
			return
		}
		g.observe("require", OutcomeOK)
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Optional attaches claims when a valid token is present and otherwise
// continues anonymously. It never rejects.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.Authenticate(r)
		if err != nil {
			g.observe("optional", OutcomeAnonymous)
			next.ServeHTTP(w, r)
			return
		}
		g.observe("optional", OutcomeOK)
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
// The scheme is matched exactly; anything else counts as no token.
func BearerToken(r *http.Request) (string, bool) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}
	return tok, true
}
