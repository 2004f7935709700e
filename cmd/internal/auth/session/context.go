package session

import (
	"context"

	"fooddecider/cmd/security/token"
)

type claimsKey struct{}

// WithClaims returns a copy of ctx carrying verified token claims.
func WithClaims(ctx context.Context, c token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the claims attached by the gate, if any.
func ClaimsFrom(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(token.Claims)
	return c, ok && c.AccountID != ""
}

// AccountID returns the authenticated account id or "" for anonymous requests.
func AccountID(ctx context.Context) string {
	c, _ := ClaimsFrom(ctx)
	return c.AccountID
}
