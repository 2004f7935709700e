// Package token issues and verifies the signed session tokens handed to clients.
//
// Tokens are HS256 JWTs carrying the account id (sub), the account email and
// the usual iat/exp/iss registered claims. The signing secret is immutable
// configuration supplied at construction time.
//
// Every verification failure (bad signature, wrong algorithm, malformed
// payload, expiry, wrong issuer) collapses to ErrInvalidToken so callers
// cannot distinguish a forged token from an expired one.
//
// Environment:
//   - FD_JWT_SECRET: signing secret, at least MinSecretBytes bytes.
//   - FD_JWT_ISSUER, FD_JWT_TTL: optional overrides.
package token
