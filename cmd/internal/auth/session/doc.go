// Package session authenticates HTTP requests from their bearer token.
//
// One verification primitive (Gate.Authenticate) backs two policies:
// Require rejects the request with 401 when no valid token is present, and
// Optional lets it through anonymously. Both attach the verified claims to the
// request context for handlers to read with ClaimsFrom or AccountID.
package session
