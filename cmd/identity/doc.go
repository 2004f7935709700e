// Package identity owns the account record: the credential store boundary,
// its Postgres and in-memory implementations, identity normalization and
// the typed errors callers map to API status codes.
//
// Stores never hash or verify credentials; they persist the opaque hash
// produced by cmd/security/password.
package identity
