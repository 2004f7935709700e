// Package password hashes and verifies account credentials.
//
// New hashes are Argon2id in PHC string form. Verification also accepts
// bcrypt hashes carried over from the previous backend so imported accounts
// can still sign in; callers are expected to rehash those on a successful login
// (see Config.NeedsRehash).
//
// Hash strings are treated as untrusted input during Verify: parameters far
// above the configured ones are refused instead of computed.
package password
