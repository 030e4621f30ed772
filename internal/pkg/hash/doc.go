// Package hash provides helpers for hashing and verifying secrets.
//
// Bcrypt is used for passwords; HMAC-SHA256 is used to hash opaque tokens
// (refresh tokens) before they are stored, so a database leak does not leak
// usable credentials.
package hash
