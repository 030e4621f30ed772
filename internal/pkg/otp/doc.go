// Package otp implements one-time password challenges: cryptographically
// random numeric codes stored in a TTL cache and verified with brute-force
// protection.
//
// A challenge is keyed by its target (normalized email or phone number) and
// bound to a purpose; a code issued for one purpose can never satisfy another.
// The Engine enforces the resend cooldown (at most one live challenge per
// target), caps failed attempts, and consumes a challenge exactly once.
package otp
