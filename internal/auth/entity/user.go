package entity

import "time"

// User is an account identified by email, phone number, or both. Registration
// through an OTP flow creates a passwordless user; a password can be set later
// through the reset flow.
type User struct {
	ID            int64
	Email         string
	PhoneNumber   string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Identifier returns the user's primary identifier, preferring email.
func (u User) Identifier() string {
	if u.Email != "" {
		return u.Email
	}
	return u.PhoneNumber
}

// Verified reports whether at least one identifier has proven possession.
func (u User) Verified() bool {
	return u.EmailVerified || u.PhoneVerified
}

// RefreshToken is the at-rest form of an opaque refresh credential. Only the
// HMAC of the client-held token is stored.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
}
