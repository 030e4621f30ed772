// Package event defines the payloads exchanged between modules over the
// message broker. Producers and consumers share these types so the wire
// format has a single owner.
package event

// Topic names. Stable identifiers; changing one orphans in-flight messages.
const (
	TopicOTPIssued       = "auth.otp.issued"
	TopicPasswordChanged = "auth.password.changed"
)

// OTPIssued is published when a verification code has been generated and
// needs to reach its target. The code travels only over the broker, never
// back to the HTTP caller.
type OTPIssued struct {
	Target  string `json:"target"`
	Channel string `json:"channel"`
	Purpose string `json:"purpose"`
	Code    string `json:"code"`
}

// PasswordChanged is published after a password reset completes, so the
// account owner can be warned about the change.
type PasswordChanged struct {
	UserID int64  `json:"user_id"`
	Target string `json:"target"`
	// Channel names the medium the notification should go out on.
	Channel string `json:"channel"`
}
