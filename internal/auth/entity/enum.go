package entity

// Purpose scopes an OTP challenge to the flow that requested it. A code
// issued for one purpose never satisfies another.
type Purpose string

const (
	PurposeUnknown          Purpose = ""
	PurposeRegister         Purpose = "register"
	PurposeLogin            Purpose = "login"
	PurposeResetPassword    Purpose = "reset_password"
	PurposeChangeIdentifier Purpose = "change_identifier"
)

// String returns the wire representation of the purpose.
func (p Purpose) String() string {
	return string(p)
}

// ParseRequestPurpose maps the purposes a caller may request over the OTP
// endpoint. Reset and identifier-change challenges are only ever issued by
// their own flows, never directly.
func ParseRequestPurpose(s string) Purpose {
	switch s {
	case "register":
		return PurposeRegister
	case "login":
		return PurposeLogin
	default:
		return PurposeUnknown
	}
}

// Channel is the medium a target is reachable on.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// String returns the wire representation of the channel.
func (c Channel) String() string {
	return string(c)
}
