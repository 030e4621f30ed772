// Package mail abstracts outbound email so the rest of the service never
// touches a concrete provider. Use cases depend on the Mail interface and a
// provider-agnostic Message; the SMTP implementation lives alongside it.
package mail

import (
	"context"
	"io"
)

// Message is an email payload.
type Message struct {
	// From is an optional explicit sender; when empty the implementation's
	// configured default applies.
	From string
	// To lists the recipients.
	To []string
	// Subject is the subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody, when set, is sent as an HTML alternative to TextBody.
	HTMLBody string
}

// Mail sends email messages.
type Mail interface {
	io.Closer
	// Send dispatches msg through the underlying provider.
	Send(ctx context.Context, msg Message) error
}
