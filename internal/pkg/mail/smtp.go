package mail

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
)

var (
	// ErrSMTPHostPortRequired is returned when Host or Port is missing.
	ErrSMTPHostPortRequired = errors.New("smtp host and port are required")
	// ErrSMTPNoRecipients is returned when the message lists no recipients.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
	// ErrSMTPNoSender is returned when no sender can be determined.
	ErrSMTPNoSender = errors.New("no sender provided")
)

// SMTP is a Mail implementation backed by net/smtp.
type SMTP struct {
	addr        string
	defaultFrom string
	auth        smtp.Auth
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender when Message.From is empty.
	From string
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, ErrSMTPHostPortRequired
	}

	var auth smtp.Auth
	if cfg.Username != "" && cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTP{
		addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		defaultFrom: cfg.From,
		auth:        auth,
	}, nil
}

// Send delivers a message over SMTP.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(msg.To) == 0 {
		return ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}
	if from == "" {
		return ErrSMTPNoSender
	}

	raw, err := render(from, msg)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	return smtp.SendMail(s.addr, s.auth, from, msg.To, raw)
}

// Close implements io.Closer; net/smtp holds no long-lived connection.
func (s *SMTP) Close() error {
	return nil
}

func render(from string, msg Message) ([]byte, error) {
	var b strings.Builder

	write := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\r\n", args...)
	}

	write("From: %s", from)
	write("To: %s", strings.Join(msg.To, ", "))
	write("Subject: %s", msg.Subject)
	write("MIME-Version: 1.0")

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		boundary, err := randomBoundary()
		if err != nil {
			return nil, err
		}

		write("Content-Type: multipart/alternative; boundary=%q", boundary)
		write("")
		write("--%s", boundary)
		write("Content-Type: text/plain; charset=UTF-8")
		write("")
		write("%s", msg.TextBody)
		write("--%s", boundary)
		write("Content-Type: text/html; charset=UTF-8")
		write("")
		write("%s", msg.HTMLBody)
		write("--%s--", boundary)

	case msg.HTMLBody != "":
		write("Content-Type: text/html; charset=UTF-8")
		write("")
		write("%s", msg.HTMLBody)

	default:
		write("Content-Type: text/plain; charset=UTF-8")
		write("")
		write("%s", msg.TextBody)
	}

	return []byte(b.String()), nil
}

func randomBoundary() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mail: generate boundary: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
