package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nubitera/authcore/internal/pkg/mail"
)

type ConsumeOTPIssuedInput struct {
	Target  string `validate:"required"`
	Channel string `validate:"required,oneof=email sms"`
	Purpose string `validate:"required"`
	Code    string `validate:"required,otpcode"`
}

// ConsumeOTPIssued sends an issued verification code to its target. A
// malformed event is dropped rather than redelivered; a failed send is
// returned so the broker retries it.
func (s *Usecase) ConsumeOTPIssued(ctx context.Context, in ConsumeOTPIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeOTPIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "dropping malformed otp event", "error", err)
		return nil
	}

	if in.Channel == "sms" {
		// No SMS gateway is wired yet. TODO: send through the provider once
		// modules.notification.sms is configured.
		slog.InfoContext(ctx, "sms otp delivery requested", "target", in.Target, "purpose", in.Purpose)
		return nil
	}

	subject := otpSubject(in.Purpose)
	text := fmt.Sprintf("Your verification code is %s.\n\nIf you did not request this code, you can ignore this message.", in.Code)
	html := fmt.Sprintf("<p>Your verification code is <strong>%s</strong>.</p><p>If you did not request this code, you can ignore this message.</p>", in.Code)

	if err := s.mailer.Send(ctx, mail.Message{
		To:       []string{in.Target},
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "target", in.Target, "error", err)
		return err
	}

	return nil
}

func otpSubject(purpose string) string {
	switch purpose {
	case "register":
		return "Your registration code"
	case "login":
		return "Your login code"
	case "reset_password":
		return "Your password reset code"
	case "change_identifier":
		return "Confirm your new contact details"
	default:
		return "Your verification code"
	}
}
