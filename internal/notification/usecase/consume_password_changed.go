package usecase

import (
	"context"
	"log/slog"

	"github.com/nubitera/authcore/internal/pkg/mail"
)

type ConsumePasswordChangedInput struct {
	UserID  int64  `validate:"required,gt=0"`
	Target  string `validate:"required"`
	Channel string `validate:"required,oneof=email sms"`
}

// ConsumePasswordChanged warns the account owner that their password was
// reset, so a hijacked reset flow does not go unnoticed.
func (s *Usecase) ConsumePasswordChanged(ctx context.Context, in ConsumePasswordChangedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumePasswordChanged")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "dropping malformed password changed event", "error", err)
		return nil
	}

	if in.Channel == "sms" {
		slog.InfoContext(ctx, "sms password changed notice requested", "user_id", in.UserID)
		return nil
	}

	if err := s.mailer.Send(ctx, mail.Message{
		To:       []string{in.Target},
		Subject:  "Your password was changed",
		TextBody: "The password for your account was just changed.\n\nIf this was you, no action is needed. If not, reset your password immediately.",
		HTMLBody: "<p>The password for your account was just changed.</p><p>If this was you, no action is needed. If not, reset your password immediately.</p>",
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send password changed email", "user_id", in.UserID, "error", err)
		return err
	}

	return nil
}
