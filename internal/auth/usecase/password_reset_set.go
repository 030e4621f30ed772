package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
	"github.com/nubitera/authcore/internal/pkg/signer"
	"github.com/nubitera/authcore/internal/shared/event"
)

type PasswordResetSetInput struct {
	ResetToken      string `validate:"required"`
	Password        string `validate:"required,password"`
	PasswordConfirm string `validate:"required"`
}

type PasswordResetSetOutput struct{}

// PasswordResetSet finishes the reset flow: it redeems the continuation
// token and overwrites the password. Expired and tampered tokens are told
// apart in the logs but answered identically.
func (s *Usecase) PasswordResetSet(ctx context.Context, in PasswordResetSetInput) (*PasswordResetSetOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordResetSet")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	// Cheapest check first; no token is touched for a mistyped confirmation.
	if in.Password != in.PasswordConfirm {
		return nil, goerror.NewInvalidInput(nil, "password_confirm", "passwords do not match")
	}

	maxAge := s.cfg.GetSecond("modules.auth.reset_token_max_age_seconds")
	if maxAge <= 0 {
		maxAge = 5 * time.Minute
	}

	payload, err := s.signer.Unsign(in.ResetToken, maxAge)
	if err != nil {
		if errors.Is(err, signer.ErrExpired) {
			slog.WarnContext(ctx, "reset token expired")
		} else {
			slog.WarnContext(ctx, "reset token rejected", "error", err)
		}
		return nil, goerror.NewBusiness("Invalid or expired reset token.", goerror.CodeInvalidInput)
	}

	userID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		slog.WarnContext(ctx, "reset token carries malformed identity")
		return nil, goerror.NewBusiness("Invalid or expired reset token.", goerror.CodeInvalidInput)
	}

	user, err := s.repoDB.GetUserByID(ctx, userID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user vanished before password reset completed", "user_id", userID)
		return nil, goerror.NewBusiness("User not found.", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up user", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	passwordHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.UpdateUserPassword(ctx, user.ID, string(passwordHash)); err != nil {
		slog.ErrorContext(ctx, "failed to update password", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		channel := entity.ChannelEmail
		if user.Email == "" {
			channel = entity.ChannelSMS
		}
		return s.repoMessaging.PublishPasswordChanged(ctx, event.PasswordChanged{
			UserID:  user.ID,
			Target:  user.Identifier(),
			Channel: channel.String(),
		})
	})

	return &PasswordResetSetOutput{}, nil
}
