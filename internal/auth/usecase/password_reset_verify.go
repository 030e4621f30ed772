package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type PasswordResetVerifyInput struct {
	Code    string `validate:"required,otpcode"`
	Session entity.FlowSession
}

type PasswordResetVerifyOutput struct {
	// ResetToken carries the remaining flow state; the server keeps nothing.
	ResetToken string
}

// PasswordResetVerify exchanges a correct reset code for a signed, time-boxed
// continuation token. From here the caller, not the session, carries the flow.
func (s *Usecase) PasswordResetVerify(ctx context.Context, in PasswordResetVerifyInput) (*PasswordResetVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordResetVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	target, err := in.Session.PendingReset()
	if err != nil {
		slog.WarnContext(ctx, "reset verify without pending flow")
		return nil, goerror.NewBusiness(msgInvalidOTP, goerror.CodeInvalidInput)
	}

	if err := s.verifyChallenge(ctx, target, in.Code, entity.PurposeResetPassword); err != nil {
		return nil, err
	}

	user, err := s.repoDB.GetUserByTarget(ctx, target)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "user vanished between reset request and verify")
		return nil, goerror.NewBusiness("User not found.", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up user", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &PasswordResetVerifyOutput{
		ResetToken: s.signer.Sign(strconv.FormatInt(user.ID, 10)),
	}, nil
}
