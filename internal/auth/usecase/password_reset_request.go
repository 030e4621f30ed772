package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type PasswordResetRequestInput struct {
	Target string `validate:"required,max=254"`
}

type PasswordResetRequestOutput struct {
	Session entity.FlowSession
}

// PasswordResetRequest starts a reset flow. Unlike register and login, an
// unknown target is reported explicitly here.
func (s *Usecase) PasswordResetRequest(ctx context.Context, in PasswordResetRequestInput) (*PasswordResetRequestOutput, error) {
	ctx, span := s.startSpan(ctx, "PasswordResetRequest")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	target, err := entity.NormalizeTarget(in.Target)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "target", "must be a valid email address or phone number")
	}

	if _, err := s.repoDB.GetUserByTarget(ctx, target); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, goerror.NewBusiness("No account found with these details.", goerror.CodeInvalidInput)
		}
		slog.ErrorContext(ctx, "failed to look up target", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.issueChallenge(ctx, target, entity.PurposeResetPassword); err != nil {
		return nil, err
	}

	return &PasswordResetRequestOutput{Session: entity.NewResetFlow(target)}, nil
}
