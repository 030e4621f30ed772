package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type IdentifierChangeVerifyInput struct {
	Code    string `validate:"required,otpcode"`
	Session entity.FlowSession
}

type IdentifierChangeVerifyOutput struct {
	User entity.User
}

// IdentifierChangeVerify completes an identifier change. A correct code
// proves the new target is reachable by the caller, so the matching field is
// overwritten and its verified flag set in one step.
func (s *Usecase) IdentifierChangeVerify(ctx context.Context, in IdentifierChangeVerifyInput) (*IdentifierChangeVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "IdentifierChangeVerify")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	target, err := in.Session.PendingIdentifierChange()
	if err != nil {
		slog.WarnContext(ctx, "identifier change verify without pending flow", "user_id", clm.UserID)
		return nil, goerror.NewBusiness(msgInvalidOTP, goerror.CodeInvalidInput)
	}

	if err := s.verifyChallenge(ctx, target, in.Code, entity.PurposeChangeIdentifier); err != nil {
		return nil, err
	}

	if err := s.repoDB.UpdateUserIdentifier(ctx, clm.UserID, target); err != nil {
		slog.ErrorContext(ctx, "failed to update identifier", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	user, err := s.repoDB.GetUserByID(ctx, clm.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("User not found.", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load updated profile", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &IdentifierChangeVerifyOutput{User: *user}, nil
}
