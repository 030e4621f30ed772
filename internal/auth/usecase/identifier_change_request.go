package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type IdentifierChangeRequestInput struct {
	Target string `validate:"required,max=254"`
}

type IdentifierChangeRequestOutput struct {
	Session entity.FlowSession
}

// IdentifierChangeRequest starts changing the authenticated user's email or
// phone number. The code goes to the new target; owning the account is not
// enough, the caller must prove possession of the identifier being claimed.
func (s *Usecase) IdentifierChangeRequest(ctx context.Context, in IdentifierChangeRequestInput) (*IdentifierChangeRequestOutput, error) {
	ctx, span := s.startSpan(ctx, "IdentifierChangeRequest")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	target, err := entity.NormalizeTarget(in.Target)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "target", "must be a valid email address or phone number")
	}

	owner, err := s.repoDB.GetUserByTarget(ctx, target)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to look up target", "error", err)
		return nil, goerror.NewServer(err)
	}
	if owner != nil && owner.ID != clm.UserID {
		return nil, goerror.NewBusiness("This identifier is already in use.", goerror.CodeInvalidInput)
	}

	if err := s.issueChallenge(ctx, target, entity.PurposeChangeIdentifier); err != nil {
		return nil, err
	}

	return &IdentifierChangeRequestOutput{Session: entity.NewIdentifierChangeFlow(target)}, nil
}
