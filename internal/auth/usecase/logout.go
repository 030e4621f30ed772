package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type LogoutInput struct {
	RefreshToken string `validate:"required"`
}

type LogoutOutput struct{}

// Logout revokes the presented refresh token. The access token stays valid
// until its own expiry; only the long-lived credential is withdrawn.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) (*LogoutOutput, error) {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	tokenHash, err := s.hmac.Hash(in.RefreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	stored, err := s.repoDB.GetRefreshTokenByHash(ctx, string(tokenHash))
	if errors.Is(err, goerror.ErrNotFound) {
		// Already gone; logging out twice is not an error worth surfacing.
		return &LogoutOutput{}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if stored.UserID != clm.UserID {
		slog.WarnContext(ctx, "logout with another user's token", "user_id", clm.UserID)
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	if err := s.repoDB.RevokeRefreshToken(ctx, stored.ID); err != nil {
		slog.ErrorContext(ctx, "failed to revoke refresh token", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LogoutOutput{}, nil
}
