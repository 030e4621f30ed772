package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type RefreshTokenInput struct {
	RefreshToken string `validate:"required"`
}

type RefreshTokenOutput struct {
	AccessToken  string
	RefreshToken string
}

// RefreshToken exchanges a live refresh token for a fresh credential pair.
// The presented token is revoked in the same call, so each one works once.
func (s *Usecase) RefreshToken(ctx context.Context, in RefreshTokenInput) (*RefreshTokenOutput, error) {
	ctx, span := s.startSpan(ctx, "RefreshToken")
	defer span.End()

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
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up refresh token", "error", err)
		return nil, goerror.NewServer(err)
	}

	if stored.Revoked || !s.clock.Now().Before(stored.ExpiresAt) {
		slog.WarnContext(ctx, "refresh with dead token", "user_id", stored.UserID)
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}

	user, err := s.repoDB.GetUserByID(ctx, stored.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up user", "user_id", stored.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.RevokeRefreshToken(ctx, stored.ID); err != nil {
		slog.ErrorContext(ctx, "failed to revoke refresh token", "user_id", stored.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	access, refresh, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RefreshTokenOutput{AccessToken: access, RefreshToken: refresh}, nil
}
