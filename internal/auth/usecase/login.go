package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type LoginInput struct {
	Login    string `validate:"required,max=254"`
	Password string `validate:"required,password"`
}

type LoginOutput struct {
	UserID       int64
	AccessToken  string
	RefreshToken string
}

// Login authenticates with an identifier and password. Bad identifier, bad
// password and passwordless account all collapse into one message; only an
// unverified account is reported separately, matching the flow that created
// it.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	target, err := entity.NormalizeTarget(in.Login)
	if err != nil {
		return nil, goerror.NewBusiness("Invalid login credentials.", goerror.CodeInvalidInput)
	}

	user, err := s.repoDB.GetUserByTarget(ctx, target)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "login for unknown target")
		return nil, goerror.NewBusiness("Invalid login credentials.", goerror.CodeInvalidInput)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to look up user", "error", err)
		return nil, goerror.NewServer(err)
	}

	if user.PasswordHash == "" || !s.bcrypt.Verify(user.PasswordHash, in.Password) {
		slog.WarnContext(ctx, "login with wrong password", "user_id", user.ID)
		return nil, goerror.NewBusiness("Invalid login credentials.", goerror.CodeInvalidInput)
	}

	if !user.Verified() {
		slog.WarnContext(ctx, "login for unverified account", "user_id", user.ID)
		return nil, goerror.NewBusiness("Account not verified.", goerror.CodeInvalidInput)
	}

	access, refresh, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
