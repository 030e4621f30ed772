package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type OTPVerifyInput struct {
	Code string `validate:"required,otpcode"`
	// Session is the flow state parked by OTPRequest.
	Session entity.FlowSession
}

type OTPVerifyOutput struct {
	UserID       int64
	AccessToken  string
	RefreshToken string
}

// OTPVerify completes a register or login flow. A correct code proves
// possession of the target: register resolves it with get-or-create, login
// with a plain lookup whose absence is a genuine 404 anomaly.
func (s *Usecase) OTPVerify(ctx context.Context, in OTPVerifyInput) (*OTPVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	target, purpose, err := in.Session.PendingOTP()
	if err != nil {
		slog.WarnContext(ctx, "otp verify without pending flow")
		return nil, goerror.NewBusiness(msgInvalidOTP, goerror.CodeInvalidInput)
	}

	if err := s.verifyChallenge(ctx, target, in.Code, purpose); err != nil {
		return nil, err
	}

	var user *entity.User
	switch purpose {
	case entity.PurposeRegister:
		user, err = s.repoDB.GetOrCreateUserByTarget(ctx, s.uid.Generate(), target)
		if err != nil {
			slog.ErrorContext(ctx, "failed to get or create user", "error", err)
			return nil, goerror.NewServer(err)
		}

	case entity.PurposeLogin:
		user, err = s.repoDB.GetUserByTarget(ctx, target)
		if errors.Is(err, goerror.ErrNotFound) {
			// The request step proved this user existed; its absence now is
			// a data anomaly worth reporting distinctly.
			slog.WarnContext(ctx, "user vanished between otp request and verify")
			return nil, goerror.NewBusiness("User not found.", goerror.CodeNotFound)
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to look up user", "error", err)
			return nil, goerror.NewServer(err)
		}

	default:
		return nil, goerror.NewBusiness(msgInvalidOTP, goerror.CodeInvalidInput)
	}

	access, refresh, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, err
	}

	return &OTPVerifyOutput{
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
