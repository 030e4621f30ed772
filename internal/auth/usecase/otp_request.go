package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/goerror"
)

type OTPRequestInput struct {
	Target  string `validate:"required,max=254"`
	Purpose string `validate:"required,oneof=register login"`
}

type OTPRequestOutput struct {
	// Session is the state the transport must park until the verify step.
	Session entity.FlowSession
}

// OTPRequest starts a register or login flow by issuing a challenge to the
// target. The response is identical whether or not an account exists; only
// the cooldown is ever distinguishable.
func (s *Usecase) OTPRequest(ctx context.Context, in OTPRequestInput) (*OTPRequestOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPRequest")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	purpose := entity.ParseRequestPurpose(in.Purpose)

	target, err := entity.NormalizeTarget(in.Target)
	if err != nil {
		return nil, goerror.NewInvalidInput(nil, "target", "must be a valid email address or phone number")
	}

	user, err := s.repoDB.GetUserByTarget(ctx, target)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to look up target", "error", err)
		return nil, goerror.NewServer(err)
	}

	// Register wants the target free, login wants it taken. When the rule
	// fails, answer exactly as if a code had been sent; only the challenge
	// itself must not exist.
	exists := user != nil
	wantExists := purpose == entity.PurposeLogin
	if exists != wantExists {
		slog.WarnContext(ctx, "otp request existence rule failed", "purpose", purpose.String(), "exists", exists)
		return &OTPRequestOutput{Session: entity.NewOTPFlow(target, purpose)}, nil
	}

	if err := s.issueChallenge(ctx, target, purpose); err != nil {
		return nil, err
	}

	return &OTPRequestOutput{Session: entity.NewOTPFlow(target, purpose)}, nil
}
