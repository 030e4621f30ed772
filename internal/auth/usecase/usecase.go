package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/pkg/clock"
	"github.com/nubitera/authcore/internal/pkg/config"
	"github.com/nubitera/authcore/internal/pkg/goerror"
	"github.com/nubitera/authcore/internal/pkg/goroutine"
	"github.com/nubitera/authcore/internal/pkg/hash"
	"github.com/nubitera/authcore/internal/pkg/instrument"
	"github.com/nubitera/authcore/internal/pkg/jwt"
	"github.com/nubitera/authcore/internal/pkg/otp"
	"github.com/nubitera/authcore/internal/pkg/uid"
	"github.com/nubitera/authcore/internal/pkg/validator"
	"github.com/nubitera/authcore/internal/shared/event"
	"go.opentelemetry.io/otel/trace"
)

// User-facing messages. Challenge failures deliberately collapse into one
// generic message so responses never reveal whether a challenge exists, has
// expired, or was exhausted.
const (
	msgInvalidOTP     = "Invalid or expired OTP."
	msgCooldown       = "Please wait before requesting a new OTP."
	msgGenericRequest = "If an account with these details exists, a verification code will be sent."
)

type repoDB interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByTarget(ctx context.Context, t entity.Target) (*entity.User, error)
	// GetOrCreateUserByTarget resolves the target to a user, creating a
	// passwordless account with the channel's verified flag set when none
	// exists. Racing calls for the same target resolve to one row.
	GetOrCreateUserByTarget(ctx context.Context, id int64, t entity.Target) (*entity.User, error)
	UpdateUserPassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateUserIdentifier(ctx context.Context, userID int64, t entity.Target) error

	CreateRefreshToken(ctx context.Context, rt entity.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*entity.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id int64) error
}

type repoMessaging interface {
	PublishPasswordChanged(ctx context.Context, ev event.PasswordChanged) error
}

type otpEngine interface {
	Issue(ctx context.Context, target, purpose, channel string) (bool, error)
	Verify(ctx context.Context, target, code, purpose string) (*otp.Challenge, error)
}

type resetSigner interface {
	Sign(payload string) string
	Unsign(token string, maxAge time.Duration) (string, error)
}

// Usecase sequences the per-purpose authentication flows: it owns the state
// machine decisions while the engine, signer and repositories do the work.
type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	otp           otpEngine
	signer        resetSigner
	validator     validator.Validator
	cfg           config.Config
	bcrypt        hash.Hash
	hmac          hash.Hash
	uid           uid.NumberID
	oid           uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

// Dependency carries the collaborators a Usecase needs.
type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	OTP           otpEngine
	Signer        resetSigner
	Validator     validator.Validator
	Config        config.Config
	Bcrypt        hash.Hash
	HMAC          hash.Hash
	UID           uid.NumberID
	OID           uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

// New constructs a Usecase.
func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		otp:           dep.OTP,
		signer:        dep.Signer,
		validator:     dep.Validator,
		cfg:           dep.Config,
		bcrypt:        dep.Bcrypt,
		hmac:          dep.HMAC,
		uid:           dep.UID,
		oid:           dep.OID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

// issueCredentials mints the access/refresh pair for a resolved identity.
// The refresh token handed to the client is opaque; only its HMAC is stored.
func (s *Usecase) issueCredentials(ctx context.Context, user *entity.User) (access, refresh string, err error) {
	access, err = s.jwt.Generate(user.ID, user.Identifier())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate access token", "user_id", user.ID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	refresh = s.oid.Generate()
	refreshHash, err := s.hmac.Hash(refresh)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash refresh token", "user_id", user.ID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	ttl := s.cfg.GetDay("modules.auth.refresh_token_ttl_days")
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}

	if err := s.repoDB.CreateRefreshToken(ctx, entity.RefreshToken{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		TokenHash: string(refreshHash),
		ExpiresAt: s.clock.Now().Add(ttl),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to store refresh token", "user_id", user.ID, "error", err)
		return "", "", goerror.NewServer(err)
	}

	return access, refresh, nil
}

// issueChallenge runs the engine and maps its outcomes to the flow-level
// errors shared by every request step.
func (s *Usecase) issueChallenge(ctx context.Context, t entity.Target, purpose entity.Purpose) error {
	sent, err := s.otp.Issue(ctx, t.Value, purpose.String(), t.Channel.String())
	if err != nil {
		// A store outage surfaces as the cooldown message, never a crash.
		slog.ErrorContext(ctx, "failed to issue challenge", "purpose", purpose.String(), "error", err)
		return goerror.NewBusiness(msgCooldown, goerror.CodeTooManyRequest)
	}
	if !sent {
		return goerror.NewBusiness(msgCooldown, goerror.CodeTooManyRequest)
	}

	return nil
}

// verifyChallenge runs the engine and collapses every failure into the one
// generic invalid-OTP error.
func (s *Usecase) verifyChallenge(ctx context.Context, t entity.Target, code string, purpose entity.Purpose) error {
	_, err := s.otp.Verify(ctx, t.Value, code, purpose.String())
	if errors.Is(err, otp.ErrCodeInvalid) {
		return goerror.NewBusiness(msgInvalidOTP, goerror.CodeInvalidInput)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify challenge", "purpose", purpose.String(), "error", err)
		return goerror.NewBusiness(msgInvalidOTP, goerror.CodeInvalidInput)
	}

	return nil
}
