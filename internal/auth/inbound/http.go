package inbound

import (
	"context"
	"net/http"
	"time"

	"github.com/nubitera/authcore/internal/auth/usecase"
	"github.com/nubitera/authcore/internal/pkg/router"
)

type uc interface {
	OTPRequest(ctx context.Context, in usecase.OTPRequestInput) (*usecase.OTPRequestOutput, error)
	OTPVerify(ctx context.Context, in usecase.OTPVerifyInput) (*usecase.OTPVerifyOutput, error)

	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	RefreshToken(ctx context.Context, in usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error)
	Logout(ctx context.Context, in usecase.LogoutInput) (*usecase.LogoutOutput, error)

	PasswordResetRequest(ctx context.Context, in usecase.PasswordResetRequestInput) (*usecase.PasswordResetRequestOutput, error)
	PasswordResetVerify(ctx context.Context, in usecase.PasswordResetVerifyInput) (*usecase.PasswordResetVerifyOutput, error)
	PasswordResetSet(ctx context.Context, in usecase.PasswordResetSetInput) (*usecase.PasswordResetSetOutput, error)

	IdentifierChangeRequest(ctx context.Context, in usecase.IdentifierChangeRequestInput) (*usecase.IdentifierChangeRequestOutput, error)
	IdentifierChangeVerify(ctx context.Context, in usecase.IdentifierChangeVerifyInput) (*usecase.IdentifierChangeVerifyOutput, error)

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

// flowStore parks flow state between the request and verify steps of a flow.
type flowStore interface {
	Create(ctx context.Context, payload []byte) (string, error)
	Get(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
	TTL() time.Duration
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, flows flowStore) {
	end := &HTTPEndpoint{uc: uc, flows: flows}

	// OTP flows (register & login)
	r.POST("/api/v1/auth/otp/request", end.OTPRequest)
	r.POST("/api/v1/auth/otp/verify", end.OTPVerify)

	// Password login & token lifecycle
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/refresh", end.RefreshToken)
	r.POST("/api/v1/auth/logout", end.Logout) // need authenticated

	// Password reset
	r.POST("/api/v1/auth/password-reset/request", end.PasswordResetRequest)
	r.POST("/api/v1/auth/password-reset/verify", end.PasswordResetVerify)
	r.POST("/api/v1/auth/password-reset/set", end.PasswordResetSet)

	// Identifier change (need authenticated)
	r.POST("/api/v1/auth/change-identifier/request", end.IdentifierChangeRequest)
	r.POST("/api/v1/auth/change-identifier/verify", end.IdentifierChangeVerify)

	// Profile (need authenticated)
	r.GET("/api/v1/auth/profile", end.Profile)
}

// PublicHTTPEndpoints lists the routes reachable without a bearer token.
func PublicHTTPEndpoints() router.PublicEndpoints {
	return router.PublicEndpoints{
		http.MethodPost: {
			"/api/v1/auth/otp/request":            {},
			"/api/v1/auth/otp/verify":             {},
			"/api/v1/auth/login":                  {},
			"/api/v1/auth/refresh":                {},
			"/api/v1/auth/password-reset/request": {},
			"/api/v1/auth/password-reset/verify":  {},
			"/api/v1/auth/password-reset/set":     {},
		},
	}
}
