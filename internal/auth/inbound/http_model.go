package inbound

import (
	"time"

	"github.com/nubitera/authcore/internal/auth/entity"
)

type OTPRequestRequest struct {
	Target  string `json:"target"`
	Purpose string `json:"purpose"`
}

type OTPRequestResponse struct{}

func (OTPRequestResponse) Message() string {
	return "If an account with these details exists, a verification code will be sent."
}

type OTPVerifyRequest struct {
	Code string `json:"code"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// UserID identifies the authenticated account on verify and login.
	// A token refresh proves possession only, so it stays empty there.
	UserID int64 `json:"user_id,omitempty"`
}

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type PasswordResetRequestRequest struct {
	Target string `json:"target"`
}

type PasswordResetRequestResponse struct{}

func (PasswordResetRequestResponse) Message() string {
	return "A verification code has been sent."
}

type PasswordResetVerifyRequest struct {
	Code string `json:"code"`
}

type PasswordResetVerifyResponse struct {
	ResetToken string `json:"reset_token"`
}

type PasswordResetSetRequest struct {
	ResetToken      string `json:"reset_token"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type PasswordResetSetResponse struct{}

func (PasswordResetSetResponse) Message() string {
	return "Your password has been changed."
}

type IdentifierChangeRequestRequest struct {
	Target string `json:"target"`
}

type IdentifierChangeRequestResponse struct{}

func (IdentifierChangeRequestResponse) Message() string {
	return "A verification code has been sent."
}

type IdentifierChangeVerifyRequest struct {
	Code string `json:"code"`
}

type ProfileResponse struct {
	ID            int64     `json:"id,string"`
	Email         string    `json:"email,omitempty"`
	PhoneNumber   string    `json:"phone_number,omitempty"`
	FirstName     string    `json:"first_name,omitempty"`
	LastName      string    `json:"last_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func newProfileResponse(u entity.User) ProfileResponse {
	return ProfileResponse{
		ID:            u.ID,
		Email:         u.Email,
		PhoneNumber:   u.PhoneNumber,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		CreatedAt:     u.CreatedAt,
	}
}
