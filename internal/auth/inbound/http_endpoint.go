package inbound

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nubitera/authcore/internal/auth/entity"
	"github.com/nubitera/authcore/internal/auth/usecase"
	"github.com/nubitera/authcore/internal/pkg/goerror"
	"github.com/nubitera/authcore/internal/pkg/router"
)

// flowCookie carries the opaque id of the parked flow state. The flow data
// itself never leaves the server.
const flowCookie = "asid"

// HTTPEndpoint exposes HTTP handlers for the authentication flows.
type HTTPEndpoint struct {
	uc    uc
	flows flowStore
}

// parkFlow stores the flow state and points the client at it via the flow
// cookie. Each request step parks a fresh session; the old one simply ages
// out.
func (h *HTTPEndpoint) parkFlow(r *router.Request, fs entity.FlowSession) error {
	payload, err := fs.Encode()
	if err != nil {
		return goerror.NewServer(err)
	}

	id, err := h.flows.Create(r.Context(), payload)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to park flow state", "error", err)
		return goerror.NewServer(err)
	}

	r.SetCookie(&http.Cookie{
		Name:     flowCookie,
		Value:    id,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.flows.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	return nil
}

// loadFlow returns the parked flow state, or a zero session when the cookie
// is absent, stale or unreadable. The zero session fails the usecase's tag
// check, which answers with the same generic error as a wrong code.
func (h *HTTPEndpoint) loadFlow(r *router.Request) (string, entity.FlowSession) {
	id := r.GetCookie(flowCookie)
	if id == "" {
		return "", entity.FlowSession{}
	}

	payload, err := h.flows.Get(r.Context(), id)
	if err != nil {
		return id, entity.FlowSession{}
	}

	fs, err := entity.DecodeFlowSession(payload)
	if err != nil {
		slog.WarnContext(r.Context(), "unreadable flow state", "error", err)
		return id, entity.FlowSession{}
	}

	return id, fs
}

// finishFlow drops the parked state and expires the cookie after a verify
// step succeeds.
func (h *HTTPEndpoint) finishFlow(r *router.Request, id string) {
	if id == "" {
		return
	}

	if err := h.flows.Delete(context.WithoutCancel(r.Context()), id); err != nil {
		slog.WarnContext(r.Context(), "failed to drop flow state", "error", err)
	}

	r.SetCookie(&http.Cookie{
		Name:     flowCookie,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// OTPRequest starts a register or login flow by sending a one-time code.
// @Summary Request OTP
// @Description Sends a verification code to the email address or phone number for registration or login.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body OTPRequestRequest true "OTP request payload"
// @Success 200 {object} router.successResponse{data=OTPRequestResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 429 {object} router.errorResponse "A code was sent recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/request [post]
func (h *HTTPEndpoint) OTPRequest(r *router.Request) (any, error) {
	var req OTPRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPRequest(r.Context(), usecase.OTPRequestInput{
		Target:  req.Target,
		Purpose: req.Purpose,
	})
	if err != nil {
		return nil, err
	}

	if err := h.parkFlow(r, resp.Session); err != nil {
		return nil, err
	}

	return OTPRequestResponse{}, nil
}

// OTPVerify completes a register or login flow and issues tokens.
// @Summary Verify OTP
// @Description Verifies the one-time code for the pending flow and returns access/refresh tokens.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "OTP verification payload"
// @Success 200 {object} router.successResponse{data=TokenResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid or expired OTP"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/otp/verify [post]
func (h *HTTPEndpoint) OTPVerify(r *router.Request) (any, error) {
	var req OTPVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	id, fs := h.loadFlow(r)

	resp, err := h.uc.OTPVerify(r.Context(), usecase.OTPVerifyInput{
		Code:    req.Code,
		Session: fs,
	})
	if err != nil {
		return nil, err
	}

	h.finishFlow(r, id)

	return TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
	}, nil
}

// Login authenticates with an identifier and password.
// @Summary Login with password
// @Description Validates identifier and password and returns access/refresh tokens.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=TokenResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid credentials"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
	}, nil
}

// RefreshToken exchanges a refresh token for a new credential pair.
// @Summary Refresh access token
// @Description Exchanges a refresh token for a new access/refresh token pair. The presented token is revoked.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token payload"
// @Success 200 {object} router.successResponse{data=TokenResponse} "Token refresh result"
// @Failure 401 {object} router.errorResponse "Invalid or expired token"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/refresh [post]
func (h *HTTPEndpoint) RefreshToken(r *router.Request) (any, error) {
	var req RefreshTokenRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RefreshToken(r.Context(), usecase.RefreshTokenInput{RefreshToken: req.RefreshToken})
	if err != nil {
		return nil, err
	}

	return TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Logout revokes a refresh token.
// @Summary Logout
// @Description Invalidates the provided refresh token.
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Param request body LogoutRequest true "Logout payload"
// @Success 204 "No Content"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	var req LogoutRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.Logout(r.Context(), usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return nil, err
	}

	return nil, nil
}

// PasswordResetRequest starts a password reset by sending a one-time code.
// @Summary Request password reset
// @Description Sends a verification code to the account's email address or phone number.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body PasswordResetRequestRequest true "Reset request payload"
// @Success 200 {object} router.successResponse{data=PasswordResetRequestResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "No matching account"
// @Failure 429 {object} router.errorResponse "A code was sent recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/password-reset/request [post]
func (h *HTTPEndpoint) PasswordResetRequest(r *router.Request) (any, error) {
	var req PasswordResetRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.PasswordResetRequest(r.Context(), usecase.PasswordResetRequestInput{Target: req.Target})
	if err != nil {
		return nil, err
	}

	if err := h.parkFlow(r, resp.Session); err != nil {
		return nil, err
	}

	return PasswordResetRequestResponse{}, nil
}

// PasswordResetVerify exchanges the reset code for a reset token.
// @Summary Verify password reset code
// @Description Verifies the one-time code and returns a short-lived reset token for the final step.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body PasswordResetVerifyRequest true "Reset verification payload"
// @Success 200 {object} router.successResponse{data=PasswordResetVerifyResponse} "Reset token"
// @Failure 400 {object} router.errorResponse "Invalid or expired OTP"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/password-reset/verify [post]
func (h *HTTPEndpoint) PasswordResetVerify(r *router.Request) (any, error) {
	var req PasswordResetVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	id, fs := h.loadFlow(r)

	resp, err := h.uc.PasswordResetVerify(r.Context(), usecase.PasswordResetVerifyInput{
		Code:    req.Code,
		Session: fs,
	})
	if err != nil {
		return nil, err
	}

	h.finishFlow(r, id)

	return PasswordResetVerifyResponse{ResetToken: resp.ResetToken}, nil
}

// PasswordResetSet completes the reset with the reset token and new password.
// @Summary Set new password
// @Description Redeems the reset token and overwrites the account password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body PasswordResetSetRequest true "New password payload"
// @Success 200 {object} router.successResponse{data=PasswordResetSetResponse} "Password changed"
// @Failure 400 {object} router.errorResponse "Invalid or expired reset token"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/password-reset/set [post]
func (h *HTTPEndpoint) PasswordResetSet(r *router.Request) (any, error) {
	var req PasswordResetSetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.PasswordResetSet(r.Context(), usecase.PasswordResetSetInput{
		ResetToken:      req.ResetToken,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	}); err != nil {
		return nil, err
	}

	return PasswordResetSetResponse{}, nil
}

// IdentifierChangeRequest starts changing the current user's email or phone.
// @Summary Request identifier change
// @Description Sends a verification code to the new email address or phone number being claimed.
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body IdentifierChangeRequestRequest true "Identifier change payload"
// @Success 200 {object} router.successResponse{data=IdentifierChangeRequestResponse} "Code sent"
// @Failure 400 {object} router.errorResponse "Identifier already in use"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 429 {object} router.errorResponse "A code was sent recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/change-identifier/request [post]
func (h *HTTPEndpoint) IdentifierChangeRequest(r *router.Request) (any, error) {
	var req IdentifierChangeRequestRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.IdentifierChangeRequest(r.Context(), usecase.IdentifierChangeRequestInput{Target: req.Target})
	if err != nil {
		return nil, err
	}

	if err := h.parkFlow(r, resp.Session); err != nil {
		return nil, err
	}

	return IdentifierChangeRequestResponse{}, nil
}

// IdentifierChangeVerify completes the identifier change.
// @Summary Verify identifier change
// @Description Verifies the one-time code and overwrites the matching identifier on the account.
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body IdentifierChangeVerifyRequest true "Identifier verification payload"
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Updated account"
// @Failure 400 {object} router.errorResponse "Invalid or expired OTP"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/change-identifier/verify [post]
func (h *HTTPEndpoint) IdentifierChangeVerify(r *router.Request) (any, error) {
	var req IdentifierChangeVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	id, fs := h.loadFlow(r)

	resp, err := h.uc.IdentifierChangeVerify(r.Context(), usecase.IdentifierChangeVerifyInput{
		Code:    req.Code,
		Session: fs,
	})
	if err != nil {
		return nil, err
	}

	h.finishFlow(r, id)

	return newProfileResponse(resp.User), nil
}

// Profile returns the authenticated user's account.
// @Summary Get profile
// @Description Returns account information for the authenticated user.
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Profile result"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return newProfileResponse(resp.User), nil
}
