package http

import (
	"net/http"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
)

// AuthHandler serves the anonymous /v1/auth endpoints.
type AuthHandler struct {
	TokenService   *service.TokenService
	AccountService *service.AccountService
}

func toAuthResponse(a domain.AuthResponse) authsdk.AuthResponse {
	return authsdk.AuthResponse{
		ID:                     a.ID,
		Email:                  a.Email,
		FirstName:              a.FirstName,
		LastName:               a.LastName,
		Token:                  a.Token,
		ExpiresIn:              a.ExpiresIn,
		RefreshToken:           a.RefreshToken,
		RefreshTokenExpiration: a.RefreshTokenExpiration,
	}
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email and password for an access token and a single-use refresh token.
//	@Description	Five consecutive failures lock the account for five minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.AuthResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Request.Invalid"
//	@Failure		401		{object}	httpx.ErrorBody	"User.InvalidCredentials, User.DisabledUser, User.LockedUser, User.EmailNotConfirmed"
//	@Failure		429		{object}	httpx.ErrorBody	"Request.RateLimited"
//	@Header			200		{string}	Cache-Control	"no-store"
//	@Router			/v1/auth [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.TokenService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(resp))
}

// HandleRefresh godoc
//
//	@Summary		Refresh tokens
//	@Description	Rotates the refresh token and mints a new access token carrying the user's current roles and permissions.
//	@Description	The access token must still be valid. The presented refresh token stops working.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshTokenRequest	true	"Current token pair"
//	@Success		200		{object}	authsdk.AuthResponse
//	@Failure		401		{object}	httpx.ErrorBody	"User.InvalidJwtToken, User.InvalidRefreshToken, User.DisabledUser, User.LockedUser"
//	@Router			/v1/auth/refresh [post]
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := h.TokenService.Refresh(r.Context(), req.Token, req.RefreshToken)
	if err != nil {
		writeError(w, r, "refresh", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(resp))
}

// HandleRevoke godoc
//
//	@Summary		Revoke a refresh token
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	authsdk.RefreshTokenRequest	true	"Token pair"
//	@Success		200
//	@Failure		401	{object}	httpx.ErrorBody	"User.InvalidJwtToken, User.InvalidRefreshToken"
//	@Router			/v1/auth/revoke-refresh-token [post]
func (h *AuthHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshTokenRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.TokenService.Revoke(r.Context(), req.Token, req.RefreshToken); err != nil {
		writeError(w, r, "revoke refresh token", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an unconfirmed account in the default role and emails a confirmation link.
//	@Tags			Account
//	@Accept			json
//	@Param			request	body	authsdk.RegisterRequest	true	"New account"
//	@Success		200
//	@Failure		400	{object}	httpx.ErrorBody	"Request.Invalid, User.InvalidCreateAccount"
//	@Failure		409	{object}	httpx.ErrorBody	"User.EmailAlreadyExist"
//	@Router			/v1/auth/register [post]
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.AccountService.Register(r.Context(), service.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, "register", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleConfirmEmail godoc
//
//	@Summary		Confirm email
//	@Tags			Account
//	@Accept			json
//	@Param			request	body	authsdk.ConfirmEmailRequest	true	"User id and code from the confirmation link"
//	@Success		200
//	@Failure		400	{object}	httpx.ErrorBody	"User.DuplicatedConfirmation"
//	@Failure		401	{object}	httpx.ErrorBody	"User.InvalidCode"
//	@Router			/v1/auth/confirm-email [post]
func (h *AuthHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ConfirmEmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AccountService.ConfirmEmail(r.Context(), req.UserID, req.Code); err != nil {
		writeError(w, r, "confirm email", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleResendConfirmation godoc
//
//	@Summary		Resend confirmation email
//	@Description	Issues a new confirmation code; earlier codes stop working. Unknown addresses succeed silently.
//	@Tags			Account
//	@Accept			json
//	@Param			request	body	authsdk.EmailRequest	true	"Email"
//	@Success		200
//	@Failure		400	{object}	httpx.ErrorBody	"User.DuplicatedConfirmation"
//	@Router			/v1/auth/resend-confirmation-email [post]
func (h *AuthHandler) HandleResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AccountService.ResendConfirmationEmail(r.Context(), req.Email); err != nil {
		writeError(w, r, "resend confirmation", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleForgetPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Emails a reset link. Unknown addresses succeed silently.
//	@Tags			Account
//	@Accept			json
//	@Param			request	body	authsdk.EmailRequest	true	"Email"
//	@Success		200
//	@Failure		401	{object}	httpx.ErrorBody	"User.EmailNotConfirmed"
//	@Router			/v1/auth/forget-password [post]
func (h *AuthHandler) HandleForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AccountService.ForgetPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, "forget password", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleResetPassword godoc
//
//	@Summary		Reset password
//	@Description	Redeems a reset code and sets a new password. Clears any lockout.
//	@Tags			Account
//	@Accept			json
//	@Param			request	body	authsdk.ResetPasswordRequest	true	"Email, code and new password"
//	@Success		200
//	@Failure		400	{object}	httpx.ErrorBody	"Request.Invalid"
//	@Failure		401	{object}	httpx.ErrorBody	"User.InvalidCode"
//	@Router			/v1/auth/reset-password [post]
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.AccountService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(w, r, "reset password", err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
