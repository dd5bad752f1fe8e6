package http

import (
	"net/http"

	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
)

// MeHandler serves the caller's own account.
type MeHandler struct {
	UserService *service.UserService
}

// HandleGet godoc
//
//	@Summary		Get the caller's profile
//	@Tags			Account
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserProfileResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Auth.Unauthorized"
//	@Router			/v1/me [get]
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	u, err := h.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, "get profile", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.UserProfileResponse{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	})
}

// HandleUpdateInfo godoc
//
//	@Summary		Update the caller's names
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.UpdateProfileRequest	true	"Names"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Request.Invalid"
//	@Router			/v1/me/info [put]
func (h *MeHandler) HandleUpdateInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.UpdateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.UserService.UpdateProfile(r.Context(), userID, req.FirstName, req.LastName); err != nil {
		writeError(w, r, "update profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword godoc
//
//	@Summary		Change the caller's password
//	@Description	A wrong current password counts towards lockout.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Param			request	body	authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody	"Request.Invalid"
//	@Failure		401	{object}	httpx.ErrorBody	"User.InvalidCredentials, User.LockedUser"
//	@Router			/v1/me/change-password [put]
func (h *MeHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.UserService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, "change password", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
