package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
)

// UsersHandler serves user administration.
type UsersHandler struct {
	UserService *service.UserService
	Now         func() time.Time
}

func (h *UsersHandler) toResponse(u domain.User) authsdk.UserResponse {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return authsdk.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsDisabled: u.Disabled,
		IsLocked:   u.IsLockedOut(now),
		Roles:      roles,
	}
}

// HandleList godoc
//
//	@Summary		List users
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		authsdk.UserResponse
//	@Failure		401	{object}	httpx.ErrorBody	"Auth.Unauthorized"
//	@Failure		403	{object}	httpx.ErrorBody	"Auth.Forbidden - requires users:read"
//	@Router			/v1/users [get]
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, "list users", err)
		return
	}

	resp := make([]authsdk.UserResponse, len(users))
	for i, u := range users {
		resp[i] = h.toResponse(u)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"User id"
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		404	{object}	httpx.ErrorBody	"User.UserNotFound"
//	@Router			/v1/users/{id} [get]
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	u, err := h.UserService.GetUserByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, "get user", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toResponse(u))
}

// HandleCreate godoc
//
//	@Summary		Create a user
//	@Description	Creates a confirmed user holding the named roles.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"New user"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Request.Invalid, User.InvalidRoles"
//	@Failure		409		{object}	httpx.ErrorBody	"User.EmailAlreadyExist"
//	@Router			/v1/users [post]
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CreateUserRequest
	if !decode(w, r, &req) {
		return
	}

	u, err := h.UserService.CreateUser(r.Context(), service.CreateUserRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Roles:     req.Roles,
	})
	if err != nil {
		writeError(w, r, "create user", err)
		return
	}
	w.Header().Set("Location", "/v1/users/"+u.ID)
	httpx.WriteJSON(w, http.StatusCreated, h.toResponse(u))
}

// HandleToggleStatus godoc
//
//	@Summary		Enable or disable a user
//	@Description	A disabled user cannot log in or refresh. Access tokens already issued stay valid until they expire.
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorBody	"User.UserNotFound"
//	@Router			/v1/users/{id}/toggle-status [put]
func (h *UsersHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.ToggleStatus(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, "toggle user status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUnlock godoc
//
//	@Summary		Unlock a user
//	@Tags			Users
//	@Security		BearerAuth
//	@Param			id	path	string	true	"User id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorBody	"User.UserNotFound"
//	@Router			/v1/users/{id}/unlock [put]
func (h *UsersHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	if err := h.UserService.Unlock(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, "unlock user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
