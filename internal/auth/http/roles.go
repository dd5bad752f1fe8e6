package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

func toRoleDetail(role domain.Role) authsdk.RoleDetailResponse {
	perms := role.Permissions
	if perms == nil {
		perms = []string{}
	}
	return authsdk.RoleDetailResponse{
		ID:               role.ID,
		Name:             role.Name,
		IsDeleted:        role.IsDeleted,
		ConcurrencyStamp: role.ConcurrencyStamp,
		Permissions:      perms,
	}
}

// HandleList godoc
//
//	@Summary		List roles
//	@Tags			Roles
//	@Security		BearerAuth
//	@Produce		json
//	@Param			includeDisabled	query		bool	false	"Include soft-deleted roles"
//	@Success		200				{array}		authsdk.RoleResponse
//	@Failure		403				{object}	httpx.ErrorBody	"Auth.Forbidden - requires roles:read"
//	@Router			/v1/roles [get]
func (h *RolesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	includeDisabled, _ := strconv.ParseBool(r.URL.Query().Get("includeDisabled"))

	roles, err := h.RolesService.List(r.Context(), includeDisabled)
	if err != nil {
		writeError(w, r, "list roles", err)
		return
	}

	resp := make([]authsdk.RoleResponse, len(roles))
	for i, role := range roles {
		resp[i] = authsdk.RoleResponse{ID: role.ID, Name: role.Name, IsDeleted: role.IsDeleted}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleGet godoc
//
//	@Summary		Get a role with its permissions
//	@Tags			Roles
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Role id"
//	@Success		200	{object}	authsdk.RoleDetailResponse
//	@Failure		404	{object}	httpx.ErrorBody	"Role.RoleNotFound"
//	@Router			/v1/roles/{id} [get]
func (h *RolesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	role, err := h.RolesService.GetRoleByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, "get role", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoleDetail(role))
}

// HandleCreate godoc
//
//	@Summary		Create a role
//	@Tags			Roles
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RoleRequest	true	"Name and permissions"
//	@Success		201		{object}	authsdk.RoleDetailResponse
//	@Failure		400		{object}	httpx.ErrorBody	"Request.Invalid, Role.InvalidPermissions"
//	@Failure		409		{object}	httpx.ErrorBody	"Role.RoleAlreadyExists"
//	@Router			/v1/roles [post]
func (h *RolesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RoleRequest
	if !decode(w, r, &req) {
		return
	}

	role, err := h.RolesService.Add(r.Context(), service.RoleRequest{Name: req.Name, Permissions: req.Permissions})
	if err != nil {
		writeError(w, r, "create role", err)
		return
	}
	w.Header().Set("Location", "/v1/roles/"+role.ID)
	httpx.WriteJSON(w, http.StatusCreated, toRoleDetail(role))
}

// HandleUpdate godoc
//
//	@Summary		Update a role
//	@Description	Replaces name and permissions. concurrencyStamp must be the value last read; a stale one is rejected.
//	@Tags			Roles
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path	string						true	"Role id"
//	@Param			request	body	authsdk.UpdateRoleRequest	true	"Name, permissions and stamp"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorBody	"Role.RoleNotFound"
//	@Failure		409	{object}	httpx.ErrorBody	"Role.RoleAlreadyExists, Role.ConcurrencyConflict"
//	@Router			/v1/roles/{id} [put]
func (h *RolesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.UpdateRoleRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.RolesService.Update(r.Context(), r.PathValue("id"), req.ConcurrencyStamp, service.RoleRequest{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		writeError(w, r, "update role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleStatus godoc
//
//	@Summary		Soft-delete or restore a role
//	@Description	A deleted role grants nothing from the next login or refresh on.
//	@Tags			Roles
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Role id"
//	@Success		204
//	@Failure		404	{object}	httpx.ErrorBody	"Role.RoleNotFound"
//	@Router			/v1/roles/{id}/toggle-status [put]
func (h *RolesHandler) HandleToggleStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.RolesService.ToggleStatus(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, "toggle role status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
