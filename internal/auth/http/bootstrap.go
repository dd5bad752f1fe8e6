package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the system
//	@Description	Creates the seed roles and the first admin. Only available when a bootstrap token is configured and only succeeds once.
//	@Description	The token may be sent in the X-Bootstrap-Token header or the body.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						false	"Bootstrap token"
//	@Param			request				body		authsdk.BootstrapRequest	true	"Admin account and optional roles"
//	@Success		201					{object}	authsdk.BootstrapResponse
//	@Failure		400					{object}	httpx.ErrorBody	"Request.Invalid, Role.InvalidPermissions, User.InvalidRoles"
//	@Failure		401					{object}	httpx.ErrorBody	"Bootstrap.Unauthorized"
//	@Failure		404					{object}	httpx.ErrorBody	"Bootstrap.Disabled"
//	@Failure		409					{object}	httpx.ErrorBody	"Bootstrap.AlreadyBootstrapped"
//	@Router			/v1/bootstrap [post]
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())
	l.Info("starting to bootstrap")

	if h.BootstrapService.Token == "" {
		authsdk.ErrBootstrapDisabled.WriteError(w)
		return
	}

	var req authsdk.BootstrapRequest
	if !decode(w, r, &req) {
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		token = req.Token
	}
	if token == "" {
		authsdk.ErrBootstrapUnauthorized.WithDescription("bootstrap token is required").WriteError(w)
		return
	}

	roles := make([]domain.RoleDefinition, len(req.Roles))
	for i, role := range req.Roles {
		roles[i] = domain.RoleDefinition{
			Name:        strings.TrimSpace(role.Name),
			Permissions: role.Permissions,
			Default:     role.Default,
		}
	}

	adminID, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		AdminEmail:     strings.TrimSpace(req.AdminEmail),
		AdminPassword:  req.AdminPassword,
		AdminFirstName: strings.TrimSpace(req.AdminFirstName),
		AdminLastName:  strings.TrimSpace(req.AdminLastName),
		Roles:          roles,
	})
	if err != nil {
		writeError(w, r, "bootstrap", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.BootstrapResponse{AdminUserID: adminID})
}
