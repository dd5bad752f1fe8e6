package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

// serviceErrors maps service sentinels to their wire form. Order does not
// matter: every service error wraps at most one sentinel.
var serviceErrors = []struct {
	err  error
	wire *authsdk.Error
}{
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrDisabledUser, authsdk.ErrDisabledUser},
	{service.ErrLockedUser, authsdk.ErrLockedUser},
	{service.ErrEmailNotConfirmed, authsdk.ErrEmailNotConfirmed},
	{service.ErrInvalidJwtToken, authsdk.ErrInvalidJwtToken},
	{service.ErrInvalidRefreshToken, authsdk.ErrInvalidRefreshToken},
	{service.ErrInvalidCode, authsdk.ErrInvalidCode},
	{service.ErrDuplicatedConfirmation, authsdk.ErrDuplicatedConfirmation},
	{service.ErrInvalidCreateAccount, authsdk.ErrInvalidCreateAccount},
	{service.ErrEmailAlreadyExist, authsdk.ErrEmailAlreadyExist},
	{service.ErrInvalidRoles, authsdk.ErrInvalidRoles},
	{service.ErrUserNotFound, authsdk.ErrUserNotFound},
	{service.ErrRoleNotFound, authsdk.ErrRoleNotFound},
	{service.ErrRoleAlreadyExists, authsdk.ErrRoleAlreadyExists},
	{service.ErrInvalidPermissions, authsdk.ErrInvalidPermissions},
	{service.ErrConcurrencyConflict, authsdk.ErrConcurrencyConflict},
	{service.ErrBootstrapDisabled, authsdk.ErrBootstrapDisabled},
	{service.ErrBootstrapUnauthorized, authsdk.ErrBootstrapUnauthorized},
	{service.ErrBootstrapAlready, authsdk.ErrBootstrapAlready},
}

// WireError translates err to its response. Validation failures keep their
// message; anything unknown becomes an opaque server error.
func WireError(err error) *authsdk.Error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.wire
		}
	}
	if errors.Is(err, domain.ErrValidation) {
		return authsdk.ErrBadRequest.WithDescription(err.Error())
	}
	return authsdk.ErrServerError
}

// writeError renders err and logs it when it is unexpected.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	wire := WireError(err)
	if wire.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
	}
	wire.WriteError(w)
}

// decode reads a JSON body or writes a 400 and returns false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(w, r, dst); err != nil {
		authsdk.ErrBadRequest.WithDescription(err.Error()).WriteError(w)
		return false
	}
	return true
}
