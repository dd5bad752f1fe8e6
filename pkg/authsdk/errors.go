package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	CodeInvalidCredentials     = "User.InvalidCredentials"
	CodeDisabledUser           = "User.DisabledUser"
	CodeLockedUser             = "User.LockedUser"
	CodeEmailNotConfirmed      = "User.EmailNotConfirmed"
	CodeInvalidJwtToken        = "User.InvalidJwtToken"
	CodeInvalidRefreshToken    = "User.InvalidRefreshToken"
	CodeInvalidCode            = "User.InvalidCode"
	CodeDuplicatedConfirmation = "User.DuplicatedConfirmation"
	CodeInvalidCreateAccount   = "User.InvalidCreateAccount"
	CodeEmailAlreadyExist      = "User.EmailAlreadyExist"
	CodeInvalidRoles           = "User.InvalidRoles"
	CodeUserNotFound           = "User.UserNotFound"

	CodeRoleNotFound        = "Role.RoleNotFound"
	CodeRoleAlreadyExists   = "Role.RoleAlreadyExists"
	CodeInvalidPermissions  = "Role.InvalidPermissions"
	CodeConcurrencyConflict = "Role.ConcurrencyConflict"

	CodeBootstrapDisabled     = "Bootstrap.Disabled"
	CodeBootstrapUnauthorized = "Bootstrap.Unauthorized"
	CodeBootstrapAlready      = "Bootstrap.AlreadyBootstrapped"

	CodeUnauthorized = httpx.CodeUnauthorized
	CodeForbidden    = httpx.CodeForbidden
	CodeBadRequest   = httpx.CodeBadRequest
	CodeRateLimited  = httpx.CodeRateLimited
	CodeServerError  = httpx.CodeServerError
)

// ============================================================================
// Error - wire error type
// ============================================================================

// Error is the error body every endpoint returns. It is used by the server to
// write responses and by the client to report them.
type Error struct {
	StatusCode int `json:"-"`

	// Code is stable and namespaced, e.g. "User.InvalidCredentials".
	Code string `json:"code"`

	Description string `json:"description"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on Code so a decoded response compares equal to the
// predefined value, e.g. errors.Is(err, authsdk.ErrLockedUser).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WriteError writes e as the response.
func (e *Error) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// WithDescription returns a copy of e with a different description.
func (e *Error) WithDescription(desc string) *Error {
	return &Error{StatusCode: e.StatusCode, Code: e.Code, Description: desc}
}

// NewError creates an Error.
func NewError(statusCode int, code, description string) *Error {
	return &Error{StatusCode: statusCode, Code: code, Description: description}
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	ErrInvalidCredentials     = NewError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid email/password")
	ErrDisabledUser           = NewError(http.StatusUnauthorized, CodeDisabledUser, "Disabled user, please contact your administrator")
	ErrLockedUser             = NewError(http.StatusUnauthorized, CodeLockedUser, "Locked user, please contact your administrator")
	ErrEmailNotConfirmed      = NewError(http.StatusUnauthorized, CodeEmailNotConfirmed, "Email is not confirmed")
	ErrInvalidJwtToken        = NewError(http.StatusUnauthorized, CodeInvalidJwtToken, "Invalid Jwt token")
	ErrInvalidRefreshToken    = NewError(http.StatusUnauthorized, CodeInvalidRefreshToken, "Invalid refresh token")
	ErrInvalidCode            = NewError(http.StatusUnauthorized, CodeInvalidCode, "Invalid code")
	ErrDuplicatedConfirmation = NewError(http.StatusBadRequest, CodeDuplicatedConfirmation, "Email already confirmed")
	ErrInvalidCreateAccount   = NewError(http.StatusBadRequest, CodeInvalidCreateAccount, "Account could not be created")
	ErrEmailAlreadyExist      = NewError(http.StatusConflict, CodeEmailAlreadyExist, "Another user with the same email is already exists")
	ErrInvalidRoles           = NewError(http.StatusBadRequest, CodeInvalidRoles, "Invalid roles")
	ErrUserNotFound           = NewError(http.StatusNotFound, CodeUserNotFound, "User is not found")

	ErrRoleNotFound        = NewError(http.StatusNotFound, CodeRoleNotFound, "Role is not found")
	ErrRoleAlreadyExists   = NewError(http.StatusConflict, CodeRoleAlreadyExists, "Another role with the same name is already exists")
	ErrInvalidPermissions  = NewError(http.StatusBadRequest, CodeInvalidPermissions, "Invalid permissions")
	ErrConcurrencyConflict = NewError(http.StatusConflict, CodeConcurrencyConflict, "Role was changed by someone else, reload and retry")

	ErrBootstrapDisabled     = NewError(http.StatusNotFound, CodeBootstrapDisabled, "Bootstrap endpoint is not enabled")
	ErrBootstrapUnauthorized = NewError(http.StatusUnauthorized, CodeBootstrapUnauthorized, "Invalid bootstrap token")
	ErrBootstrapAlready      = NewError(http.StatusConflict, CodeBootstrapAlready, "System has already been bootstrapped")

	ErrUnauthorized = NewError(http.StatusUnauthorized, CodeUnauthorized, "the access token is missing, invalid or expired")
	ErrForbidden    = NewError(http.StatusForbidden, CodeForbidden, "insufficient permissions")
	ErrBadRequest   = NewError(http.StatusBadRequest, CodeBadRequest, "the request is malformed")
	ErrRateLimited  = NewError(http.StatusTooManyRequests, CodeRateLimited, "too many requests")
	ErrServerError  = NewError(http.StatusInternalServerError, CodeServerError, "internal server error")
)

// ============================================================================
// Error Parsing Helpers
// ============================================================================

// parseErrorResponse turns a non-2xx response into an *Error. Bodies that are
// not in the error shape fall back to the status text.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp httpx.ErrorBody
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		return &Error{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Code,
			Description: errResp.Description,
		}
	}

	return &Error{
		StatusCode:  resp.StatusCode,
		Code:        CodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
