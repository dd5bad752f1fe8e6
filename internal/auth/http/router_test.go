package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	authhttp "github.com/aussiebroadwan/surveybasket/internal/auth/http"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/surveybasket/pkg/authsdk"
	"github.com/aussiebroadwan/surveybasket/pkg/cryptox"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
)

const (
	bootstrapToken = "boot-token"
	adminEmail     = "admin@x.com"
	adminPassword  = "Admin123!"
)

type outbox struct {
	mu    sync.Mutex
	tasks []domain.EmailTask
}

func (o *outbox) Enqueue(_ context.Context, task domain.EmailTask) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tasks = append(o.tasks, task)
	return nil
}

func (o *outbox) Close() error { return nil }

// lastLink returns the query of the most recent emailed link.
func (o *outbox) lastLink(t *testing.T) url.Values {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.tasks)
	u, err := url.Parse(o.tasks[len(o.tasks)-1].Data["action_url"])
	require.NoError(t, err)
	return u.Query()
}

type server struct {
	handler http.Handler
	outbox  *outbox
}

func newServer(t *testing.T) *server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	hasher := &cryptox.PasswordHasher{Pepper: "pepper", Memory: 64, Iterations: 1, Parallelism: 1}
	creds := credential.NewStoreProvider(st, hasher)
	issuer, err := service.NewTokenIssuer([]byte("0123456789abcdef0123456789abcdef"),
		jwtx.DefaultIssuer, jwtx.DefaultAudience, nil)
	require.NoError(t, err)

	box := &outbox{}
	metrics := obs.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := authhttp.NewRouter(issuer.Verifier(), metrics, "test", st, logger)
	r.TokenService = &service.TokenService{
		Store:       st,
		Credentials: creds,
		Issuer:      issuer,
		Ledger:      service.NewRefreshTokenLedger(st),
		Permissions: &service.PermissionResolver{Store: st},
		Metrics:     metrics,
	}
	r.AccountService = &service.AccountService{Store: st, Credentials: creds, Queue: box, Origin: "http://app.test"}
	r.UserService = &service.UserService{Store: st, Credentials: creds}
	r.RolesService = &service.RolesService{Store: st}
	r.BootstrapService = &service.BootstrapService{Store: st, Credentials: creds, Token: bootstrapToken}
	r.ApplyRoutes()

	return &server{handler: r, outbox: box}
}

func (s *server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func requireCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, code, body.Code)
}

func (s *server) bootstrap(t *testing.T) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/bootstrap", "", authsdk.BootstrapRequest{
		Token:          bootstrapToken,
		AdminEmail:     adminEmail,
		AdminPassword:  adminPassword,
		AdminFirstName: "Root",
		AdminLastName:  "Admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (s *server) login(t *testing.T, email, password string) authsdk.AuthResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/auth", "", authsdk.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp authsdk.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// member registers and confirms a Member account.
func (s *server) member(t *testing.T, email string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/auth/register", "", authsdk.RegisterRequest{
		Email: email, Password: "Secret1!", FirstName: "Ada", LastName: "Lovelace",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	link := s.outbox.lastLink(t)
	rec = s.do(t, http.MethodPost, "/v1/auth/confirm-email", "", authsdk.ConfirmEmailRequest{
		UserID: link.Get("userId"), Code: link.Get("code"),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLoginRefreshFlow(t *testing.T) {
	s := newServer(t)
	s.bootstrap(t)
	s.member(t, "ada@x.com")

	auth := s.login(t, "ada@x.com", "Secret1!")
	require.Equal(t, 1800, auth.ExpiresIn)

	rec := s.do(t, http.MethodGet, "/v1/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me authsdk.UserProfileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "Ada", me.FirstName)

	refresh := authsdk.RefreshTokenRequest{Token: auth.Token, RefreshToken: auth.RefreshToken}
	rec = s.do(t, http.MethodPost, "/v1/auth/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var next authsdk.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	require.NotEqual(t, auth.RefreshToken, next.RefreshToken)

	rec = s.do(t, http.MethodPost, "/v1/auth/refresh", "", refresh)
	requireCode(t, rec, http.StatusUnauthorized, authsdk.CodeInvalidRefreshToken)

	rec = s.do(t, http.MethodPost, "/v1/auth/revoke-refresh-token", "", authsdk.RefreshTokenRequest{
		Token: next.Token, RefreshToken: next.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, "/v1/auth/refresh", "", authsdk.RefreshTokenRequest{
		Token: next.Token, RefreshToken: next.RefreshToken,
	})
	requireCode(t, rec, http.StatusUnauthorized, authsdk.CodeInvalidRefreshToken)
}

func TestLoginErrors(t *testing.T) {
	s := newServer(t)
	s.bootstrap(t)

	rec := s.do(t, http.MethodPost, "/v1/auth", "", authsdk.LoginRequest{Email: adminEmail, Password: "nope"})
	requireCode(t, rec, http.StatusUnauthorized, authsdk.CodeInvalidCredentials)

	rec = s.do(t, http.MethodPost, "/v1/auth", "", nil)
	requireCode(t, rec, http.StatusBadRequest, authsdk.CodeBadRequest)

	rec = s.do(t, http.MethodPost, "/v1/auth/register", "", authsdk.RegisterRequest{
		Email: adminEmail, Password: "Secret1!", FirstName: "A", LastName: "B",
	})
	requireCode(t, rec, http.StatusConflict, authsdk.CodeEmailAlreadyExist)

	rec = s.do(t, http.MethodPost, "/v1/auth/register", "", authsdk.RegisterRequest{Email: "x"})
	requireCode(t, rec, http.StatusBadRequest, authsdk.CodeBadRequest)
}

func TestAdminRoutesRequirePermissions(t *testing.T) {
	s := newServer(t)
	s.bootstrap(t)
	s.member(t, "ada@x.com")

	rec := s.do(t, http.MethodGet, "/v1/users", "", nil)
	requireCode(t, rec, http.StatusUnauthorized, httpx.CodeUnauthorized)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	member := s.login(t, "ada@x.com", "Secret1!")
	rec = s.do(t, http.MethodGet, "/v1/users", member.Token, nil)
	requireCode(t, rec, http.StatusForbidden, httpx.CodeForbidden)

	admin := s.login(t, adminEmail, adminPassword)
	rec = s.do(t, http.MethodGet, "/v1/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []authsdk.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 2)

	rec = s.do(t, http.MethodGet, "/v1/users/missing", admin.Token, nil)
	requireCode(t, rec, http.StatusNotFound, authsdk.CodeUserNotFound)

	rec = s.do(t, http.MethodPost, "/v1/users", admin.Token, authsdk.CreateUserRequest{
		Email: "staff@x.com", Password: "Secret1!", FirstName: "S", LastName: "T", Roles: []string{"Ghost"},
	})
	requireCode(t, rec, http.StatusBadRequest, authsdk.CodeInvalidRoles)
}

func TestDisabledUserCannotLogin(t *testing.T) {
	s := newServer(t)
	s.bootstrap(t)
	s.member(t, "ada@x.com")
	admin := s.login(t, adminEmail, adminPassword)

	var ada authsdk.UserResponse
	rec := s.do(t, http.MethodGet, "/v1/users", admin.Token, nil)
	var users []authsdk.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	for _, u := range users {
		if u.Email == "ada@x.com" {
			ada = u
		}
	}
	require.NotEmpty(t, ada.ID)

	rec = s.do(t, http.MethodPut, "/v1/users/"+ada.ID+"/toggle-status", admin.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth", "", authsdk.LoginRequest{Email: "ada@x.com", Password: "Secret1!"})
	requireCode(t, rec, http.StatusUnauthorized, authsdk.CodeDisabledUser)
}

func TestRoleConcurrencyStamp(t *testing.T) {
	s := newServer(t)
	s.bootstrap(t)
	admin := s.login(t, adminEmail, adminPassword)

	rec := s.do(t, http.MethodPost, "/v1/roles", admin.Token, authsdk.RoleRequest{
		Name: "Editors", Permissions: []string{domain.PermAddPolls},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var role authsdk.RoleDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &role))
	require.Equal(t, "/v1/roles/"+role.ID, rec.Header().Get("Location"))

	update := authsdk.UpdateRoleRequest{
		Name: "Editors", Permissions: []string{domain.PermUpdatePolls}, ConcurrencyStamp: role.ConcurrencyStamp,
	}
	rec = s.do(t, http.MethodPut, "/v1/roles/"+role.ID, admin.Token, update)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/v1/roles/"+role.ID, admin.Token, update)
	requireCode(t, rec, http.StatusConflict, authsdk.CodeConcurrencyConflict)

	rec = s.do(t, http.MethodPost, "/v1/roles", admin.Token, authsdk.RoleRequest{
		Name: "Bad", Permissions: []string{"polls:fly"},
	})
	requireCode(t, rec, http.StatusBadRequest, authsdk.CodeInvalidPermissions)

	rec = s.do(t, http.MethodPut, "/v1/roles/"+role.ID+"/toggle-status", admin.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/roles", admin.Token, nil)
	var active []authsdk.RoleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
	rec = s.do(t, http.MethodGet, "/v1/roles?includeDisabled=true", admin.Token, nil)
	var all []authsdk.RoleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, len(active)+1)
}

func TestBootstrapOnce(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/v1/bootstrap", "", authsdk.BootstrapRequest{
		Token: "wrong", AdminEmail: adminEmail, AdminPassword: adminPassword, AdminFirstName: "R", AdminLastName: "A",
	})
	requireCode(t, rec, http.StatusUnauthorized, authsdk.CodeBootstrapUnauthorized)

	s.bootstrap(t)

	rec = s.do(t, http.MethodPost, "/v1/bootstrap", "", authsdk.BootstrapRequest{
		Token: bootstrapToken, AdminEmail: "b@x.com", AdminPassword: adminPassword, AdminFirstName: "R", AdminLastName: "A",
	})
	requireCode(t, rec, http.StatusConflict, authsdk.CodeBootstrapAlready)
}

func TestPasswordResetFlow(t *testing.T) {
	s := newServer(t)
	s.bootstrap(t)
	s.member(t, "ada@x.com")

	rec := s.do(t, http.MethodPost, "/v1/auth/forget-password", "", authsdk.EmailRequest{Email: "nobody@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/auth/forget-password", "", authsdk.EmailRequest{Email: "ada@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	link := s.outbox.lastLink(t)
	require.Equal(t, "ada@x.com", link.Get("email"))

	reset := authsdk.ResetPasswordRequest{Email: "ada@x.com", Code: link.Get("code"), NewPassword: "Newpass1!"}
	rec = s.do(t, http.MethodPost, "/v1/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/v1/auth/reset-password", "", reset)
	requireCode(t, rec, http.StatusUnauthorized, authsdk.CodeInvalidCode)

	s.login(t, "ada@x.com", "Newpass1!")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health authsdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Checks.Database)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `route="GET /livez"`), "requests are labelled by pattern")
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWireErrorTable(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "User.InvalidCredentials"},
		{service.ErrDisabledUser, http.StatusUnauthorized, "User.DisabledUser"},
		{service.ErrLockedUser, http.StatusUnauthorized, "User.LockedUser"},
		{service.ErrEmailNotConfirmed, http.StatusUnauthorized, "User.EmailNotConfirmed"},
		{service.ErrInvalidJwtToken, http.StatusUnauthorized, "User.InvalidJwtToken"},
		{service.ErrInvalidRefreshToken, http.StatusUnauthorized, "User.InvalidRefreshToken"},
		{service.ErrInvalidCode, http.StatusUnauthorized, "User.InvalidCode"},
		{service.ErrDuplicatedConfirmation, http.StatusBadRequest, "User.DuplicatedConfirmation"},
		{service.ErrInvalidCreateAccount, http.StatusBadRequest, "User.InvalidCreateAccount"},
		{service.ErrEmailAlreadyExist, http.StatusConflict, "User.EmailAlreadyExist"},
		{service.ErrInvalidRoles, http.StatusBadRequest, "User.InvalidRoles"},
		{service.ErrUserNotFound, http.StatusNotFound, "User.UserNotFound"},
		{service.ErrRoleNotFound, http.StatusNotFound, "Role.RoleNotFound"},
		{service.ErrRoleAlreadyExists, http.StatusConflict, "Role.RoleAlreadyExists"},
		{service.ErrConcurrencyConflict, http.StatusConflict, "Role.ConcurrencyConflict"},
		{domain.ValidatePassword("x"), http.StatusBadRequest, "Request.Invalid"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "Server.Error"},
	}
	for _, tc := range cases {
		got := authhttp.WireError(tc.err)
		require.Equal(t, tc.status, got.StatusCode, tc.code)
		require.Equal(t, tc.code, got.Code)
	}
}
