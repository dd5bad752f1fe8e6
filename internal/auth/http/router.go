package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/surveybasket/api/surveybasket" // Swagger docs
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/authz"
	"github.com/aussiebroadwan/surveybasket/pkg/httpx"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
	"github.com/aussiebroadwan/surveybasket/pkg/obs"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	gate         *authz.Gate
	metrics      *obs.Metrics
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	TokenService     *service.TokenService
	AccountService   *service.AccountService
	UserService      *service.UserService
	RolesService     *service.RolesService
	BootstrapService *service.BootstrapService
}

func NewRouter(
	verifier jwtx.Verifier,
	metrics *obs.Metrics,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		gate:         authz.NewGate(domain.AllPermissions(), []string{domain.RoleAdmin, domain.RoleMember}),
		metrics:      metrics,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Instrument must be innermost so it sees the matched pattern.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
		r.metrics.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerMe()
	r.registerUsers()
	r.registerRoles()
	r.registerBootstrap()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Survey Basket API
//	@version		0.1.0
//	@description	Authentication and authorization for Survey Basket.
//	@description
//	@description				Access tokens are HS256 signed JWTs valid for 30 minutes. Refresh tokens are opaque, single use and valid for 14 days.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/surveybasket
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{TokenService: r.TokenService, AccountService: r.AccountService}

	// POST /auth - strict rate limit by IP + email (credential guessing)
	r.Mux.Handle("POST /v1/auth",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit),
		),
	)

	// Refresh and revoke need a valid token pair, moderate limit is enough
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/revoke-refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAccount() {
	h := &AuthHandler{TokenService: r.TokenService, AccountService: r.AccountService}

	// Endpoints that send email - moderate limit by IP + email
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIPAndEmail(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/resend-confirmation-email",
		httpx.Chain(http.HandlerFunc(h.HandleResendConfirmation),
			httpx.RateLimitByIPAndEmail(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/forget-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgetPassword),
			httpx.RateLimitByIPAndEmail(httpx.ModerateLimit),
		),
	)

	// Code redemption - strict limit (code guessing)
	r.Mux.Handle("POST /v1/auth/confirm-email",
		httpx.Chain(http.HandlerFunc(h.HandleConfirmEmail),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIPAndEmail(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMe() {
	h := &MeHandler{UserService: r.UserService}

	authed := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/me", authed(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PUT /v1/me/info", authed(h.HandleUpdateInfo, httpx.LenientLimit))

	// Wrong current passwords feed lockout, keep it strict
	r.Mux.Handle("PUT /v1/me/change-password", authed(h.HandleChangePassword, httpx.StrictLimit))
}

// secured chains authentication, the permission check and a per-user limit.
func (r *Router) secured(fn http.HandlerFunc, permission string) http.Handler {
	return httpx.Chain(fn,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequirePermission(r.gate, permission),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/users", r.secured(h.HandleList, domain.PermReadUsers))
	r.Mux.Handle("GET /v1/users/{id}", r.secured(h.HandleGet, domain.PermReadUsers))
	r.Mux.Handle("POST /v1/users", r.secured(h.HandleCreate, domain.PermAddUsers))
	r.Mux.Handle("PUT /v1/users/{id}/toggle-status", r.secured(h.HandleToggleStatus, domain.PermUpdateUsers))
	r.Mux.Handle("PUT /v1/users/{id}/unlock", r.secured(h.HandleUnlock, domain.PermUpdateUsers))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	r.Mux.Handle("GET /v1/roles", r.secured(h.HandleList, domain.PermReadRoles))
	r.Mux.Handle("GET /v1/roles/{id}", r.secured(h.HandleGet, domain.PermReadRoles))
	r.Mux.Handle("POST /v1/roles", r.secured(h.HandleCreate, domain.PermAddRoles))
	r.Mux.Handle("PUT /v1/roles/{id}", r.secured(h.HandleUpdate, domain.PermUpdateRoles))
	r.Mux.Handle("PUT /v1/roles/{id}/toggle-status", r.secured(h.HandleToggleStatus, domain.PermUpdateRoles))
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("GET /metrics", r.metrics.Handler())
	r.Mux.Handle("GET /swagger/", httpSwagger.Handler())
}
