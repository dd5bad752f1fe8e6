package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/surveybasket/pkg/authz"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

// Authorize rejects the request unless the gate accepts the caller for req.
// It must run after AuthnMiddleware.
func Authorize(g *authz.Gate, req authz.Requirement) Middleware {
	if !g.Has(req) {
		// Routes must name a registered policy.
		panic("httpx: no policy registered for " + req.String())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			if err := g.Authorize(p, req); err != nil {
				slogx.FromContext(r.Context()).Info("authorization denied",
					"requirement", req.String(),
					"err", err,
				)
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				WriteError(w, http.StatusForbidden, CodeForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission is Authorize for a permission claim.
func RequirePermission(g *authz.Gate, name string) Middleware {
	return Authorize(g, authz.Permission(name))
}

// RequireRole is Authorize for a role claim.
func RequireRole(g *authz.Gate, name string) Middleware {
	return Authorize(g, authz.Role(name))
}
