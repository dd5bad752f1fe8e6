package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
	"github.com/getsentry/sentry-go"
)

// Recover turns a handler panic into an opaque 500. The panic is logged with
// its stack and, when Sentry has been initialised, reported there too.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				slogx.FromContext(r.Context()).Error("panic recovered",
					"panic", fmt.Sprint(rec),
					"stack", string(debug.Stack()),
				)

				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.RecoverWithContext(r.Context(), rec)

				WriteError(w, http.StatusInternalServerError, CodeServerError, "internal server error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}
