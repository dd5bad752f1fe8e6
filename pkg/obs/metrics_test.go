package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/surveybasket/pkg/obs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentLabelsByPattern(t *testing.T) {
	m := obs.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Instrument(mux)

	for _, id := range []string{"a", "b", "c"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/users/"+id, nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	require.Contains(t, body, `surveybasket_http_requests_total{method="GET",route="GET /v1/users/{id}",status="404"} 3`)
	require.Contains(t, body, `route="unmatched"`)
}

func TestAuthEvent(t *testing.T) {
	m := obs.New()
	m.AuthEvent("login", "ok")
	m.AuthEvent("login", "ok")
	m.AuthEvent("login", "invalid_credentials")
	m.JobEvent("email", "ok")

	n, err := testutil.GatherAndCount(m.Registry(), "surveybasket_auth_events_total")
	require.NoError(t, err)
	require.Equal(t, 2, n, "one series per op/outcome pair")

	n, err = testutil.GatherAndCount(m.Registry(), "surveybasket_jobs_total")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
