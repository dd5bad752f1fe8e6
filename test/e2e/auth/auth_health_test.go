package auth_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	env := setupAuthContainer(t)

	t.Run("Liveness", func(t *testing.T) {
		health, err := env.Client.GetLiveness(t.Context())
		assertHealthy(t, health, err)
		require.NotEmpty(t, health.Version)
	})

	t.Run("Readiness", func(t *testing.T) {
		health, err := env.Client.GetReadiness(t.Context())
		assertHealthy(t, health, err)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := http.Get(env.BaseURL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "surveybasket_http_requests_total")
	})

	t.Run("SwaggerUI", func(t *testing.T) {
		resp, err := http.Get(env.BaseURL + "/swagger/doc.json")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
