package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/storage"
)

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["database"])
	assert.Equal(t, "ok", checks["store"])
}

func TestHealth_StoreDown(t *testing.T) {
	env := newTestEnv(t)
	env.mem.FailNext(storage.OpListTables, apperr.Upstream(storage.OpListTables, errors.New("down"), true))

	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode(t, w)["status"])

	w = env.do(t, http.MethodGet, "/health?shallow=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/learner", nil)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestMetricsRoute(t *testing.T) {
	env := newTestEnv(t, func(cfg *RouterConfig) { cfg.EnableMetrics = true })

	w := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
