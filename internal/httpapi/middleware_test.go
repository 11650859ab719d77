package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interndesk/internal/config"
	"interndesk/internal/domain"
)

func TestRequestIDEchoedAndGenerated(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	rec = e.do(http.MethodGet, "/health", "", nil)
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRecoverWritesEnvelope(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID, Recover, AccessLog)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	env := decode[APIError](t, rec)
	assert.Equal(t, "internal_error", env.Error.Code)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), env.Error.RequestID)
}

func TestCorsPreflight(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/internships/list", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/internships/list", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClientLimiter(t *testing.T) {
	cl := NewClientLimiter(1, 2, nil)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cl.now = func() time.Time { return now }

	h := RateLimit(cl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:1002"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2:1000"))

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1:1003"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, cl.Prune())
}

func TestClientLimiterIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	cl := NewClientLimiter(0.001, 1, nil)
	h := RateLimit(cl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	allowed := 0
	for i := range 50 {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusNoContent {
			allowed++
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestClientLimiterTrustedProxyForwardsClient(t *testing.T) {
	cl := NewClientLimiter(0.001, 1, []string{"127.0.0.1"})

	req := func(remote, xff, realIP string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		r.RemoteAddr = remote
		if xff != "" {
			r.Header.Set("X-Forwarded-For", xff)
		}
		if realIP != "" {
			r.Header.Set("X-Real-IP", realIP)
		}
		return r
	}

	assert.Equal(t, "198.51.100.7", cl.clientKey(req("127.0.0.1:5000", "198.51.100.7, 127.0.0.1", "")))
	assert.Equal(t, "198.51.100.8", cl.clientKey(req("127.0.0.1:5000", "", "198.51.100.8")))
	assert.Equal(t, "127.0.0.1", cl.clientKey(req("127.0.0.1:5000", "not-an-ip", "")))
	assert.Equal(t, "203.0.113.9", cl.clientKey(req("203.0.113.9:5000", "198.51.100.7", "198.51.100.8")))

	// distinct forwarded clients behind the proxy get their own buckets
	assert.True(t, cl.Allow(req("127.0.0.1:5000", "198.51.100.1", "")))
	assert.True(t, cl.Allow(req("127.0.0.1:5001", "198.51.100.2", "")))
	assert.False(t, cl.Allow(req("127.0.0.1:5002", "198.51.100.1", "")))
}

func TestRateLimitNilPassesThrough(t *testing.T) {
	called := false
	h := RateLimit(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = e.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "interndesk_http_requests_total")
}

func TestAdminConfigEndpoints(t *testing.T) {
	e := newTestEnv(t)
	_, atok := e.createUser("a@example.com", domain.RoleAdmin)
	_, stok := e.createUser("s@example.com", domain.RoleStudent)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/admin/config", stok, nil).Code)

	rec := e.do(http.MethodGet, "/api/admin/config", atok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[config.Config](t, rec)
	assert.Equal(t, "********", got.Auth.JWTSecret)
	assert.Equal(t, "********", got.AI.APIKey)
	assert.NotContains(t, rec.Body.String(), "test-secret")

	rec = e.do(http.MethodGet, "/api/admin/config/validate", atok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[config.Validation](t, rec).Errors)

	bad := config.Default()
	bad.App.Port = 0
	rec = e.do(http.MethodPut, "/api/admin/config", atok, bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	good := config.Default()
	good.App.Port = 9090
	good.Auth.JWTSecret = "should-not-be-saved"
	rec = e.do(http.MethodPut, "/api/admin/config", atok, good)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	running := e.cfgVal.Load().(config.Config)
	assert.Equal(t, 9090, running.App.Port)
	assert.Equal(t, "test-secret-0123456789", running.Auth.JWTSecret)
}

func TestSecretsPut(t *testing.T) {
	stored := map[string]string{}
	h := SecretsHandler{Set: func(account, value string) error {
		stored[account] = value
		return nil
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/admin/secrets/{name}", h.Put)

	req := httptest.NewRequest(http.MethodPut, "/api/admin/secrets/gemini", jsonBody(t, map[string]string{"value": "k"}))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "k", stored["interndesk:gemini-api-key"])

	req = httptest.NewRequest(http.MethodPut, "/api/admin/secrets/aws", jsonBody(t, map[string]string{"value": "k"}))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckpointLoopbackOnly(t *testing.T) {
	e := newTestEnv(t)
	h := DBHandler{Store: e.db}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/db/checkpoint", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rec := httptest.NewRecorder()
	h.Checkpoint(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.RemoteAddr = "127.0.0.1:5555"
	rec = httptest.NewRecorder()
	h.Checkpoint(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
