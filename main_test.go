package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/factdeck/factdeck/internal/config"
	"github.com/factdeck/factdeck/internal/fact"
	"github.com/factdeck/factdeck/internal/fact/generator"
	"github.com/factdeck/factdeck/internal/fact/repository"
	"github.com/factdeck/factdeck/internal/fact/service"
	"github.com/factdeck/factdeck/internal/oidc"
	"github.com/factdeck/factdeck/internal/sessions"
	"github.com/factdeck/factdeck/internal/users"
	"github.com/factdeck/factdeck/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.CORSOrigin = "*"
	cfg.JWT.Secret = "main-test-secret-32-bytes-xxxxxxx"
	cfg.JWT.AccessTTL = time.Hour

	n := 0
	gen := generator.Func(func(_ context.Context, category string, _ []string) (string, error) {
		n++
		return "fact number " + string(rune('a'+n)) + " about " + category, nil
	})
	repo := repository.NewMemoryRepo()
	uSvc := users.NewService(users.NewMemoryUserRepository())
	uSvc.SetHashCost(bcrypt.MinCost)

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	return &app{
		cfg:       cfg,
		facts:     service.New(repo, gen, fact.DefaultCatalog(), service.Options{}),
		exporter:  service.NewExporter(repo, nil, 0),
		users:     uSvc,
		blacklist: sessions.NewBlacklist(nil),
		gatherer:  reg,
		checks:    map[string]func(context.Context) error{},
	}
}

func request(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndReady(t *testing.T) {
	a := testApp(t)
	r := newRouter(a)

	w := request(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())

	w = request(r, http.MethodGet, "/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	a.checks["mongo"] = func(context.Context) error { return errors.New("no route to host") }
	w = request(r, http.MethodGet, "/ready", "", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Status string          `json:"status"`
		Deps   map[string]bool `json:"deps"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.False(t, body.Deps["mongo"])
}

func TestRouter_FactsAndMetrics(t *testing.T) {
	r := newRouter(testApp(t))

	w := request(r, http.MethodGet, "/api/facts/science?count=2", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got struct {
		Facts []string `json:"facts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got.Facts, 2)

	w = request(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "factdeck_facts_served_total")

	w = request(r, http.MethodGet, "/swagger/doc.json", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SnapshotRequiresAuth(t *testing.T) {
	r := newRouter(testApp(t))

	w := request(r, http.MethodPost, "/api/facts/snapshot/science", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, http.MethodPost, "/api/auth/signup", "", `{"name":"Ada","email":"ada@example.com","password":"correct horse"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var signup struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))

	// no object storage configured
	w = request(r, http.MethodPost, "/api/facts/snapshot/science", signup.Token, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_RateLimit(t *testing.T) {
	a := testApp(t)
	a.cfg.RateLimit.Enabled = true
	a.cfg.RateLimit.RPS = 0.001
	a.cfg.RateLimit.Burst = 1
	r := newRouter(a)

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health", "", "").Code)
	w := request(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestGeneratorConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "ollama"
	cfg.LLM.Model = "llama3.2"
	cfg.LLM.Timeout = 5 * time.Second
	gc := generatorConfig(cfg)
	assert.Equal(t, "ollama", gc.Provider)
	assert.Equal(t, "llama3.2", gc.Model)
	assert.Equal(t, 5*time.Second, gc.Timeout)
}

type staticIdentity struct{ id *oidc.Identity }

func (s staticIdentity) Verify(context.Context, string) (*oidc.Identity, error) {
	if s.id == nil {
		return nil, errors.New("bad token")
	}
	return s.id, nil
}

func TestRouter_GoogleSignIn(t *testing.T) {
	a := testApp(t)
	assert.Equal(t, http.StatusServiceUnavailable,
		request(newRouter(a), http.MethodPost, "/api/auth/google", "", `{"idToken":"x"}`).Code)

	a.google = staticIdentity{id: &oidc.Identity{Subject: "g-7", Email: "lin@example.com", EmailVerified: true}}
	r := newRouter(a)
	w := request(r, http.MethodPost, "/api/auth/google", "", `{"idToken":"x"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/auth/me", body.Token, "").Code)
}
