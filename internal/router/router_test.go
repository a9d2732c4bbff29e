package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/m-karthika14/mindmirrorai/internal/cache"
	"github.com/m-karthika14/mindmirrorai/internal/config"
	"github.com/m-karthika14/mindmirrorai/internal/database"
	"github.com/m-karthika14/mindmirrorai/internal/handlers"
	"github.com/m-karthika14/mindmirrorai/internal/metrics"
	"github.com/m-karthika14/mindmirrorai/internal/narrative"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T, server config.ServerConfig) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: "file::memory:", LogLevel: "silent"}, zap.NewNop())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	log := zap.NewNop()
	return Setup(log, Deps{
		Server:      server,
		ServiceName: "mindmirror-test",
		Scoring:     handlers.NewScoringHandler(log, metrics.DefaultScorer(), cache.Nop{}, handlers.BatchOptions{Limit: 10, Workers: 2}),
		Reports:     handlers.NewReportsHandler(log, cache.Nop{}, narrative.NewNarrator(nil, time.Second, metrics.RenderSummary)),
	})
}

func TestRateLimitOnScoring(t *testing.T) {
	r := setupRouter(t, config.ServerConfig{RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute}})

	var codes []int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/sessions/score", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusUnprocessableEntity {
		t.Errorf("first request status = %d, want 422", codes[0])
	}
	if codes[4] != http.StatusTooManyRequests {
		t.Errorf("fifth request status = %d, want 429 (codes %v)", codes[4], codes)
	}

	// Validation is not rate limited.
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/validate", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("validate status = %d, want 422", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := setupRouter(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
}

func TestCORS(t *testing.T) {
	r := setupRouter(t, config.ServerConfig{AllowedOrigins: []string{"https://app.mindmirror.test"}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.mindmirror.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.mindmirror.test" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign origin status = %d, want 403", w.Code)
	}
}

func TestCORSConfigWithoutOrigins(t *testing.T) {
	conf := corsConfig(nil)
	if !conf.AllowAllOrigins || conf.AllowCredentials {
		t.Errorf("conf = %+v, want all origins without credentials", conf)
	}
	if err := conf.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := setupRouter(t, config.ServerConfig{})
	req := httptest.NewRequest(http.MethodGet, "/api/nowhere", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}
