package routes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/getly/auth-service/internal/infra/config"
	httproutes "github.com/getly/auth-service/internal/transport/http/routes"
)

type stubChecker struct {
	err error
}

func (s stubChecker) Ping(context.Context) error        { return s.err }
func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func newTestEngine(db, cache stubChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	return httproutes.Register(httproutes.Dependencies{
		Config:   cfg,
		Logger:   zap.NewNop(),
		Database: db,
		Cache:    cache,
	})
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestEngine(stubChecker{}, stubChecker{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadyEndpoint(t *testing.T) {
	r := newTestEngine(stubChecker{}, stubChecker{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestReadyEndpointDegraded(t *testing.T) {
	r := newTestEngine(stubChecker{err: errors.New("connection refused")}, stubChecker{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/readyz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("expected failing check in body, got %s", w.Body.String())
	}
}

func TestSignInRejectsMalformedPayload(t *testing.T) {
	r := newTestEngine(stubChecker{}, stubChecker{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/sign-in", strings.NewReader(`{"method":"carrier-pigeon"}`))
	req.Header.Set("Content-Type", "application/json")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid_payload") {
		t.Fatalf("expected invalid_payload error code, got %s", w.Body.String())
	}
}

func TestSignUpStartRejectsMissingFields(t *testing.T) {
	r := newTestEngine(stubChecker{}, stubChecker{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/auth/sign-up/start", strings.NewReader(`{"method":"password","email":"jo@example.com"}`))
	req.Header.Set("Content-Type", "application/json")

	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}
