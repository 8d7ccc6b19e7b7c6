package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"parkingpass/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Environment: "local",
		Server: config.ServerConfig{
			CorsAllowedOrigins: []string{"*"},
			RequestTimeout:     5 * time.Second,
		},
		Build: config.BuildInfo{Version: "1.2.3"},
	}
	srv, err := NewServer(cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv
}

func TestNewServerRejectsNilDependencies(t *testing.T) {
	if _, err := NewServer(nil, discardLogger()); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(&config.Config{}, nil); err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestNewServerInitializesValidator(t *testing.T) {
	srv := newTestServer(t)
	if srv.Validator == nil {
		t.Fatal("Validator not initialized")
	}
	if srv.Router() == nil || srv.Handler() == nil {
		t.Fatal("router not initialized")
	}
}

func TestServerMountsV1Registrars(t *testing.T) {
	srv := newTestServer(t)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			JSON(w, r, http.StatusOK, APIResponse{Data: "pong"})
		})
	})
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header missing")
	}
}

func TestShutdownRunsEveryCloser(t *testing.T) {
	srv := newTestServer(t)

	var order []string
	boom := errors.New("boom")
	srv.Closers = []func(context.Context) error{
		func(context.Context) error { order = append(order, "first"); return boom },
		func(context.Context) error { order = append(order, "second"); return nil },
	}

	err := srv.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Shutdown error = %v, want wrapped boom", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("closers ran as %v", order)
	}
}

func TestShutdownWithoutClosers(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown returned %v", err)
	}
}
