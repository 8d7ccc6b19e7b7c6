package core

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"parkingpass/internal/types"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = types.GetRequestID(r.Context())
	}))

	t.Run("propagates incoming", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "abc-123" || rec.Header().Get("X-Request-Id") != "abc-123" {
			t.Errorf("context = %q, header = %q", seen, rec.Header().Get("X-Request-Id"))
		}
	})

	t.Run("generates when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if seen == "" {
			t.Fatal("no request ID generated")
		}
		if rec.Header().Get("X-Request-Id") != seen {
			t.Errorf("header %q does not match context %q", rec.Header().Get("X-Request-Id"), seen)
		}
	})
}

func TestContextTimeoutMiddleware(t *testing.T) {
	var deadline time.Time
	var ok bool
	h := ContextTimeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
	}))

	start := time.Now()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !ok {
		t.Fatal("context has no deadline")
	}
	if d := deadline.Sub(start); d > time.Second {
		t.Errorf("deadline %v away, want about 50ms", d)
	}
}

func TestMountRoutesHealthAndMiddleware(t *testing.T) {
	srv := newTestServer(t)
	srv.MountRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://map.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, h := range []string{"X-Request-Id", "X-Content-Type-Options", "Access-Control-Allow-Origin"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("%s header missing", h)
		}
	}
}

func TestMountRoutesRecoversHandlerPanic(t *testing.T) {
	srv := newTestServer(t)
	srv.V1RouteRegistrars = []func(chi.Router){
		func(r chi.Router) {
			r.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })
		},
	}
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRequestTimeoutFallsBackToDefault(t *testing.T) {
	srv := newTestServer(t)
	srv.Config.Server.RequestTimeout = 0
	if got := srv.requestTimeout(); got != defaultRequestTimeout {
		t.Errorf("requestTimeout() = %v, want %v", got, defaultRequestTimeout)
	}
}

func TestMountRoutesMetricsHandler(t *testing.T) {
	srv := newTestServer(t)
	srv.MountRoutes()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status without handler = %d, want 404", rec.Code)
	}

	srv = newTestServer(t)
	srv.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("up 1\n"))
	})
	srv.MountRoutes()

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "up 1\n" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
