package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/book-review-api/internal/config"
	"github.com/sngm3741/book-review-api/internal/infrastructure/memory"
	"github.com/sngm3741/book-review-api/internal/metrics"
	publicapp "github.com/sngm3741/book-review-api/internal/public/application"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, origins []string, store Pinger) http.Handler {
	t.Helper()
	rec := metrics.New()
	repo := memory.NewReviewRepository()
	if store == nil {
		store = repo
	}
	svc := publicapp.NewReviewService(publicapp.ReviewServiceConfig{
		Repository: repo,
		Observer:   rec,
		Logger:     zerolog.Nop(),
	})
	srv := New(config.Config{AllowedOrigins: origins}, Dependencies{
		Logger:  zerolog.Nop(),
		Store:   store,
		Reviews: svc,
		Metrics: rec,
	})
	return srv.Routes()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := serve(newTestServer(t, nil, nil), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealthz_Degraded(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("server selection timeout") })

	w := serve(newTestServer(t, nil, down), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "server selection timeout")
}

func TestRoutes_ApiAlias(t *testing.T) {
	h := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reviews", strings.NewReader(`{"name":"Ann","rating":5,"comment":"Great read"}`))
	require.Equal(t, http.StatusOK, serve(h, req).Code)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/reviews", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ann"`)
}

func TestRoutes_Metrics(t *testing.T) {
	h := newTestServer(t, nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(`{"name":"","rating":9,"comment":""}`))
	require.Equal(t, http.StatusBadRequest, serve(h, req).Code)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `book_reviews_submissions_total{outcome="invalid"} 1`)
	assert.Contains(t, w.Body.String(), `book_reviews_http_requests_total{method="POST",path="/reviews",status="400"} 1`)
}

func TestCORS(t *testing.T) {
	h := newTestServer(t, []string{"https://books.example.com"}, nil)

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
		req.Header.Set("Origin", "https://books.example.com")

		w := serve(h, req)

		assert.Equal(t, "https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET,POST,OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
		req.Header.Set("Origin", "https://evil.example.com")

		w := serve(h, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/reviews", nil)
		req.Header.Set("Origin", "https://books.example.com")

		w := serve(h, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	})
}

func TestCORS_AllowAll(t *testing.T) {
	h := newTestServer(t, []string{"*"}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")

	w := serve(h, req)

	assert.Equal(t, "https://anywhere.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
