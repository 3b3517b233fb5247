package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Outcomes(t *testing.T) {
	rec := New()

	rec.ObserveSubmission("created")
	rec.ObserveSubmission("created")
	rec.ObserveSubmission("invalid")
	rec.ObserveNotification("failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.submissions.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.submissions.WithLabelValues("invalid")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.submissions.WithLabelValues("storage_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.notifications.WithLabelValues("failed")))
}

func TestRecorder_MiddlewareUsesRoutePattern(t *testing.T) {
	rec := New()
	r := chi.NewRouter()
	r.Use(rec.Middleware)
	r.Get("/reviews/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reviews/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/reviews/def", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.httpRequests.WithLabelValues("GET", "/reviews/{id}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.inFlight))
}

func TestRecorder_Handler(t *testing.T) {
	rec := New()
	rec.ObserveSubmission("created")

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `book_reviews_submissions_total{outcome="created"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
