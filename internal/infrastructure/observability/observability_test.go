package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerMiddleware_LevelsAndMetrics(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(ZapLoggerMiddleware(zap.New(core), m))
	r.Get("/customers/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/customers/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "/customers/{id}", entries[0].ContextMap()["route"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `crm_http_request_duration_seconds_count{method="GET",route="/customers/{id}",status="404"} 1`), body)
	assert.True(t, strings.Contains(body, `crm_server_errors_total{route="/boom"} 1`), body)
}

func TestNewMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics().IncrDigest("sent")
		NewMetrics().IncrDigest("sent")
	})
}

func TestNewLogger_Levels(t *testing.T) {
	assert.True(t, NewLogger("debug").Core().Enabled(zap.DebugLevel))
	assert.False(t, NewLogger("warn").Core().Enabled(zap.InfoLevel))
	assert.True(t, NewLogger("bogus").Core().Enabled(zap.InfoLevel))
}
