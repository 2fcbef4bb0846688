package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-crm-nosql/internal/domain"
	"github.com/go-crm-nosql/internal/infrastructure/resilience"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.Client(), srv.URL+"/v1/", "tok", nil)
	c.retry = resilience.Config{MaxRetries: 2, InitialBackoff: time.Millisecond}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestGetCustomer_SendsBearerAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/c1", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.Customer{ID: "c1", Name: "Jane", TotalUnpaid: decimal.NewFromInt(75)})
	})

	got, err := c.GetCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
	assert.True(t, got.TotalUnpaid.Equal(decimal.NewFromInt(75)))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"bad request", http.StatusBadRequest, domain.ErrValidation},
		{"unprocessable", http.StatusUnprocessableEntity, domain.ErrValidation},
		{"conflict", http.StatusConflict, domain.ErrConflict},
		{"unauthorized", http.StatusUnauthorized, domain.ErrUnauthorized},
		{"server error", http.StatusInternalServerError, domain.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, errorEnvelope{Error: "boom"})
			})
			_, err := c.CreateCustomer(context.Background(), domain.CustomerInput{Name: "x"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "boom")
		})
	}
}

func TestReadsRetryOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, errorEnvelope{Error: "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []domain.Job{{ID: "j1"}})
	})

	jobs, err := c.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadGateway, errorEnvelope{Error: "down"})
	})

	err := c.DeleteJob(context.Background(), "j1")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusNotFound, errorEnvelope{Error: "customer not found"})
	})

	for i := 0; i < 10; i++ {
		_, err := c.GetCustomer(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.EqualValues(t, 10, atomic.LoadInt32(&calls))
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(nil, url, "", nil)
	c.retry = resilience.Config{MaxRetries: 0}
	_, err := c.ListCustomers(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.Customer{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListCustomers(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQueryParameters(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.RequestURI())
		if r.URL.Path == "/v1/dashboard/stats" {
			writeJSON(w, http.StatusOK, domain.DashboardStats{UnpaidJobsCount: 3})
			return
		}
		writeJSON(w, http.StatusOK, []interface{}{})
	})
	ctx := context.Background()
	d := domain.NewDate(2026, time.October, 15)

	_, err := c.SearchCustomers(ctx, "jane doe")
	require.NoError(t, err)
	_, err = c.JobsByDate(ctx, d)
	require.NoError(t, err)
	_, err = c.JobsByDateRange(ctx, d, d.AddDays(6))
	require.NoError(t, err)
	stats, err := c.DashboardStats(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UnpaidJobsCount)

	assert.Equal(t, []string{
		"/v1/customers?q=jane+doe",
		"/v1/jobs?date=2026-10-15",
		"/v1/jobs?end=2026-10-21&start=2026-10-15",
		"/v1/dashboard/stats?date=2026-10-15",
	}, seen)
}

func TestLoginStoresToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			var req domain.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "owner@example.com", req.Email)
			writeJSON(w, http.StatusOK, authEnvelope{Bearer: "fresh", User: &domain.User{UserID: "u1"}})
		default:
			assert.Equal(t, "Bearer fresh", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []domain.Customer{})
		}
	})

	u, err := c.Login(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)

	_, err = c.ListCustomers(context.Background())
	require.NoError(t, err)
}

func TestImportAndClear(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Import(context.Background(), domain.Snapshot{}))
	require.NoError(t, c.Clear(context.Background()))
	assert.Equal(t, []string{"POST /v1/data/import", "DELETE /v1/data"}, methods)
}
