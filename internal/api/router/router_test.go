package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/teletherapy-platform/internal/availability"
	"github.com/calmora/teletherapy-platform/internal/payments"
)

func TestHealthEndpoint(t *testing.T) {
	handler := New(&Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestMetricsEndpointMountedWhenConfigured(t *testing.T) {
	metricsStub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("metrics"))
	})
	handler := New(&Config{MetricsHandler: metricsStub})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	bare := New(&Config{})
	rec = httptest.NewRecorder()
	bare.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSlotRouteDisablesCaching(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := availability.NewService(
		availability.NewLegacyStore(mock),
		availability.NewWeeklyStore(mock),
		availability.NewOverrideStore(mock),
		nil, nil,
	)
	handler := New(&Config{AvailabilityHandler: availability.NewHandler(svc, nil)})

	mock.ExpectQuery("SELECT schedule").
		WithArgs("therapist-1", "primary").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery("SELECT id, therapist_id, day_of_week").
		WithArgs("therapist-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "therapist_id", "day_of_week", "start_time", "end_time",
			"session_duration", "session_type", "max_sessions", "is_active",
		}))
	mock.ExpectQuery("SELECT id, therapist_id, override_date").
		WithArgs("therapist-1", "2025-03-12", "2025-03-12").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "therapist_id", "override_date", "override_type",
			"start_time", "end_time", "reason", "is_available",
		}))

	req := httptest.NewRequest(http.MethodGet, "/therapists/therapist-1/availability/slots?date=2025-03-12", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestPaymentsWebhookRejectsUnsignedRequests(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	svc := payments.NewService(payments.NewRepository(mock), payments.NewFakeGateway("https://dev.calmora.test"), "hosted", nil)
	handler := New(&Config{PaymentsWebhook: payments.NewWebhookHandler("whsec_test", svc, nil)})

	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
