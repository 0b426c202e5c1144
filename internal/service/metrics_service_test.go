package service

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/models"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/barbershops/:shopId/barbers/:barberId/availability", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/barbershops/:shopId/appointments", http.StatusConflict, 30*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordBooking(BookingResultSuccess)
	m.RecordBooking(BookingResultConflict)
	m.RecordBooking(BookingResultConflict)
	m.RecordBooking(BookingResultUnavailable)
	m.RecordEvent(models.EventAppointmentBooked, nil)
	m.RecordEvent(models.EventAppointmentBooked, errors.New("broker down"))
	m.RecordDroppedJob(models.EventAppointmentStatusChanged)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.BookingsSucceeded)
	assert.Equal(t, uint64(2), snap.BookingsConflicted)
	assert.Equal(t, uint64(1), snap.EventsPublished)
	assert.Equal(t, uint64(1), snap.EventsFailed)
	assert.Equal(t, uint64(1), snap.EventsDropped)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.droppedJobs.WithLabelValues(models.EventAppointmentStatusChanged)))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues(BookingResultUnavailable)))
	assert.InDelta(t, 2.0/3.0, testutil.ToFloat64(m.cacheHitRatio), 0.0001)
}

func TestMetricsServiceHandlerExposesNamespace(t *testing.T) {
	m := NewMetricsService()
	m.RecordBooking(BookingResultSuccess)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `barbershop_booking_attempts_total{result="success"} 1`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordBooking(BookingResultSuccess)
	m.RecordEvent("x", nil)
	m.ObserveSlotComputation(time.Second)
	assert.Equal(t, models.SystemMetrics{}, m.Snapshot())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
