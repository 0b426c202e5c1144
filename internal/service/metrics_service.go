package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/barbershop-api/internal/models"
)

const metricsNamespace = "barbershop"

// Booking outcomes recorded by RecordBooking.
const (
	BookingResultSuccess     = "success"
	BookingResultConflict    = "conflict"
	BookingResultUnavailable = "unavailable"
	BookingResultInvalid     = "invalid"
	BookingResultError       = "error"
)

// MetricsService owns the Prometheus registry of the process and keeps running totals for the JSON
// summary. Every method is safe on a nil receiver.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    *prometheus.HistogramVec
	cacheHitRatio   prometheus.Gauge
	bookings        *prometheus.CounterVec
	slotCompute     prometheus.Histogram
	events          *prometheus.CounterVec
	droppedJobs     *prometheus.CounterVec

	requests     atomic.Uint64
	requestNanos atomic.Uint64
	cacheHits    atomic.Uint64
	cacheMisses  atomic.Uint64
	booked       atomic.Uint64
	conflicted   atomic.Uint64
	eventsSent   atomic.Uint64
	eventsFailed atomic.Uint64
	eventsLost   atomic.Uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	m := &MetricsService{registry: prometheus.NewRegistry()}

	m.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "availability_cache_lookups_total",
		Help:      "Candidate slot cache lookups by result.",
	}, []string{"result"})

	m.cacheLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "availability_cache_seconds",
		Help:      "Candidate slot cache latency by operation.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	}, []string{"op"})

	m.cacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "availability_cache_hit_ratio",
		Help:      "Share of candidate slot lookups served from cache.",
	})

	m.bookings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "booking_attempts_total",
		Help:      "Booking attempts by outcome.",
	}, []string{"result"})

	m.slotCompute = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "availability_compute_seconds",
		Help:      "Time spent resolving the free slots of one barber request.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	})

	m.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "appointment_events_total",
		Help:      "Appointment events handled by the background queue, by type and result.",
	}, []string{"type", "result"})

	m.droppedJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "jobs_dropped_total",
		Help:      "Background jobs given up on after retries or at shutdown, by type.",
	}, []string{"type"})

	m.registry.MustRegister(
		m.requestDuration, m.cacheLookups, m.cacheLatency, m.cacheHitRatio, m.bookings, m.slotCompute, m.events, m.droppedJobs,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.Add(1)
	m.requestNanos.Add(uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache read and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.cacheMisses.Add(1)
	}
	if ratio, ok := hitRatio(m.cacheHits.Load(), m.cacheMisses.Load()); ok {
		m.cacheHitRatio.Set(ratio)
	}
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// RecordBooking counts one booking attempt by outcome.
func (m *MetricsService) RecordBooking(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
	switch result {
	case BookingResultSuccess:
		m.booked.Add(1)
	case BookingResultConflict:
		m.conflicted.Add(1)
	}
}

// ObserveSlotComputation records how long one availability resolution took.
func (m *MetricsService) ObserveSlotComputation(duration time.Duration) {
	if m == nil {
		return
	}
	m.slotCompute.Observe(duration.Seconds())
}

// RecordEvent counts one appointment event delivery attempt.
func (m *MetricsService) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
		m.eventsFailed.Add(1)
	} else {
		m.eventsSent.Add(1)
	}
	m.events.WithLabelValues(eventType, result).Inc()
}

// RecordDroppedJob counts a background job that will not be attempted again.
func (m *MetricsService) RecordDroppedJob(jobType string) {
	if m == nil {
		return
	}
	m.droppedJobs.WithLabelValues(jobType).Inc()
	m.eventsLost.Add(1)
}

// Snapshot returns aggregated totals for the JSON summary endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits, misses := m.cacheHits.Load(), m.cacheMisses.Load()
	ratio, _ := hitRatio(hits, misses)

	requests := m.requests.Load()
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(m.requestNanos.Load()) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            ratio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		BookingsSucceeded:        m.booked.Load(),
		BookingsConflicted:       m.conflicted.Load(),
		EventsPublished:          m.eventsSent.Load(),
		EventsFailed:             m.eventsFailed.Load(),
		EventsDropped:            m.eventsLost.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func hitRatio(hits, misses uint64) (float64, bool) {
	total := hits + misses
	if total == 0 {
		return 0, false
	}
	return float64(hits) / float64(total), true
}
