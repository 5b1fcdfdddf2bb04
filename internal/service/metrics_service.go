package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a compact view of the counters for the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	SavesTotal               uint64    `json:"savesTotal"`
	SaveFailures             uint64    `json:"saveFailures"`
	Fallbacks                uint64    `json:"fallbacks"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation for the board.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	saveDuration    *prometheus.HistogramVec
	saveTotal       *prometheus.CounterVec
	fallbackTotal   prometheus.Counter
	bookingTotal    *prometheus.CounterVec
	pendingTotal    *prometheus.CounterVec
	classesGauge    prometheus.Gauge

	requestCount         uint64
	requestDurationTotal uint64
	saveCount            uint64
	saveFailureCount     uint64
	fallbackCount        uint64
}

// NewMetricsService registers the board collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	saveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_persistence_save_seconds",
		Help:    "Duration of dataset saves per backend",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend"})

	saveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_persistence_saves_total",
		Help: "Dataset saves per backend and outcome",
	}, []string{"backend", "outcome"})

	fallbackTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "board_persistence_fallbacks_total",
		Help: "Saves or loads served by the fallback backend",
	})

	bookingTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_bookings_total",
		Help: "Class mutations by operation",
	}, []string{"operation"})

	pendingTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_pending_changes_total",
		Help: "Pending drag changes by outcome",
	}, []string{"outcome"})

	classesGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_classes",
		Help: "Classes currently held by the board",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, saveDuration, saveTotal, fallbackTotal, bookingTotal, pendingTotal, classesGauge, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		saveDuration:    saveDuration,
		saveTotal:       saveTotal,
		fallbackTotal:   fallbackTotal,
		bookingTotal:    bookingTotal,
		pendingTotal:    pendingTotal,
		classesGauge:    classesGauge,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the private registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveSave records one dataset save attempt against a backend.
func (m *MetricsService) ObserveSave(backend string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		atomic.AddUint64(&m.saveFailureCount, 1)
	}
	m.saveDuration.WithLabelValues(backend).Observe(duration.Seconds())
	m.saveTotal.WithLabelValues(backend, outcome).Inc()
	atomic.AddUint64(&m.saveCount, 1)
}

// RecordFallback counts an operation served by the fallback backend.
func (m *MetricsService) RecordFallback() {
	if m == nil {
		return
	}
	m.fallbackTotal.Inc()
	atomic.AddUint64(&m.fallbackCount, 1)
}

// RecordBooking counts a class mutation (create, update, delete, toggle).
func (m *MetricsService) RecordBooking(operation string) {
	if m == nil {
		return
	}
	m.bookingTotal.WithLabelValues(operation).Inc()
}

// RecordPending counts a pending change outcome (created, confirmed, cancelled).
func (m *MetricsService) RecordPending(outcome string) {
	if m == nil {
		return
	}
	m.pendingTotal.WithLabelValues(outcome).Inc()
}

// SetClassCount publishes the number of stored classes.
func (m *MetricsService) SetClassCount(n int) {
	if m == nil {
		return
	}
	m.classesGauge.Set(float64(n))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		SavesTotal:               atomic.LoadUint64(&m.saveCount),
		SaveFailures:             atomic.LoadUint64(&m.saveFailureCount),
		Fallbacks:                atomic.LoadUint64(&m.fallbackCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
