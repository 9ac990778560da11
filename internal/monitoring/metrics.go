package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all metrics for marketplace API client monitoring.
// A nil *Metrics is valid; every record method is a no-op on it, so wiring
// metrics stays optional for callers that only want the executor.
type Metrics struct {
	// Request duration histogram
	requestDuration *prometheus.HistogramVec

	// Request count counter
	requests *prometheus.CounterVec

	// Timeout count counter
	timeouts prometheus.Counter

	// Fallback count counter, labelled by why the fallback was served
	fallbacks *prometheus.CounterVec

	// Circuit breaker open gauge
	breakerOpen prometheus.Gauge
}

// NewMetrics creates a new instance of API client metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketplace_api_request_duration_seconds",
				Help:    "Duration of marketplace API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "status"},
		),

		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_api_requests_total",
				Help: "Total number of marketplace API requests",
			},
			[]string{"status"},
		),

		timeouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "marketplace_api_timeouts_total",
				Help: "Total number of marketplace API request timeouts",
			},
		),

		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_api_fallbacks_total",
				Help: "Total number of fallback payloads served",
			},
			[]string{"reason"},
		),

		breakerOpen: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "marketplace_circuit_breaker_open",
				Help: "Whether the circuit breaker is open (1) or closed (0)",
			},
		),
	}
}

// MustRegister registers all metrics with the provided registry.
func (m *Metrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.requestDuration,
		m.requests,
		m.timeouts,
		m.fallbacks,
		m.breakerOpen,
	)
}

// RecordRequest records a completed request with duration and status.
func (m *Metrics) RecordRequest(endpoint, status string, duration float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(endpoint, status).Observe(duration)
	m.requests.WithLabelValues(status).Inc()
}

// RecordTimeout records a request timeout.
func (m *Metrics) RecordTimeout() {
	if m == nil {
		return
	}
	m.timeouts.Inc()
}

// RecordFallback records a fallback payload being served.
func (m *Metrics) RecordFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(reason).Inc()
}

// SetBreakerOpen updates the circuit breaker state gauge.
func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.breakerOpen.Set(1)
	} else {
		m.breakerOpen.Set(0)
	}
}
