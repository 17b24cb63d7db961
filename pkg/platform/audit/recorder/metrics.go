package recorder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons used as the "reason" label of Metrics.Dropped.
const (
	reasonStore       = "store_error"
	reasonSerialize   = "serialize_error"
	reasonPanic       = "panic"
	reasonCircuitOpen = "circuit_open"
)

// Metrics holds Prometheus metrics for audit recording.
type Metrics struct {
	Recorded            prometheus.Counter
	Dropped             *prometheus.CounterVec
	PersistDuration     prometheus.Histogram
	CircuitBreakerState prometheus.Gauge
}

// NewMetrics registers audit recorder metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Recorded: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_audit_entries_recorded_total",
			Help: "Total number of audit entries persisted",
		}),
		Dropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_audit_entries_dropped_total",
			Help: "Total number of audit entries that could not be persisted, by reason",
		}, []string{"reason"}),
		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_audit_persist_duration_seconds",
			Help:    "Time spent appending an audit entry to the store",
			Buckets: prometheus.DefBuckets,
		}),
		CircuitBreakerState: f.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_audit_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed/healthy, 1=open/unhealthy)",
		}),
	}
}

func (m *Metrics) incRecorded(seconds float64) {
	if m == nil {
		return
	}
	m.Recorded.Inc()
	m.PersistDuration.Observe(seconds)
}

func (m *Metrics) incDropped(reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) setCircuitBreakerState(open bool) {
	if m == nil {
		return
	}
	if open {
		m.CircuitBreakerState.Set(1)
	} else {
		m.CircuitBreakerState.Set(0)
	}
}
