package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
)

// Metrics holds Prometheus metrics for security monitoring.
type Metrics struct {
	Evaluated        *prometheus.CounterVec
	Dispatched       *prometheus.CounterVec
	DispatchFailures *prometheus.CounterVec
}

// NewMetrics registers security monitor metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Evaluated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_security_events_total",
			Help: "Security events evaluated, by kind and severity",
		}, []string{"kind", "severity"}),
		Dispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_security_alerts_dispatched_total",
			Help: "Security alerts delivered to the dispatcher",
		}, []string{"kind"}),
		DispatchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_security_alert_dispatch_failures_total",
			Help: "Security alerts that could not be delivered",
		}, []string{"kind"}),
	}
}

func (m *Metrics) incEvaluated(kind audit.EventKind, severity Severity) {
	if m == nil {
		return
	}
	m.Evaluated.WithLabelValues(string(kind), string(severity)).Inc()
}

func (m *Metrics) incDispatched(kind audit.EventKind) {
	if m == nil {
		return
	}
	m.Dispatched.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) incDispatchFailures(kind audit.EventKind) {
	if m == nil {
		return
	}
	m.DispatchFailures.WithLabelValues(string(kind)).Inc()
}
