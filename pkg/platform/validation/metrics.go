package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/domain-errors"
)

// Metrics counts rejected payloads. Validate itself stays side-effect free;
// callers report its errors here.
type Metrics struct {
	Rejections *prometheus.CounterVec
}

// NewMetrics registers validation metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Rejections: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_validation_rejections_total",
			Help: "Inbound payloads rejected by validation, by resource and constraint",
		}, []string{"resource", "constraint"}),
	}
}

// ObserveRejection counts err against rt when it is a validation error.
func (m *Metrics) ObserveRejection(rt ResourceType, err error) {
	if m == nil || err == nil {
		return
	}
	constraint := "other"
	if de, ok := dErrors.As(err); ok && de.Constraint != "" {
		constraint = de.Constraint
	}
	resource := string(rt)
	if _, ok := schemas[rt]; !ok {
		resource = "unknown"
	}
	m.Rejections.WithLabelValues(resource, constraint).Inc()
}
