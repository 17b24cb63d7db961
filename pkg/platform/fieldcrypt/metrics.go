package fieldcrypt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for field encryption.
type Metrics struct {
	Operations     *prometheus.CounterVec
	DecryptSkipped *prometheus.CounterVec
}

// NewMetrics registers field encryption metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_fieldcrypt_operations_total",
			Help: "Field encryption operations by operation and result",
		}, []string{"op", "result"}),
		DecryptSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_fieldcrypt_decrypt_skipped_total",
			Help: "Sensitive fields left as stored because they could not be decrypted",
		}, []string{"field"}),
	}
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Operations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) incDecryptSkipped(field string) {
	if m == nil {
		return
	}
	m.DecryptSkipped.WithLabelValues(field).Inc()
}
