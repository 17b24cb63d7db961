package validation

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveRejection(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	_, err := Validate(ResourceLogin, map[string]any{"email": "nope", "password": "x"})
	m.ObserveRejection(ResourceLogin, err)
	m.ObserveRejection(ResourceType("hacked<label>"), errors.New("boom"))
	m.ObserveRejection(ResourceLogin, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("login", ConstraintFormat)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejections.WithLabelValues("unknown", "other")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Rejections))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveRejection(ResourceLogin, err) })
}
