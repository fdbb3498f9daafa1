package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Contadores(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.MovementRecorded("IN")
	m.MovementRecorded("IN")
	m.MovementRejected("insufficient_stock")
	m.Alert("MIN_STOCK", "CRITICAL", OutcomeSent)
	m.Digest(OutcomeAlreadyRun)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.movements.WithLabelValues("IN")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.movementsRejected.WithLabelValues("insufficient_stock")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.alerts.WithLabelValues("MIN_STOCK", "CRITICAL", OutcomeSent)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.digests.WithLabelValues(OutcomeAlreadyRun)))
}

func TestMetrics_NilEsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.MovementRecorded("OUT")
		m.MovementRejected("x")
		m.Alert("a", "b", "c")
		m.Digest("d")
	})
}
