package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveResolution(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResolution("sprites", OutcomeSuccess)
	m.ObserveResolution("sprites", OutcomeSuccess)
	m.ObserveResolution("sprites", OutcomeFailure)
	m.ObserveResolution("sprites", OutcomeSkipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("sprites", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("sprites", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues("sprites", OutcomeSkipped)))
}

func TestObserveInitialize(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveInitialize("sprites", OutcomeSuccess, 150*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Initialize.WithLabelValues("sprites", OutcomeSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveResolution("sprites", OutcomeSuccess)
		m.ObserveInitialize("sprites", OutcomeFailure, time.Second)
	})
}
