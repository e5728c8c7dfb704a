package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registry"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Metrics holds the registry collectors. A nil *Metrics records nothing.
type Metrics struct {
	Resolutions *prometheus.CounterVec
	Initialize  *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// New registers the registry collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Entry resolutions by registry and outcome",
		}, []string{"registry", "outcome"}),
		Initialize: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "initialize_total",
			Help:      "Initialize passes by registry and outcome",
		}, []string{"registry", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "initialize_duration_seconds",
			Help:      "Duration of initialize passes",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"registry"}),
	}
}

// ObserveResolution counts one entry resolution.
func (m *Metrics) ObserveResolution(registry, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(registry, outcome).Inc()
}

// ObserveInitialize counts one initialize pass and records its duration.
func (m *Metrics) ObserveInitialize(registry, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Initialize.WithLabelValues(registry, outcome).Inc()
	m.Duration.WithLabelValues(registry).Observe(d.Seconds())
}
