package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "quote_widget"

// Fetch outcome label values.
const (
	fetchOutcomeSuccess = "success"
	fetchOutcomeEmpty   = "empty"
	fetchOutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for widget activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mounts         prometheus.Counter
	fetches        *prometheus.CounterVec
	selections     prometheus.Counter
	ignoredActions prometheus.Counter
	activeSessions prometheus.Gauge
}

// NewMetrics creates and registers widget collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		mounts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "mounts_total",
			Help:      "Number of widgets mounted.",
		}),
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fetches_total",
			Help:      "Initial quote fetches by outcome.",
		}, []string{"outcome"}),
		selections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "selections_total",
			Help:      "Random quote selections displayed.",
		}),
		ignoredActions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ignored_actions_total",
			Help:      "New-quote actions ignored because the widget was loading or torn down.",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Widget sessions currently mounted.",
		}),
	}
}

func (m *Metrics) mounted() {
	if m != nil {
		m.mounts.Inc()
	}
}

func (m *Metrics) fetched(outcome string) {
	if m != nil {
		m.fetches.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) selected() {
	if m != nil {
		m.selections.Inc()
	}
}

func (m *Metrics) ignored() {
	if m != nil {
		m.ignoredActions.Inc()
	}
}

func (m *Metrics) sessions(n int) {
	if m != nil {
		m.activeSessions.Set(float64(n))
	}
}
