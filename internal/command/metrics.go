package command

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricCommandsDispatched = "commands_dispatched_total"
	MetricCommandsFailed     = "commands_failed_total"
)

// Metrics contains Prometheus metrics for command dispatching.
type Metrics struct {
	dispatched *prometheus.CounterVec
	failed     *prometheus.CounterVec
}

// NewMetrics creates all dispatcher collectors. The metrics are not
// registered; call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCommandsDispatched,
				Help: "Total number of dispatched commands by classified intent",
			},
			[]string{"intent"},
		),
		failed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCommandsFailed,
				Help: "Total number of failed dispatches by action",
			},
			[]string{"action"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.dispatched, m.failed} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncDispatched increments the dispatched counter for a classified intent.
func (m *Metrics) IncDispatched(intent string) {
	m.dispatched.WithLabelValues(intent).Inc()
}

// IncFailed increments the failure counter for an action label.
func (m *Metrics) IncFailed(action string) {
	m.failed.WithLabelValues(action).Inc()
}
