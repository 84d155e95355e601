package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricLedgerOperations        = "ledger_operations_total"
	MetricLedgerOperationFailures = "ledger_operation_failures_total"
	MetricLedgerOperationDuration = "ledger_operation_duration_seconds"
)

// Metrics contains Prometheus metrics for ledger gateway operations.
// All operations are thread-safe.
type Metrics struct {
	operations *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates all ledger collectors. The metrics are not registered;
// call Register to register them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricLedgerOperations,
				Help: "Total number of ledger operations by operation type",
			},
			[]string{"operation"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricLedgerOperationFailures,
				Help: "Total number of failed ledger operations by operation type",
			},
			[]string{"operation"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricLedgerOperationDuration,
				Help:    "Ledger operation duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"operation"},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.operations, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveOperation runs fn as the named ledger operation, recording count,
// duration and failure metrics around it.
func (m *Metrics) ObserveOperation(op string, fn func() (string, error)) (string, error) {
	start := time.Now()
	result, err := fn()
	m.operations.WithLabelValues(op).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(op).Inc()
	}
	return result, err
}
