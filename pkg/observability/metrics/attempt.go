// Package metrics defines the Prometheus instruments recorded by the attempt
// service and its HTTP surface.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AttemptMetrics is recorded by the attempt service.
type AttemptMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, d time.Duration)
	RecordAttemptsCreated(ctx context.Context, n int)
	RecordLedgerSize(ctx context.Context, records int)
}

type prometheusMetrics struct {
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	created    prometheus.Counter
	ledgerSize prometheus.Histogram
}

// NewPrometheus registers the attempt instruments on reg.
func NewPrometheus(reg prometheus.Registerer, namespace string) (AttemptMetrics, error) {
	m := &prometheusMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attempt",
			Name:      "operations_total",
			Help:      "Service operations by outcome.",
		}, []string{"service", "operation", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attempt",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service", "operation"}),
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "attempt",
			Name:      "created_total",
			Help:      "Attempts persisted.",
		}),
		ledgerSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "attempt",
			Name:      "ledger_records",
			Help:      "Records written per ledger rebuild.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.durations, m.created, m.ledgerSize} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "attempt").Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "success").Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operations.WithLabelValues(service, operation, "failure").Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	m.durations.WithLabelValues(service, operation).Observe(d.Seconds())
}

func (m *prometheusMetrics) RecordAttemptsCreated(_ context.Context, n int) {
	m.created.Add(float64(n))
}

func (m *prometheusMetrics) RecordLedgerSize(_ context.Context, records int) {
	m.ledgerSize.Observe(float64(records))
}

// NoOpMetrics discards everything.
type NoOpMetrics struct{}

func NewNoop() AttemptMetrics { return &NoOpMetrics{} }

func (*NoOpMetrics) RecordOperationAttempt(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationSuccess(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationFailure(context.Context, string, string)                 {}
func (*NoOpMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {}
func (*NoOpMetrics) RecordAttemptsCreated(context.Context, int)                             {}
func (*NoOpMetrics) RecordLedgerSize(context.Context, int)                                  {}
