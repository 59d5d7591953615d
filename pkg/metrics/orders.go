package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderPipelineMetrics records the outcome of order validate-and-commit passes.
type OrderPipelineMetrics struct {
	duration  *prometheus.HistogramVec
	committed *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewOrderPipelineMetrics registers the order pipeline metrics on the provided registerer.
func NewOrderPipelineMetrics(reg prometheus.Registerer) *OrderPipelineMetrics {
	if reg == nil {
		return &OrderPipelineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_pipeline_duration_seconds",
		Help:    "Duration of order validate-and-commit passes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_pipeline_committed",
		Help: "Order operations that validated and committed.",
	}, []string{"operation"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_pipeline_rejected",
		Help: "Order operations rejected during validation.",
	}, []string{"operation"})
	reg.MustRegister(duration, committed, rejected)
	return &OrderPipelineMetrics{
		duration:  duration,
		committed: committed,
		rejected:  rejected,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *OrderPipelineMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCommitted increments the committed counter for the named operation.
func (m *OrderPipelineMetrics) IncCommitted(operation string) {
	if m == nil || m.committed == nil {
		return
	}
	m.committed.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncRejected increments the rejected counter for the named operation.
func (m *OrderPipelineMetrics) IncRejected(operation string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.WithLabelValues(normalizeLabel(operation)).Inc()
}

func normalizeLabel(operation string) string {
	if operation == "" {
		return "unknown"
	}
	return operation
}
