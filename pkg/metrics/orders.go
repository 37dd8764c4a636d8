package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records workflow engine outcomes.
type OrderMetrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	adjustments *prometheus.CounterVec
	conflicts   prometheus.Counter
}

// NewOrderMetrics registers the order workflow metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_operations_total",
		Help: "Order workflow operations by name and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_operation_duration_seconds",
		Help:    "Duration of order workflow operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_adjustments_total",
		Help: "Inventory adjustments applied by the gateway, by reason.",
	}, []string{"reason"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_version_conflicts_total",
		Help: "Order writes rejected by the optimistic concurrency check.",
	})
	reg.MustRegister(operations, duration, adjustments, conflicts)
	return &OrderMetrics{
		operations:  operations,
		duration:    duration,
		adjustments: adjustments,
		conflicts:   conflicts,
	}
}

// IncOperation increments the operation counter for the given outcome.
func (o *OrderMetrics) IncOperation(operation, outcome string) {
	if o == nil || o.operations == nil {
		return
	}
	o.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration for the named operation.
func (o *OrderMetrics) ObserveDuration(operation string, duration time.Duration) {
	if o == nil || o.duration == nil {
		return
	}
	o.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncAdjustment increments the inventory adjustment counter for a reason.
func (o *OrderMetrics) IncAdjustment(reason string) {
	if o == nil || o.adjustments == nil {
		return
	}
	o.adjustments.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncVersionConflict increments the optimistic concurrency conflict counter.
func (o *OrderMetrics) IncVersionConflict() {
	if o == nil || o.conflicts == nil {
		return
	}
	o.conflicts.Inc()
}
