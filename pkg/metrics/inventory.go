package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records reservation engine outcomes.
type InventoryMetrics struct {
	duration          *prometheus.HistogramVec
	outcomes          *prometheus.CounterVec
	insufficientStock prometheus.Counter
	retries           prometheus.Counter
}

// NewInventoryMetrics registers the reservation metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventory_operation_duration_seconds",
		Help:    "Duration of inventory transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_operations_total",
		Help: "Inventory operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	insufficientStock := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_insufficient_stock_total",
		Help: "Reservations rejected for insufficient available stock.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_serialization_retries_total",
		Help: "Transactions retried after a serialization conflict.",
	})
	reg.MustRegister(duration, outcomes, insufficientStock, retries)
	return &InventoryMetrics{
		duration:          duration,
		outcomes:          outcomes,
		insufficientStock: insufficientStock,
		retries:           retries,
	}
}

// ObserveDuration records the duration for the named operation.
func (m *InventoryMetrics) ObserveDuration(operation string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncOutcome increments the operation counter for the given outcome.
func (m *InventoryMetrics) IncOutcome(operation, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// IncInsufficientStock counts a reservation rejected for lack of stock.
func (m *InventoryMetrics) IncInsufficientStock() {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.Inc()
}

// IncSerializationRetry counts a retried serialization conflict.
func (m *InventoryMetrics) IncSerializationRetry() {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
