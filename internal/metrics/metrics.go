package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives blob store instrumentation events
type Recorder interface {
	ObserveOperation(operation string, err error, duration time.Duration)
	RecordDeleteBatch(keys int)
}

// Nop discards all events
type Nop struct{}

func (Nop) ObserveOperation(string, error, time.Duration) {}
func (Nop) RecordDeleteBatch(int)                         {}

// Metrics holds the blob store collectors
type Metrics struct {
	Registry *prometheus.Registry

	// Operations counts adapter operations by name and outcome
	Operations *prometheus.CounterVec

	// OperationDuration tracks operation latency
	OperationDuration *prometheus.HistogramVec

	// DeleteBatches counts bulk-delete requests sent to the store
	DeleteBatches prometheus.Counter

	// DeletedKeys counts keys removed via bulk delete
	DeletedKeys prometheus.Counter
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blobstore_operations_total",
				Help: "Number of blob store operations by type and status",
			},
			[]string{"operation", "status"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blobstore_operation_duration_seconds",
				Help:    "Duration of blob store operations",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"operation"},
		),
		DeleteBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blobstore_delete_batches_total",
			Help: "Number of bulk-delete requests issued",
		}),
		DeletedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blobstore_deleted_keys_total",
			Help: "Number of keys submitted for bulk deletion",
		}),
	}

	m.Registry.MustRegister(
		m.Operations,
		m.OperationDuration,
		m.DeleteBatches,
		m.DeletedKeys,
	)
	return m
}

// ObserveOperation implements Recorder
func (m *Metrics) ObserveOperation(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Operations.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDeleteBatch implements Recorder
func (m *Metrics) RecordDeleteBatch(keys int) {
	m.DeleteBatches.Inc()
	m.DeletedKeys.Add(float64(keys))
}
