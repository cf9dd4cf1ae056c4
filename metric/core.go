package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains core library-level metrics shared by all containers.
// Per-container metrics (size, utilization, drops) live with the container
// packages and are registered through the MetricsRegistry.
type Metrics struct {
	ContainersActive *prometheus.GaugeVec
	OperationsTotal  *prometheus.CounterVec
	WaitDuration     *prometheus.HistogramVec
	TimeoutsTotal    *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all core metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ContainersActive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "synckit",
				Subsystem: "containers",
				Name:      "active",
				Help:      "Number of active synchronized containers by kind",
			},
			[]string{"kind"},
		),

		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "synckit",
				Subsystem: "containers",
				Name:      "operations_total",
				Help:      "Total container operations",
			},
			[]string{"container", "operation", "outcome"},
		),

		WaitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "synckit",
				Subsystem: "containers",
				Name:      "wait_duration_seconds",
				Help:      "Time spent blocked inside container operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"container", "operation"},
		),

		TimeoutsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "synckit",
				Subsystem: "containers",
				Name:      "timeouts_total",
				Help:      "Total timed operations that expired before completing",
			},
			[]string{"container", "operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "synckit",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"container", "type"},
		),
	}
}

// RecordContainerActive adjusts the active container gauge for a kind.
func (c *Metrics) RecordContainerActive(kind string, delta int) {
	c.ContainersActive.WithLabelValues(kind).Add(float64(delta))
}

// RecordOperation increments the operation counter.
func (c *Metrics) RecordOperation(container, operation, outcome string) {
	c.OperationsTotal.WithLabelValues(container, operation, outcome).Inc()
}

// RecordWaitDuration records time spent blocked inside an operation.
func (c *Metrics) RecordWaitDuration(container, operation string, duration time.Duration) {
	c.WaitDuration.WithLabelValues(container, operation).Observe(duration.Seconds())
}

// RecordTimeout increments the timeout counter.
func (c *Metrics) RecordTimeout(container, operation string) {
	c.TimeoutsTotal.WithLabelValues(container, operation).Inc()
}

// RecordError increments the error counter.
func (c *Metrics) RecordError(container, errorType string) {
	c.ErrorsTotal.WithLabelValues(container, errorType).Inc()
}
