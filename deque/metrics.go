package deque

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/synckit/metric"
)

// adapterMetrics holds Prometheus metrics for adapter operations.
type adapterMetrics struct {
	pushes   prometheus.Counter
	pops     prometheus.Counter
	peeks    prometheus.Counter
	rejected prometheus.Counter
	timeouts prometheus.Counter

	size        prometheus.Gauge
	utilization prometheus.Gauge
}

// newAdapterMetrics creates and registers adapter metrics with the provided registry.
func newAdapterMetrics(registry *metric.MetricsRegistry, prefix string) (*adapterMetrics, error) {
	m := &adapterMetrics{
		pushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "pushes_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of successful push operations",
		}),
		pops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "pops_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of successful pop operations",
		}),
		peeks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "peeks_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of peek operations",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "rejected_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of try operations that failed immediately",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "timeouts_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of timed operations that expired",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of elements",
		}),
		utilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "synckit",
			Subsystem:   "deque",
			Name:        "utilization",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Fill ratio for bounded adapters (0.0 to 1.0)",
		}),
	}

	if err := registry.RegisterCounter(prefix, "deque_pushes", m.pushes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "deque_pops", m.pops); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "deque_peeks", m.peeks); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "deque_rejected", m.rejected); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "deque_timeouts", m.timeouts); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "deque_size", m.size); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "deque_utilization", m.utilization); err != nil {
		return nil, err
	}

	return m, nil
}

// recordPush increments the push counter and updates size/utilization.
func (m *adapterMetrics) recordPush(size, capacity int) {
	m.pushes.Inc()
	m.updateSize(size, capacity)
}

// recordPop increments the pop counter and updates size/utilization.
func (m *adapterMetrics) recordPop(size, capacity int) {
	m.pops.Inc()
	m.updateSize(size, capacity)
}

func (m *adapterMetrics) recordPeek() {
	m.peeks.Inc()
}

func (m *adapterMetrics) recordReject() {
	m.rejected.Inc()
}

func (m *adapterMetrics) recordTimeout() {
	m.timeouts.Inc()
}

// updateSize sets the current size; utilization is reported only when a
// finite capacity is known.
func (m *adapterMetrics) updateSize(size, capacity int) {
	m.size.Set(float64(size))
	if capacity > 0 {
		m.utilization.Set(float64(size) / float64(capacity))
	}
}
