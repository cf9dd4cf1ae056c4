package kv

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/synckit/metric"
)

// containerMetrics holds Prometheus metrics for associative containers.
type containerMetrics struct {
	inserts  prometheus.Counter
	deletes  prometheus.Counter
	hits     prometheus.Counter
	misses   prometheus.Counter
	timeouts prometheus.Counter

	size prometheus.Gauge
}

// newContainerMetrics creates and registers container metrics with the
// provided registry.
func newContainerMetrics(registry *metric.MetricsRegistry, prefix string) (*containerMetrics, error) {
	m := &containerMetrics{
		inserts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "kv",
			Name:        "inserts_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of successful inserts",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "kv",
			Name:        "deletes_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of removed entries",
		}),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "kv",
			Name:        "hits_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of lookups that found their key",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "kv",
			Name:        "misses_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of lookups that did not find their key",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "synckit",
			Subsystem:   "kv",
			Name:        "timeouts_total",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Total number of timed operations that expired",
		}),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "synckit",
			Subsystem:   "kv",
			Name:        "size",
			ConstLabels: prometheus.Labels{"component": prefix},
			Help:        "Current number of entries",
		}),
	}

	if err := registry.RegisterCounter(prefix, "kv_inserts", m.inserts); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "kv_deletes", m.deletes); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "kv_hits", m.hits); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "kv_misses", m.misses); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter(prefix, "kv_timeouts", m.timeouts); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge(prefix, "kv_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *containerMetrics) recordInsert(size int) {
	m.inserts.Inc()
	m.size.Set(float64(size))
}

func (m *containerMetrics) recordDelete(n, size int) {
	m.deletes.Add(float64(n))
	m.size.Set(float64(size))
}

func (m *containerMetrics) recordHit() {
	m.hits.Inc()
}

func (m *containerMetrics) recordMiss() {
	m.misses.Inc()
}

func (m *containerMetrics) recordTimeout() {
	m.timeouts.Inc()
}

func (m *containerMetrics) updateSize(size int) {
	m.size.Set(float64(size))
}
