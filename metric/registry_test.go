package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/synckit/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()
	require.NotNil(t, registry)
	require.NotNil(t, registry.PrometheusRegistry())
	require.NotNil(t, registry.CoreMetrics())
}

func TestRegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_pushes_total",
		Help: "test counter",
	})

	err := registry.RegisterCounter("bounded", "pushes", counter)
	require.NoError(t, err)

	// Duplicate registration under the same key must fail as invalid.
	err = registry.RegisterCounter("bounded", "pushes", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestRegisterGaugeAndHistogram(t *testing.T) {
	registry := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "test_size",
		Help: "test gauge",
	})
	require.NoError(t, registry.RegisterGauge("bounded", "size", gauge))

	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_wait_seconds",
		Help:    "test histogram",
		Buckets: prometheus.DefBuckets,
	})
	require.NoError(t, registry.RegisterHistogram("bounded", "wait", histogram))

	histogramVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_op_seconds",
		Help:    "test histogram vec",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	require.NoError(t, registry.RegisterHistogramVec("bounded", "ops", histogramVec))
}

func TestPrometheusConflict(t *testing.T) {
	registry := NewMetricsRegistry()

	first := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflicting_total",
		Help: "one",
	})
	second := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflicting_total",
		Help: "one",
	})

	require.NoError(t, registry.RegisterCounter("a", "one", first))

	// Same fully-qualified prometheus name under a different registry key.
	err := registry.RegisterCounter("b", "one", second)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "removable_total",
		Help: "test counter",
	})
	require.NoError(t, registry.RegisterCounter("bounded", "removable", counter))

	assert.True(t, registry.Unregister("bounded", "removable"))
	assert.False(t, registry.Unregister("bounded", "removable"))

	// Re-registration succeeds after unregister.
	require.NoError(t, registry.RegisterCounter("bounded", "removable", counter))
}

func TestCoreMetricsRecording(t *testing.T) {
	registry := NewMetricsRegistry()
	core := registry.CoreMetrics()

	// Exercise the recording helpers; values are verified by gathering.
	core.RecordContainerActive("bounded", 1)
	core.RecordOperation("bounded", "push_back", "ok")
	core.RecordOperation("bounded", "push_back", "timeout")
	core.RecordTimeout("bounded", "pop_front")
	core.RecordError("bounded", "invalid")

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["synckit_containers_active"])
	assert.True(t, names["synckit_containers_operations_total"])
	assert.True(t, names["synckit_containers_timeouts_total"])
	assert.True(t, names["synckit_errors_total"])
}
