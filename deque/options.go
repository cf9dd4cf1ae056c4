package deque

import (
	"github.com/c360/synckit/metric"
)

// Option configures adapter behavior using the functional options pattern.
type Option[T any] func(*adapterOptions[T])

// adapterOptions holds internal configuration for adapter instances.
// Stats are ALWAYS collected - they are not optional.
// Metrics are optional and exposed via WithMetrics().
type adapterOptions[T any] struct {
	// metricsReg is optional - if provided, adapter stats are also exposed
	// as Prometheus metrics
	metricsReg *metric.MetricsRegistry

	// metricsPrefix is used as the component label for Prometheus metrics
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for adapter statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *adapterOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// applyOptions applies functional options to create final adapter configuration.
func applyOptions[T any](options ...Option[T]) *adapterOptions[T] {
	opts := &adapterOptions[T]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
