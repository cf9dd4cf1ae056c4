package kv

import "github.com/c360/synckit/metric"

// Option configures associative container behavior using the functional
// options pattern. The same options apply to Map, MultiMap and Set.
type Option func(*containerOptions)

// containerOptions holds internal configuration for associative containers.
// Stats are ALWAYS collected - they are not optional.
type containerOptions struct {
	// metricsReg is optional - if provided, container stats are also
	// exposed as Prometheus metrics
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for container statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics(registry *metric.MetricsRegistry, prefix string) Option {
	return func(opts *containerOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// applyOptions applies functional options to create final configuration.
func applyOptions(options ...Option) *containerOptions {
	opts := &containerOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
