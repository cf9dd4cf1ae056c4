package ring

import (
	"github.com/c360/synckit/metric"
)

// OverflowPolicy defines how Buffer behaves when a push finds it full.
// The policy applies uniformly to all three push forms; try, timeout, and
// blocking pushes of the same buffer never disagree about fullness.
type OverflowPolicy int

const (
	// Block causes push operations to wait until space is available.
	// Try pushes fail when full; timed pushes wait up to the timeout.
	Block OverflowPolicy = iota

	// DropOldest overwrites the oldest element at the pushed end to make
	// room. No push form ever waits or fails on fullness.
	DropOldest

	// DropNewest discards the incoming element when the buffer is full.
	// No push form ever waits or fails on fullness.
	DropNewest
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case Block:
		return "Block"
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	default:
		return "Unknown"
	}
}

// DropCallback is called with each element dropped by an overflow policy.
type DropCallback[T any] func(item T)

// Option configures Buffer behavior using the functional options pattern.
type Option[T any] func(*bufferOptions[T])

// bufferOptions holds internal configuration for Buffer instances.
// Stats are ALWAYS collected - they are not optional.
type bufferOptions[T any] struct {
	overflowPolicy OverflowPolicy
	dropCallback   DropCallback[T]

	// metricsReg is optional - if provided, buffer stats are also exposed
	// as Prometheus metrics
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
}

// WithOverflowPolicy sets the overflow behavior for the buffer.
// Defaults to Block if not specified.
func WithOverflowPolicy[T any](policy OverflowPolicy) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.overflowPolicy = policy
	}
}

// WithDropCallback sets a callback invoked with every element dropped due
// to the overflow policy. The callback runs outside the buffer lock.
func WithDropCallback[T any](callback DropCallback[T]) Option[T] {
	return func(opts *bufferOptions[T]) {
		opts.dropCallback = callback
	}
}

// WithMetrics enables Prometheus metrics export for buffer statistics.
// If registry is nil or prefix is empty, this option is ignored.
func WithMetrics[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(opts *bufferOptions[T]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// applyOptions applies functional options to create final buffer configuration.
func applyOptions[T any](options ...Option[T]) *bufferOptions[T] {
	opts := &bufferOptions[T]{
		overflowPolicy: Block,
	}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
