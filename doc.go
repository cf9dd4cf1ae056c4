// Package synckit provides a family of synchronized container adapters
// for concurrent Go programs: sequence containers (bounded and unbounded
// deques, a ring buffer) and associative containers (a unique-key map, a
// multi-key map, and a set), all built on one monitor substrate.
//
// # Architecture
//
// Every adapter wraps a plain, unsynchronized container in a monitor: a
// readers-writer lock plus condition variables bound to its write side.
//
//	┌─────────────────────────────────────┐
//	│         Adapters                    │  deque.Bounded, deque.Unbounded,
//	│  (blocking semantics, stats,        │  ring.Buffer, kv.Map,
//	│   metrics, close/drain)             │  kv.MultiMap, kv.Set
//	└─────────────────────────────────────┘
//	           ↓ built on
//	┌─────────────────────────────────────┐
//	│         monitor.Monitor             │  Lock/RLock/TryLock/LockTimeout,
//	│  (RWMutex + condition variables)    │  Cond.Wait/WaitTimeout/WaitContext
//	└─────────────────────────────────────┘
//	           ↓ protects
//	┌─────────────────────────────────────┐
//	│      Raw containers                 │  deque.Deque, ring.Ring,
//	│  (no locking, no blocking)          │  plain maps
//	└─────────────────────────────────────┘
//
// # Access Disciplines
//
// Each mutating operation comes in three forms with a consistent naming
// scheme:
//
//   - Try* never suspends: it uses TryLock and reports false on
//     contention or when the operation cannot proceed immediately.
//   - *Timeout waits up to a bound. For operations that wait on container
//     state (a pop on an empty queue, a push on a full one) the bound
//     covers the whole wait; for unbounded pushes and associative inserts
//     it bounds lock acquisition only.
//   - The plain form blocks until the operation can proceed or the
//     container is closed.
//
// Context-aware forms (PushBackContext, PopFrontContext) are provided
// where adapters are used as work queues.
//
// Failure reporting follows one rule: contention and expired timeouts are
// normal outcomes and come back as boolean results; violated
// preconditions (duplicate keys, non-positive capacities, use after
// Close) come back as classified invalid errors from the errors package.
//
// # Close Semantics
//
// Close marks a container closed and wakes every waiter. Pushes and
// inserts fail afterward; pops drain the remaining elements before
// reporting closed, so producers can shut down ahead of their consumers
// without losing data.
//
// # Escape Hatch
//
// Access(fn) runs fn under the exclusive lock with the raw container,
// for compound operations that would otherwise race between calls. The
// caller promises not to block, not to re-enter the adapter, and not to
// retain the reference.
//
// # Packages
//
// Containers:
//   - monitor: the lock + condition variable substrate
//   - deque: raw Deque plus Bounded and Unbounded adapters
//   - ring: raw Ring plus the Buffer adapter with overflow policies
//   - kv: Map, MultiMap and Set associative adapters
//
// Infrastructure:
//   - errors: error classification and domain sentinels
//   - metric: Prometheus registry wrapper and metrics endpoint
//   - retry: exponential backoff for transient failures
//   - worker: a worker pool backed by deque.Bounded
//   - config: YAML configuration for the benchmark driver
//   - testutil: work-item generators for tests and benchmarks
//
// # Observability
//
// Every adapter keeps atomic statistics (always on) and optionally
// exports Prometheus metrics through a shared registry:
//
//	registry := metric.NewMetricsRegistry()
//	queue, err := deque.NewBounded[Job](64,
//	    deque.WithMetrics[Job](registry, "jobs"))
//
// # Binary
//
// cmd/synckit-bench drives configurable producer/consumer workloads
// against any of the adapters:
//
//	# Hammer a ring buffer that drops its oldest elements
//	synckit-bench --container=ring --policy=drop_oldest --capacity=32
//
//	# Run from a config file with a live metrics endpoint
//	synckit-bench --config=bench.yaml --metrics-port=9090
package synckit
