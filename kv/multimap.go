package kv

import (
	"time"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/monitor"
)

// MultiMap is a synchronized associative container that stores any number
// of values under the same key. Values under one key keep their insertion
// order. Extract removes and returns all values for a key in one exclusive
// section, so concurrent extractors never split a key's values between
// them.
type MultiMap[K comparable, V any] struct {
	mon      *monitor.Monitor
	inserted *monitor.Cond

	items  map[K][]V
	total  int
	closed bool

	stats   *Statistics
	metrics *containerMetrics
}

// NewMultiMap creates a synchronized multi-key map. Returns a transient
// error if metrics registration fails when requested.
func NewMultiMap[K comparable, V any](options ...Option) (*MultiMap[K, V], error) {
	opts := applyOptions(options...)

	var metrics *containerMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newContainerMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "MultiMap", "NewMultiMap", "metrics registration")
		}
	}

	mon := monitor.New()
	return &MultiMap[K, V]{
		mon:      mon,
		inserted: mon.NewCond(),
		items:    make(map[K][]V),
		stats:    NewStatistics(),
		metrics:  metrics,
	}, nil
}

// insertLocked appends under the held lock. Duplicate keys are the point
// of this container, so the only precondition is that the map is open.
func (m *MultiMap[K, V]) insertLocked(key K, value V) error {
	if m.closed {
		return errors.WrapInvalid(errors.ErrClosed, "MultiMap", "Insert", "insert into closed map")
	}

	m.items[key] = append(m.items[key], value)
	m.total++
	m.stats.Insert()
	m.stats.UpdateSize(int64(m.total))
	if m.metrics != nil {
		m.metrics.recordInsert(m.total)
	}
	m.inserted.Broadcast()
	return nil
}

// TryInsert appends a value without blocking. It reports false with a nil
// error when the lock is contended.
func (m *MultiMap[K, V]) TryInsert(key K, value V) (bool, error) {
	if !m.mon.TryLock() {
		m.stats.Reject()
		return false, nil
	}
	defer m.mon.Unlock()

	if err := m.insertLocked(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Insert appends a value, blocking until the lock is acquired. Always
// succeeds on an open map.
func (m *MultiMap[K, V]) Insert(key K, value V) error {
	m.mon.Lock()
	defer m.mon.Unlock()
	return m.insertLocked(key, value)
}

// InsertTimeout appends a value, waiting up to timeout to acquire the
// lock. The bound covers lock acquisition only.
func (m *MultiMap[K, V]) InsertTimeout(key K, value V, timeout time.Duration) (bool, error) {
	if !m.mon.LockTimeout(timeout) {
		m.stats.Timeout()
		if m.metrics != nil {
			m.metrics.recordTimeout()
		}
		return false, nil
	}
	defer m.mon.Unlock()

	if err := m.insertLocked(key, value); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns a copy of the values stored under key in insertion order.
// Runs under the shared lock.
func (m *MultiMap[K, V]) Get(key K) ([]V, bool) {
	m.mon.RLock()
	defer m.mon.RUnlock()

	values, ok := m.items[key]
	if !ok {
		m.stats.Miss()
		if m.metrics != nil {
			m.metrics.recordMiss()
		}
		return nil, false
	}
	m.stats.Hit()
	if m.metrics != nil {
		m.metrics.recordHit()
	}
	out := make([]V, len(values))
	copy(out, values)
	return out, true
}

// At returns the first value stored under key, blocking until the key has
// at least one value. Returns a classified invalid error if the map is
// closed while the key is absent.
func (m *MultiMap[K, V]) At(key K) (V, error) {
	var zero V
	m.mon.Lock()
	defer m.mon.Unlock()

	m.inserted.Wait(func() bool {
		return m.closed || len(m.items[key]) > 0
	})

	values := m.items[key]
	if len(values) == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "MultiMap", "At", "wait on closed map")
	}
	m.stats.Hit()
	if m.metrics != nil {
		m.metrics.recordHit()
	}
	return values[0], nil
}

// AtTimeout returns the first value stored under key, waiting up to
// timeout for one to appear.
func (m *MultiMap[K, V]) AtTimeout(key K, timeout time.Duration) (V, bool) {
	var zero V
	m.mon.Lock()
	defer m.mon.Unlock()

	ok := m.inserted.WaitTimeout(func() bool {
		return m.closed || len(m.items[key]) > 0
	}, timeout)
	if !ok {
		m.stats.Timeout()
		if m.metrics != nil {
			m.metrics.recordTimeout()
		}
		return zero, false
	}

	values := m.items[key]
	if len(values) == 0 {
		return zero, false
	}
	m.stats.Hit()
	if m.metrics != nil {
		m.metrics.recordHit()
	}
	return values[0], true
}

// Extract atomically removes and returns all values stored under key in
// insertion order. Returns nil when the key is absent. No concurrent
// operation observes a partially extracted key.
func (m *MultiMap[K, V]) Extract(key K) []V {
	m.mon.Lock()
	defer m.mon.Unlock()

	values, ok := m.items[key]
	if !ok {
		return nil
	}
	delete(m.items, key)
	m.total -= len(values)

	m.stats.Delete(int64(len(values)))
	m.stats.UpdateSize(int64(m.total))
	if m.metrics != nil {
		m.metrics.recordDelete(len(values), m.total)
	}
	return values
}

// Delete removes all values stored under key and returns how many were
// removed.
func (m *MultiMap[K, V]) Delete(key K) int {
	return len(m.Extract(key))
}

// Contains reports whether at least one value is stored under key.
func (m *MultiMap[K, V]) Contains(key K) bool {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return len(m.items[key]) > 0
}

// Count returns the number of values stored under key.
func (m *MultiMap[K, V]) Count(key K) int {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return len(m.items[key])
}

// Size returns the number of distinct keys.
func (m *MultiMap[K, V]) Size() int {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return len(m.items)
}

// Len returns the total number of values across all keys.
func (m *MultiMap[K, V]) Len() int {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return m.total
}

// IsEmpty reports whether the map holds no values.
func (m *MultiMap[K, V]) IsEmpty() bool {
	return m.Len() == 0
}

// Keys returns a snapshot of the distinct keys in unspecified order.
func (m *MultiMap[K, V]) Keys() []K {
	m.mon.RLock()
	defer m.mon.RUnlock()

	keys := make([]K, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// Access runs fn with exclusive access to the raw underlying map. The
// total value count is recomputed afterward since fn may have changed any
// key. The usual trust boundary applies: fn must not block, call back in,
// or retain the reference.
func (m *MultiMap[K, V]) Access(fn func(items map[K][]V)) {
	m.mon.Lock()
	defer func() {
		m.total = 0
		for _, values := range m.items {
			m.total += len(values)
		}
		m.stats.Access()
		m.stats.UpdateSize(int64(m.total))
		if m.metrics != nil {
			m.metrics.updateSize(m.total)
		}
		m.inserted.Broadcast()
		m.mon.Unlock()
	}()

	fn(m.items)
}

// Clear removes all entries.
func (m *MultiMap[K, V]) Clear() {
	m.mon.Lock()
	defer m.mon.Unlock()

	removed := m.total
	clear(m.items)
	m.total = 0
	m.stats.Delete(int64(removed))
	m.stats.UpdateSize(0)
	if m.metrics != nil {
		m.metrics.recordDelete(removed, 0)
	}
}

// Close marks the map closed and wakes all key waiters. Close is
// idempotent.
func (m *MultiMap[K, V]) Close() error {
	m.mon.Lock()
	defer m.mon.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	m.inserted.Broadcast()
	return nil
}

// IsClosed reports whether Close has been called.
func (m *MultiMap[K, V]) IsClosed() bool {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return m.closed
}

// Stats returns container statistics (always available for observability).
func (m *MultiMap[K, V]) Stats() *Statistics {
	return m.stats
}
