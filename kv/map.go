// Package kv provides synchronized associative containers: a unique-key
// Map, a MultiMap allowing duplicate keys, and a unique-element Set.
//
// All three share the same discipline as the sequence adapters: mutating
// operations come in non-suspending (Try*), bounded (*Timeout) and blocking
// forms, queries run under a shared lock and never suspend, and an Access
// escape hatch runs a caller function under the exclusive lock. Lock
// contention and expired timeouts report through boolean results; duplicate
// keys and use after Close are precondition violations and report through
// classified invalid errors.
package kv

import (
	"time"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/monitor"
)

// Map is a synchronized unique-key associative container.
//
// At blocks until the requested key is present, which turns the map into a
// simple rendezvous point: one goroutine publishes a result under a key,
// another waits for it.
type Map[K comparable, V any] struct {
	mon      *monitor.Monitor
	inserted *monitor.Cond

	items  map[K]V
	closed bool

	stats   *Statistics
	metrics *containerMetrics
}

// NewMap creates a synchronized unique-key map. Returns a transient error
// if metrics registration fails when requested.
func NewMap[K comparable, V any](options ...Option) (*Map[K, V], error) {
	opts := applyOptions(options...)

	var metrics *containerMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newContainerMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Map", "NewMap", "metrics registration")
		}
	}

	mon := monitor.New()
	return &Map[K, V]{
		mon:      mon,
		inserted: mon.NewCond(),
		items:    make(map[K]V),
		stats:    NewStatistics(),
		metrics:  metrics,
	}, nil
}

// insertLocked validates and stores under the held lock. Waiters for the
// key are woken with a broadcast because each may wait on a different key.
func (m *Map[K, V]) insertLocked(key K, value V) error {
	if m.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Map", "Insert", "insert into closed map")
	}
	if _, exists := m.items[key]; exists {
		m.stats.Reject()
		return errors.WrapInvalid(errors.ErrKeyExists, "Map", "Insert", "insert duplicate key")
	}

	m.items[key] = value
	m.stats.Insert()
	m.stats.UpdateSize(int64(len(m.items)))
	if m.metrics != nil {
		m.metrics.recordInsert(len(m.items))
	}
	m.inserted.Broadcast()
	return nil
}

// TryInsert stores a new key without blocking. It reports false with a nil
// error when the lock is contended, and a classified invalid error when the
// key already exists or the map is closed.
func (m *Map[K, V]) TryInsert(key K, value V) (bool, error) {
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

// Insert stores a new key, blocking until the lock is acquired.
func (m *Map[K, V]) Insert(key K, value V) error {
	m.mon.Lock()
	defer m.mon.Unlock()
	return m.insertLocked(key, value)
}

// InsertTimeout stores a new key, waiting up to timeout to acquire the
// lock. The bound covers lock acquisition only. It reports false with a
// nil error when the timeout expires.
func (m *Map[K, V]) InsertTimeout(key K, value V, timeout time.Duration) (bool, error) {
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

// Get returns the value for key. Runs under the shared lock and never
// suspends the caller on element availability.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mon.RLock()
	defer m.mon.RUnlock()

	value, ok := m.items[key]
	if ok {
		m.stats.Hit()
		if m.metrics != nil {
			m.metrics.recordHit()
		}
	} else {
		m.stats.Miss()
		if m.metrics != nil {
			m.metrics.recordMiss()
		}
	}
	return value, ok
}

// At returns the value for key, blocking until the key is present. Returns
// a classified invalid error if the map is closed while the key is absent.
func (m *Map[K, V]) At(key K) (V, error) {
	var zero V
	m.mon.Lock()
	defer m.mon.Unlock()

	m.inserted.Wait(func() bool {
		_, ok := m.items[key]
		return m.closed || ok
	})

	value, ok := m.items[key]
	if !ok {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Map", "At", "wait on closed map")
	}
	m.stats.Hit()
	if m.metrics != nil {
		m.metrics.recordHit()
	}
	return value, nil
}

// AtTimeout returns the value for key, waiting up to timeout for the key
// to appear.
func (m *Map[K, V]) AtTimeout(key K, timeout time.Duration) (V, bool) {
	var zero V
	m.mon.Lock()
	defer m.mon.Unlock()

	ok := m.inserted.WaitTimeout(func() bool {
		_, present := m.items[key]
		return m.closed || present
	}, timeout)
	if !ok {
		m.stats.Timeout()
		if m.metrics != nil {
			m.metrics.recordTimeout()
		}
		return zero, false
	}

	value, present := m.items[key]
	if !present {
		return zero, false
	}
	m.stats.Hit()
	if m.metrics != nil {
		m.metrics.recordHit()
	}
	return value, true
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool {
	m.mon.Lock()
	defer m.mon.Unlock()

	if _, ok := m.items[key]; !ok {
		return false
	}
	delete(m.items, key)
	m.stats.Delete(1)
	m.stats.UpdateSize(int64(len(m.items)))
	if m.metrics != nil {
		m.metrics.recordDelete(1, len(m.items))
	}
	return true
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	m.mon.RLock()
	defer m.mon.RUnlock()
	_, ok := m.items[key]
	return ok
}

// Count returns the number of values stored under key (0 or 1).
func (m *Map[K, V]) Count(key K) int {
	if m.Contains(key) {
		return 1
	}
	return 0
}

// Size returns the number of entries.
func (m *Map[K, V]) Size() int {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return len(m.items)
}

// IsEmpty reports whether the map holds no entries.
func (m *Map[K, V]) IsEmpty() bool {
	return m.Size() == 0
}

// Keys returns a snapshot of the keys in unspecified order.
func (m *Map[K, V]) Keys() []K {
	m.mon.RLock()
	defer m.mon.RUnlock()

	keys := make([]K, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	return keys
}

// Access runs fn with exclusive access to the raw underlying map. fn must
// not block, must not call back into this container, and must not retain
// the reference. Waiters are woken afterward since fn may have inserted.
func (m *Map[K, V]) Access(fn func(items map[K]V)) {
	m.mon.Lock()
	defer func() {
		m.stats.Access()
		m.stats.UpdateSize(int64(len(m.items)))
		if m.metrics != nil {
			m.metrics.updateSize(len(m.items))
		}
		m.inserted.Broadcast()
		m.mon.Unlock()
	}()

	fn(m.items)
}

// Clear removes all entries.
func (m *Map[K, V]) Clear() {
	m.mon.Lock()
	defer m.mon.Unlock()

	removed := len(m.items)
	clear(m.items)
	m.stats.Delete(int64(removed))
	m.stats.UpdateSize(0)
	if m.metrics != nil {
		m.metrics.recordDelete(removed, 0)
	}
}

// Close marks the map closed and wakes all key waiters. Subsequent inserts
// fail; queries and deletes continue to work. Close is idempotent.
func (m *Map[K, V]) Close() error {
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
func (m *Map[K, V]) IsClosed() bool {
	m.mon.RLock()
	defer m.mon.RUnlock()
	return m.closed
}

// Stats returns container statistics (always available for observability).
func (m *Map[K, V]) Stats() *Statistics {
	return m.stats
}
