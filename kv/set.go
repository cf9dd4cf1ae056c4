package kv

import (
	"time"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/monitor"
)

// Set is a synchronized unique-element container. Wait and WaitTimeout
// suspend the caller until a given element has been inserted, which makes
// the set usable as a lightweight completion tracker.
type Set[K comparable] struct {
	mon      *monitor.Monitor
	inserted *monitor.Cond

	items  map[K]struct{}
	closed bool

	stats   *Statistics
	metrics *containerMetrics
}

// NewSet creates a synchronized unique-element set. Returns a transient
// error if metrics registration fails when requested.
func NewSet[K comparable](options ...Option) (*Set[K], error) {
	opts := applyOptions(options...)

	var metrics *containerMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newContainerMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Set", "NewSet", "metrics registration")
		}
	}

	mon := monitor.New()
	return &Set[K]{
		mon:      mon,
		inserted: mon.NewCond(),
		items:    make(map[K]struct{}),
		stats:    NewStatistics(),
		metrics:  metrics,
	}, nil
}

func (s *Set[K]) insertLocked(element K) error {
	if s.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Set", "Insert", "insert into closed set")
	}
	if _, exists := s.items[element]; exists {
		s.stats.Reject()
		return errors.WrapInvalid(errors.ErrKeyExists, "Set", "Insert", "insert duplicate element")
	}

	s.items[element] = struct{}{}
	s.stats.Insert()
	s.stats.UpdateSize(int64(len(s.items)))
	if s.metrics != nil {
		s.metrics.recordInsert(len(s.items))
	}
	s.inserted.Broadcast()
	return nil
}

// TryInsert adds a new element without blocking. It reports false with a
// nil error when the lock is contended, and a classified invalid error
// when the element already exists or the set is closed.
func (s *Set[K]) TryInsert(element K) (bool, error) {
	if !s.mon.TryLock() {
		s.stats.Reject()
		return false, nil
	}
	defer s.mon.Unlock()

	if err := s.insertLocked(element); err != nil {
		return false, err
	}
	return true, nil
}

// Insert adds a new element, blocking until the lock is acquired.
func (s *Set[K]) Insert(element K) error {
	s.mon.Lock()
	defer s.mon.Unlock()
	return s.insertLocked(element)
}

// InsertTimeout adds a new element, waiting up to timeout to acquire the
// lock. The bound covers lock acquisition only.
func (s *Set[K]) InsertTimeout(element K, timeout time.Duration) (bool, error) {
	if !s.mon.LockTimeout(timeout) {
		s.stats.Timeout()
		if s.metrics != nil {
			s.metrics.recordTimeout()
		}
		return false, nil
	}
	defer s.mon.Unlock()

	if err := s.insertLocked(element); err != nil {
		return false, err
	}
	return true, nil
}

// Contains reports whether element is present. Runs under the shared lock
// and never suspends the caller on element availability.
func (s *Set[K]) Contains(element K) bool {
	s.mon.RLock()
	defer s.mon.RUnlock()

	_, ok := s.items[element]
	if ok {
		s.stats.Hit()
		if s.metrics != nil {
			s.metrics.recordHit()
		}
	} else {
		s.stats.Miss()
		if s.metrics != nil {
			s.metrics.recordMiss()
		}
	}
	return ok
}

// Wait blocks until element has been inserted. Returns a classified
// invalid error if the set is closed while the element is absent.
func (s *Set[K]) Wait(element K) error {
	s.mon.Lock()
	defer s.mon.Unlock()

	s.inserted.Wait(func() bool {
		_, ok := s.items[element]
		return s.closed || ok
	})

	if _, ok := s.items[element]; !ok {
		return errors.WrapInvalid(errors.ErrClosed, "Set", "Wait", "wait on closed set")
	}
	return nil
}

// WaitTimeout blocks until element has been inserted, waiting up to
// timeout. It reports false when the timeout expires first.
func (s *Set[K]) WaitTimeout(element K, timeout time.Duration) bool {
	s.mon.Lock()
	defer s.mon.Unlock()

	ok := s.inserted.WaitTimeout(func() bool {
		_, present := s.items[element]
		return s.closed || present
	}, timeout)
	if !ok {
		s.stats.Timeout()
		if s.metrics != nil {
			s.metrics.recordTimeout()
		}
		return false
	}

	_, present := s.items[element]
	return present
}

// Delete removes element and reports whether it was present.
func (s *Set[K]) Delete(element K) bool {
	s.mon.Lock()
	defer s.mon.Unlock()

	if _, ok := s.items[element]; !ok {
		return false
	}
	delete(s.items, element)
	s.stats.Delete(1)
	s.stats.UpdateSize(int64(len(s.items)))
	if s.metrics != nil {
		s.metrics.recordDelete(1, len(s.items))
	}
	return true
}

// Size returns the number of elements.
func (s *Set[K]) Size() int {
	s.mon.RLock()
	defer s.mon.RUnlock()
	return len(s.items)
}

// IsEmpty reports whether the set holds no elements.
func (s *Set[K]) IsEmpty() bool {
	return s.Size() == 0
}

// Elements returns a snapshot of the elements in unspecified order.
func (s *Set[K]) Elements() []K {
	s.mon.RLock()
	defer s.mon.RUnlock()

	elements := make([]K, 0, len(s.items))
	for e := range s.items {
		elements = append(elements, e)
	}
	return elements
}

// Access runs fn with exclusive access to the raw underlying set. fn must
// not block, call back in, or retain the reference. Waiters are woken
// afterward since fn may have inserted.
func (s *Set[K]) Access(fn func(items map[K]struct{})) {
	s.mon.Lock()
	defer func() {
		s.stats.Access()
		s.stats.UpdateSize(int64(len(s.items)))
		if s.metrics != nil {
			s.metrics.updateSize(len(s.items))
		}
		s.inserted.Broadcast()
		s.mon.Unlock()
	}()

	fn(s.items)
}

// Clear removes all elements.
func (s *Set[K]) Clear() {
	s.mon.Lock()
	defer s.mon.Unlock()

	removed := len(s.items)
	clear(s.items)
	s.stats.Delete(int64(removed))
	s.stats.UpdateSize(0)
	if s.metrics != nil {
		s.metrics.recordDelete(removed, 0)
	}
}

// Close marks the set closed and wakes all waiters. Close is idempotent.
func (s *Set[K]) Close() error {
	s.mon.Lock()
	defer s.mon.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.inserted.Broadcast()
	return nil
}

// IsClosed reports whether Close has been called.
func (s *Set[K]) IsClosed() bool {
	s.mon.RLock()
	defer s.mon.RUnlock()
	return s.closed
}

// Stats returns container statistics (always available for observability).
func (s *Set[K]) Stats() *Statistics {
	return s.stats
}
