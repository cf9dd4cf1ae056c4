// Package monitor provides the synchronization substrate shared by all
// synckit containers: a reader-writer lock paired with condition variables
// that support predicate waits in three disciplines (indefinite, bounded by
// an absolute deadline, and context-cancellable).
//
// A Monitor serializes all mutating access to one underlying collection.
// Conditions created from a Monitor wait on its exclusive lock; the shared
// (read) lock path is reserved for non-blocking queries and never waits.
package monitor

import (
	"context"
	"sync"
	"time"
)

// Monitor couples a reader-writer lock with condition variables guarding a
// single underlying collection.
type Monitor struct {
	mu sync.RWMutex
}

// New creates a new Monitor.
func New() *Monitor {
	return &Monitor{}
}

// Lock acquires the exclusive lock.
func (m *Monitor) Lock() { m.mu.Lock() }

// Unlock releases the exclusive lock.
func (m *Monitor) Unlock() { m.mu.Unlock() }

// RLock acquires the shared lock.
func (m *Monitor) RLock() { m.mu.RLock() }

// RUnlock releases the shared lock.
func (m *Monitor) RUnlock() { m.mu.RUnlock() }

// TryLock attempts to acquire the exclusive lock without blocking.
func (m *Monitor) TryLock() bool { return m.mu.TryLock() }

// TryRLock attempts to acquire the shared lock without blocking.
func (m *Monitor) TryRLock() bool { return m.mu.TryRLock() }

// LockTimeout attempts to acquire the exclusive lock, waiting at most the
// given duration. It returns true with the lock held, or false if the
// timeout elapsed first.
//
// The wait is delegated to a helper goroutine so the caller can abandon it;
// an abandoned acquisition releases the lock as soon as it is granted.
func (m *Monitor) LockTimeout(timeout time.Duration) bool {
	if m.mu.TryLock() {
		return true
	}
	if timeout <= 0 {
		return false
	}

	acquired := make(chan struct{})
	abandoned := make(chan struct{})
	go func() {
		m.mu.Lock()
		select {
		case acquired <- struct{}{}:
		case <-abandoned:
			m.mu.Unlock()
		}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-acquired:
		return true
	case <-timer.C:
		close(abandoned)
		// The acquisition may have been granted in the same instant; prefer
		// it over the timeout if so.
		select {
		case <-acquired:
			return true
		default:
			return false
		}
	}
}

// WithLock runs fn with the exclusive lock held.
func (m *Monitor) WithLock(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// WithRLock runs fn with the shared lock held. fn must not mutate the
// guarded collection and must not wait on any condition of this Monitor.
func (m *Monitor) WithRLock(fn func()) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn()
}

// NewCond creates a condition variable bound to this Monitor's exclusive
// lock. All Wait variants must be called with the exclusive lock held.
func (m *Monitor) NewCond() *Cond {
	return &Cond{
		mon: m,
		c:   sync.NewCond(&m.mu),
	}
}

// Cond is a condition variable over a Monitor's exclusive lock with
// predicate-based waits. Predicates are re-validated after every wake, so
// spurious wakeups and broadcasts for unrelated state changes are harmless.
type Cond struct {
	mon *Monitor
	c   *sync.Cond
}

// Wait blocks until pred() is true. The exclusive lock must be held; it is
// released while waiting and re-held when Wait returns.
func (c *Cond) Wait(pred func() bool) {
	for !pred() {
		c.c.Wait()
	}
}

// WaitTimeout blocks until pred() is true or the timeout elapses, and
// reports whether the predicate held. The deadline is absolute: repeated
// wakeups never extend the wait past the caller's requested duration.
func (c *Cond) WaitTimeout(pred func() bool, timeout time.Duration) bool {
	if pred() {
		return true
	}
	if timeout <= 0 {
		return false
	}

	deadline := time.Now().Add(timeout)

	// The timer takes the lock before broadcasting so a wakeup cannot slip
	// in between a deadline check and the following Wait.
	timer := time.AfterFunc(timeout, func() {
		c.mon.mu.Lock()
		c.c.Broadcast()
		c.mon.mu.Unlock()
	})
	defer timer.Stop()

	for !pred() {
		if !time.Now().Before(deadline) {
			return false
		}
		c.c.Wait()
	}
	return true
}

// WaitContext blocks until pred() is true or ctx is done, returning the
// context error in the latter case.
func (c *Cond) WaitContext(ctx context.Context, pred func() bool) error {
	if pred() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			c.mon.mu.Lock()
			c.c.Broadcast()
			c.mon.mu.Unlock()
		case <-done:
		}
	}()

	for !pred() {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.c.Wait()
	}
	return nil
}

// Signal wakes one waiter.
func (c *Cond) Signal() { c.c.Signal() }

// Broadcast wakes all waiters.
func (c *Cond) Broadcast() { c.c.Broadcast() }
