package deque

import (
	"context"
	"math"
	"time"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/monitor"
)

// Unbounded is a synchronized double-ended queue with no capacity bound.
// Producers never wait on a capacity predicate; the timeout push forms bound
// only how long the caller waits to acquire the lock itself, which does not
// model backpressure. Consumers block while the queue is empty.
//
// Use Unbounded when producers must never stall (event fan-out) and only
// consumers need synchronization.
type Unbounded[T any] struct {
	mon      *monitor.Monitor
	notEmpty *monitor.Cond

	items  *Deque[T]
	closed bool

	stats   *Statistics     // ALWAYS initialized for observability
	metrics *adapterMetrics // Optional Prometheus metrics
}

// NewUnbounded creates an unbounded deque.
// Returns a transient error if metrics registration fails when requested.
func NewUnbounded[T any](options ...Option[T]) (*Unbounded[T], error) {
	opts := applyOptions(options...)

	var metrics *adapterMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newAdapterMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Unbounded", "NewUnbounded", "metrics registration")
		}
	}

	mon := monitor.New()
	return &Unbounded[T]{
		mon:      mon,
		notEmpty: mon.NewCond(),
		items:    NewDeque[T](),
		stats:    NewStatistics(),
		metrics:  metrics,
	}, nil
}

// tryPush attempts a non-suspending push at either end; it fails only when
// the lock is contended or the queue is closed.
func (u *Unbounded[T]) tryPush(item T, atBack bool) bool {
	if !u.mon.TryLock() {
		u.stats.Reject()
		if u.metrics != nil {
			u.metrics.recordReject()
		}
		return false
	}
	defer u.mon.Unlock()

	if u.closed {
		u.stats.Reject()
		return false
	}
	u.pushLocked(item, atBack)
	return true
}

// TryPushBack appends without blocking; fails only on lock contention or
// after Close.
func (u *Unbounded[T]) TryPushBack(item T) bool { return u.tryPush(item, true) }

// TryPushFront prepends without blocking; fails only on lock contention or
// after Close.
func (u *Unbounded[T]) TryPushFront(item T) bool { return u.tryPush(item, false) }

// pushTimeout bounds only lock acquisition; there is no space to wait for.
func (u *Unbounded[T]) pushTimeout(item T, timeout time.Duration, atBack bool) bool {
	if !u.mon.LockTimeout(timeout) {
		u.stats.Timeout()
		if u.metrics != nil {
			u.metrics.recordTimeout()
		}
		return false
	}
	defer u.mon.Unlock()

	if u.closed {
		return false
	}
	u.pushLocked(item, atBack)
	return true
}

// PushBackTimeout appends, waiting up to timeout to acquire the lock.
// The timeout does not model backpressure: an unbounded queue has no
// capacity predicate to wait on.
func (u *Unbounded[T]) PushBackTimeout(item T, timeout time.Duration) bool {
	return u.pushTimeout(item, timeout, true)
}

// PushFrontTimeout prepends, waiting up to timeout to acquire the lock.
func (u *Unbounded[T]) PushFrontTimeout(item T, timeout time.Duration) bool {
	return u.pushTimeout(item, timeout, false)
}

// PushBack appends. Only the lock is waited for; the push itself never blocks.
func (u *Unbounded[T]) PushBack(item T) error { return u.push(item, true) }

// PushFront prepends. Only the lock is waited for; the push itself never blocks.
func (u *Unbounded[T]) PushFront(item T) error { return u.push(item, false) }

func (u *Unbounded[T]) push(item T, atBack bool) error {
	u.mon.Lock()
	defer u.mon.Unlock()

	if u.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Unbounded", "Push", "push to closed queue")
	}
	u.pushLocked(item, atBack)
	return nil
}

// pushLocked inserts under the held lock and wakes one consumer.
func (u *Unbounded[T]) pushLocked(item T, atBack bool) {
	if atBack {
		u.items.PushBack(item)
	} else {
		u.items.PushFront(item)
	}

	u.stats.Push()
	u.stats.UpdateSize(int64(u.items.Len()))
	if u.metrics != nil {
		u.metrics.recordPush(u.items.Len(), 0)
	}

	u.notEmpty.Signal()
}

// tryPop attempts a non-suspending pop at either end.
func (u *Unbounded[T]) tryPop(fromFront bool) (T, bool) {
	var zero T
	if !u.mon.TryLock() {
		u.stats.Reject()
		return zero, false
	}
	defer u.mon.Unlock()

	if u.items.Len() == 0 {
		u.stats.Reject()
		return zero, false
	}
	return u.popLocked(fromFront), true
}

// TryPopFront removes and returns the front element without blocking.
func (u *Unbounded[T]) TryPopFront() (T, bool) { return u.tryPop(true) }

// TryPopBack removes and returns the back element without blocking.
func (u *Unbounded[T]) TryPopBack() (T, bool) { return u.tryPop(false) }

// popTimeout pops at either end, waiting up to timeout for an element.
func (u *Unbounded[T]) popTimeout(timeout time.Duration, fromFront bool) (T, bool) {
	var zero T
	u.mon.Lock()
	defer u.mon.Unlock()

	ok := u.notEmpty.WaitTimeout(func() bool {
		return u.closed || u.items.Len() > 0
	}, timeout)
	if !ok {
		u.stats.Timeout()
		if u.metrics != nil {
			u.metrics.recordTimeout()
		}
		return zero, false
	}
	if u.items.Len() == 0 {
		return zero, false
	}
	return u.popLocked(fromFront), true
}

// PopFrontTimeout removes and returns the front element, waiting up to timeout.
func (u *Unbounded[T]) PopFrontTimeout(timeout time.Duration) (T, bool) {
	return u.popTimeout(timeout, true)
}

// PopBackTimeout removes and returns the back element, waiting up to timeout.
func (u *Unbounded[T]) PopBackTimeout(timeout time.Duration) (T, bool) {
	return u.popTimeout(timeout, false)
}

// pop blocks indefinitely until an element exists or the queue is closed
// and drained.
func (u *Unbounded[T]) pop(fromFront bool) (T, error) {
	var zero T
	u.mon.Lock()
	defer u.mon.Unlock()

	u.notEmpty.Wait(func() bool {
		return u.closed || u.items.Len() > 0
	})
	if u.items.Len() == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Unbounded", "Pop", "pop from closed queue")
	}
	return u.popLocked(fromFront), nil
}

// PopFront removes and returns the front element, blocking until one exists.
func (u *Unbounded[T]) PopFront() (T, error) { return u.pop(true) }

// PopBack removes and returns the back element, blocking until one exists.
func (u *Unbounded[T]) PopBack() (T, error) { return u.pop(false) }

// popContext pops at either end, waiting until ctx is done.
func (u *Unbounded[T]) popContext(ctx context.Context, fromFront bool) (T, error) {
	var zero T
	u.mon.Lock()
	defer u.mon.Unlock()

	err := u.notEmpty.WaitContext(ctx, func() bool {
		return u.closed || u.items.Len() > 0
	})
	if err != nil {
		u.stats.Timeout()
		return zero, err
	}
	if u.items.Len() == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Unbounded", "PopContext", "pop from closed queue")
	}
	return u.popLocked(fromFront), nil
}

// PopFrontContext removes and returns the front element, waiting until ctx is done.
func (u *Unbounded[T]) PopFrontContext(ctx context.Context) (T, error) {
	return u.popContext(ctx, true)
}

// PopBackContext removes and returns the back element, waiting until ctx is done.
func (u *Unbounded[T]) PopBackContext(ctx context.Context) (T, error) {
	return u.popContext(ctx, false)
}

// popLocked removes under the held lock.
func (u *Unbounded[T]) popLocked(fromFront bool) T {
	var item T
	if fromFront {
		item, _ = u.items.PopFront()
	} else {
		item, _ = u.items.PopBack()
	}

	u.stats.Pop()
	u.stats.UpdateSize(int64(u.items.Len()))
	if u.metrics != nil {
		u.metrics.recordPop(u.items.Len(), 0)
	}
	return item
}

// tryPeek reads an end element without blocking or removal.
func (u *Unbounded[T]) tryPeek(front bool) (T, bool) {
	var zero T
	if !u.mon.TryLock() {
		return zero, false
	}
	defer u.mon.Unlock()

	u.stats.Peek()
	if u.metrics != nil {
		u.metrics.recordPeek()
	}
	if front {
		return u.items.Front()
	}
	return u.items.Back()
}

// TryPeekFront returns the front element without removing it, without blocking.
func (u *Unbounded[T]) TryPeekFront() (T, bool) { return u.tryPeek(true) }

// TryPeekBack returns the back element without removing it, without blocking.
func (u *Unbounded[T]) TryPeekBack() (T, bool) { return u.tryPeek(false) }

// peek blocks until the queue is non-empty, then reads an end element.
func (u *Unbounded[T]) peek(front bool) (T, error) {
	var zero T
	u.mon.Lock()
	defer u.mon.Unlock()

	u.notEmpty.Wait(func() bool {
		return u.closed || u.items.Len() > 0
	})
	if u.items.Len() == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Unbounded", "Peek", "peek at closed queue")
	}

	u.stats.Peek()
	if u.metrics != nil {
		u.metrics.recordPeek()
	}
	var item T
	if front {
		item, _ = u.items.Front()
	} else {
		item, _ = u.items.Back()
	}
	return item, nil
}

// PeekFront returns the front element without removal, blocking until one exists.
func (u *Unbounded[T]) PeekFront() (T, error) { return u.peek(true) }

// PeekBack returns the back element without removal, blocking until one exists.
func (u *Unbounded[T]) PeekBack() (T, error) { return u.peek(false) }

// peekTimeout reads an end element, waiting up to timeout for one to exist.
func (u *Unbounded[T]) peekTimeout(timeout time.Duration, front bool) (T, bool) {
	var zero T
	u.mon.Lock()
	defer u.mon.Unlock()

	ok := u.notEmpty.WaitTimeout(func() bool {
		return u.closed || u.items.Len() > 0
	}, timeout)
	if !ok {
		u.stats.Timeout()
		return zero, false
	}
	if u.items.Len() == 0 {
		return zero, false
	}

	u.stats.Peek()
	if u.metrics != nil {
		u.metrics.recordPeek()
	}
	if front {
		return u.items.Front()
	}
	return u.items.Back()
}

// PeekFrontTimeout returns the front element without removal, waiting up to timeout.
func (u *Unbounded[T]) PeekFrontTimeout(timeout time.Duration) (T, bool) {
	return u.peekTimeout(timeout, true)
}

// PeekBackTimeout returns the back element without removal, waiting up to timeout.
func (u *Unbounded[T]) PeekBackTimeout(timeout time.Duration) (T, bool) {
	return u.peekTimeout(timeout, false)
}

// Access runs fn with exclusive access to the raw underlying deque.
// The same trust boundary as Bounded.Access applies: fn must not block,
// re-enter the adapter, or retain the reference.
func (u *Unbounded[T]) Access(fn func(d *Deque[T])) {
	u.mon.Lock()
	defer func() {
		u.stats.Access()
		u.stats.UpdateSize(int64(u.items.Len()))
		if u.metrics != nil {
			u.metrics.updateSize(u.items.Len(), 0)
		}
		u.notEmpty.Broadcast()
		u.mon.Unlock()
	}()

	fn(u.items)
}

// Clear removes all elements.
func (u *Unbounded[T]) Clear() {
	u.mon.Lock()
	defer u.mon.Unlock()

	u.items.Clear()
	u.stats.UpdateSize(0)
	if u.metrics != nil {
		u.metrics.updateSize(0, 0)
	}
}

// Resize changes the element count to n, truncating or padding with zero
// values like a plain sequence container. Returns a classified invalid
// error if n is negative.
func (u *Unbounded[T]) Resize(n int) error {
	if n < 0 {
		return errors.WrapInvalid(errors.ErrOutOfRange, "Unbounded", "Resize", "validate length")
	}

	u.mon.Lock()
	defer u.mon.Unlock()

	before := u.items.Len()
	u.items.Resize(n)
	u.stats.UpdateSize(int64(n))
	if u.metrics != nil {
		u.metrics.updateSize(n, 0)
	}
	if n > before {
		u.notEmpty.Broadcast()
	}
	return nil
}

// Size returns the current number of elements.
func (u *Unbounded[T]) Size() int {
	u.mon.RLock()
	defer u.mon.RUnlock()
	return u.items.Len()
}

// MaxSize reports the unbounded sentinel.
func (u *Unbounded[T]) MaxSize() int {
	return math.MaxInt
}

// IsEmpty reports whether the queue holds no elements.
func (u *Unbounded[T]) IsEmpty() bool {
	return u.Size() == 0
}

// Values returns a front-to-back copy of the elements.
func (u *Unbounded[T]) Values() []T {
	u.mon.RLock()
	defer u.mon.RUnlock()
	return u.items.Values()
}

// Close marks the queue closed and wakes all waiters. Subsequent pushes
// fail; pops drain remaining elements and then report closed. Close is
// idempotent.
func (u *Unbounded[T]) Close() error {
	u.mon.Lock()
	defer u.mon.Unlock()

	if u.closed {
		return nil
	}
	u.closed = true
	u.notEmpty.Broadcast()
	return nil
}

// IsClosed reports whether Close has been called.
func (u *Unbounded[T]) IsClosed() bool {
	u.mon.RLock()
	defer u.mon.RUnlock()
	return u.closed
}

// Stats returns adapter statistics (always available for observability).
func (u *Unbounded[T]) Stats() *Statistics {
	return u.stats
}
