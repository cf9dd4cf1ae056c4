package deque

import (
	"context"
	"time"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/monitor"
)

// Bounded is a synchronized double-ended queue with a fixed capacity.
// Producers block while the queue is full and consumers block while it is
// empty, giving exact backpressure: producers cannot outrun consumers by
// more than Capacity elements.
//
// After Close, pushes fail, blocked waiters wake, and consumers may keep
// draining remaining elements until the queue is empty.
type Bounded[T any] struct {
	mon      *monitor.Monitor
	notEmpty *monitor.Cond
	notFull  *monitor.Cond

	items    *Deque[T]
	capacity int
	closed   bool

	stats   *Statistics     // ALWAYS initialized for observability
	metrics *adapterMetrics // Optional Prometheus metrics
}

// NewBounded creates a bounded deque with the given capacity.
// Returns a classified invalid error if capacity is not positive, or a
// transient error if metrics registration fails when requested.
func NewBounded[T any](capacity int, options ...Option[T]) (*Bounded[T], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, "Bounded", "NewBounded", "validate capacity")
	}

	opts := applyOptions(options...)

	var metrics *adapterMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newAdapterMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Bounded", "NewBounded", "metrics registration")
		}
	}

	mon := monitor.New()
	return &Bounded[T]{
		mon:      mon,
		notEmpty: mon.NewCond(),
		notFull:  mon.NewCond(),
		items:    NewDeque[T](),
		capacity: capacity,
		stats:    NewStatistics(),
		metrics:  metrics,
	}, nil
}

// tryPush attempts a non-suspending push at either end. It fails immediately
// when the lock is contended, the queue is closed, or the queue is full.
func (b *Bounded[T]) tryPush(item T, atBack bool) bool {
	if !b.mon.TryLock() {
		b.stats.Reject()
		if b.metrics != nil {
			b.metrics.recordReject()
		}
		return false
	}
	defer b.mon.Unlock()

	if b.closed || b.items.Len() >= b.capacity {
		b.stats.Reject()
		if b.metrics != nil {
			b.metrics.recordReject()
		}
		return false
	}

	b.pushLocked(item, atBack)
	return true
}

// TryPushBack appends without blocking; reports whether the element was added.
func (b *Bounded[T]) TryPushBack(item T) bool { return b.tryPush(item, true) }

// TryPushFront prepends without blocking; reports whether the element was added.
func (b *Bounded[T]) TryPushFront(item T) bool { return b.tryPush(item, false) }

// pushTimeout pushes at either end, waiting up to timeout for space.
func (b *Bounded[T]) pushTimeout(item T, timeout time.Duration, atBack bool) bool {
	b.mon.Lock()
	defer b.mon.Unlock()

	ok := b.notFull.WaitTimeout(func() bool {
		return b.closed || b.items.Len() < b.capacity
	}, timeout)
	if !ok {
		b.stats.Timeout()
		if b.metrics != nil {
			b.metrics.recordTimeout()
		}
		return false
	}
	if b.closed {
		return false
	}

	b.pushLocked(item, atBack)
	return true
}

// PushBackTimeout appends, waiting up to timeout for space.
func (b *Bounded[T]) PushBackTimeout(item T, timeout time.Duration) bool {
	return b.pushTimeout(item, timeout, true)
}

// PushFrontTimeout prepends, waiting up to timeout for space.
func (b *Bounded[T]) PushFrontTimeout(item T, timeout time.Duration) bool {
	return b.pushTimeout(item, timeout, false)
}

// push blocks indefinitely until space is available or the queue is closed.
func (b *Bounded[T]) push(item T, atBack bool) error {
	b.mon.Lock()
	defer b.mon.Unlock()

	b.notFull.Wait(func() bool {
		return b.closed || b.items.Len() < b.capacity
	})
	if b.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Bounded", "Push", "push to closed queue")
	}

	b.pushLocked(item, atBack)
	return nil
}

// PushBack appends, blocking until space is available.
func (b *Bounded[T]) PushBack(item T) error { return b.push(item, true) }

// PushFront prepends, blocking until space is available.
func (b *Bounded[T]) PushFront(item T) error { return b.push(item, false) }

// pushContext pushes at either end, waiting until ctx is done.
func (b *Bounded[T]) pushContext(ctx context.Context, item T, atBack bool) error {
	b.mon.Lock()
	defer b.mon.Unlock()

	err := b.notFull.WaitContext(ctx, func() bool {
		return b.closed || b.items.Len() < b.capacity
	})
	if err != nil {
		b.stats.Timeout()
		if b.metrics != nil {
			b.metrics.recordTimeout()
		}
		return err
	}
	if b.closed {
		return errors.WrapInvalid(errors.ErrClosed, "Bounded", "PushContext", "push to closed queue")
	}

	b.pushLocked(item, atBack)
	return nil
}

// PushBackContext appends, waiting for space until ctx is done.
func (b *Bounded[T]) PushBackContext(ctx context.Context, item T) error {
	return b.pushContext(ctx, item, true)
}

// PushFrontContext prepends, waiting for space until ctx is done.
func (b *Bounded[T]) PushFrontContext(ctx context.Context, item T) error {
	return b.pushContext(ctx, item, false)
}

// pushLocked inserts under the held lock and wakes one consumer.
func (b *Bounded[T]) pushLocked(item T, atBack bool) {
	if atBack {
		b.items.PushBack(item)
	} else {
		b.items.PushFront(item)
	}

	b.stats.Push()
	b.stats.UpdateSize(int64(b.items.Len()))
	if b.metrics != nil {
		b.metrics.recordPush(b.items.Len(), b.capacity)
	}

	b.notEmpty.Signal()
}

// tryPop attempts a non-suspending pop at either end.
func (b *Bounded[T]) tryPop(fromFront bool) (T, bool) {
	var zero T
	if !b.mon.TryLock() {
		b.stats.Reject()
		return zero, false
	}
	defer b.mon.Unlock()

	if b.items.Len() == 0 {
		b.stats.Reject()
		return zero, false
	}
	return b.popLocked(fromFront), true
}

// TryPopFront removes and returns the front element without blocking.
func (b *Bounded[T]) TryPopFront() (T, bool) { return b.tryPop(true) }

// TryPopBack removes and returns the back element without blocking.
func (b *Bounded[T]) TryPopBack() (T, bool) { return b.tryPop(false) }

// popTimeout pops at either end, waiting up to timeout for an element.
func (b *Bounded[T]) popTimeout(timeout time.Duration, fromFront bool) (T, bool) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	ok := b.notEmpty.WaitTimeout(func() bool {
		return b.closed || b.items.Len() > 0
	}, timeout)
	if !ok {
		b.stats.Timeout()
		if b.metrics != nil {
			b.metrics.recordTimeout()
		}
		return zero, false
	}
	if b.items.Len() == 0 {
		// Closed and fully drained.
		return zero, false
	}
	return b.popLocked(fromFront), true
}

// PopFrontTimeout removes and returns the front element, waiting up to timeout.
func (b *Bounded[T]) PopFrontTimeout(timeout time.Duration) (T, bool) {
	return b.popTimeout(timeout, true)
}

// PopBackTimeout removes and returns the back element, waiting up to timeout.
func (b *Bounded[T]) PopBackTimeout(timeout time.Duration) (T, bool) {
	return b.popTimeout(timeout, false)
}

// pop blocks indefinitely until an element is available or the queue is
// closed and drained.
func (b *Bounded[T]) pop(fromFront bool) (T, error) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	b.notEmpty.Wait(func() bool {
		return b.closed || b.items.Len() > 0
	})
	if b.items.Len() == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Bounded", "Pop", "pop from closed queue")
	}
	return b.popLocked(fromFront), nil
}

// PopFront removes and returns the front element, blocking until one exists.
func (b *Bounded[T]) PopFront() (T, error) { return b.pop(true) }

// PopBack removes and returns the back element, blocking until one exists.
func (b *Bounded[T]) PopBack() (T, error) { return b.pop(false) }

// popContext pops at either end, waiting until ctx is done.
func (b *Bounded[T]) popContext(ctx context.Context, fromFront bool) (T, error) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	err := b.notEmpty.WaitContext(ctx, func() bool {
		return b.closed || b.items.Len() > 0
	})
	if err != nil {
		b.stats.Timeout()
		if b.metrics != nil {
			b.metrics.recordTimeout()
		}
		return zero, err
	}
	if b.items.Len() == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Bounded", "PopContext", "pop from closed queue")
	}
	return b.popLocked(fromFront), nil
}

// PopFrontContext removes and returns the front element, waiting until ctx is done.
func (b *Bounded[T]) PopFrontContext(ctx context.Context) (T, error) {
	return b.popContext(ctx, true)
}

// PopBackContext removes and returns the back element, waiting until ctx is done.
func (b *Bounded[T]) PopBackContext(ctx context.Context) (T, error) {
	return b.popContext(ctx, false)
}

// popLocked removes under the held lock and wakes one producer.
func (b *Bounded[T]) popLocked(fromFront bool) T {
	var item T
	if fromFront {
		item, _ = b.items.PopFront()
	} else {
		item, _ = b.items.PopBack()
	}

	b.stats.Pop()
	b.stats.UpdateSize(int64(b.items.Len()))
	if b.metrics != nil {
		b.metrics.recordPop(b.items.Len(), b.capacity)
	}

	b.notFull.Signal()
	return item
}

// tryPeek reads an end element without blocking or removal.
func (b *Bounded[T]) tryPeek(front bool) (T, bool) {
	var zero T
	if !b.mon.TryLock() {
		return zero, false
	}
	defer b.mon.Unlock()

	b.stats.Peek()
	if b.metrics != nil {
		b.metrics.recordPeek()
	}
	if front {
		return b.items.Front()
	}
	return b.items.Back()
}

// TryPeekFront returns the front element without removing it, without blocking.
func (b *Bounded[T]) TryPeekFront() (T, bool) { return b.tryPeek(true) }

// TryPeekBack returns the back element without removing it, without blocking.
func (b *Bounded[T]) TryPeekBack() (T, bool) { return b.tryPeek(false) }

// peek blocks until the queue is non-empty, then reads an end element
// without removal.
func (b *Bounded[T]) peek(front bool) (T, error) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	b.notEmpty.Wait(func() bool {
		return b.closed || b.items.Len() > 0
	})
	if b.items.Len() == 0 {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Bounded", "Peek", "peek at closed queue")
	}

	b.stats.Peek()
	if b.metrics != nil {
		b.metrics.recordPeek()
	}
	var item T
	if front {
		item, _ = b.items.Front()
	} else {
		item, _ = b.items.Back()
	}
	return item, nil
}

// PeekFront returns the front element without removing it, blocking until
// the queue is non-empty.
func (b *Bounded[T]) PeekFront() (T, error) { return b.peek(true) }

// PeekBack returns the back element without removing it, blocking until
// the queue is non-empty.
func (b *Bounded[T]) PeekBack() (T, error) { return b.peek(false) }

// peekTimeout reads an end element, waiting up to timeout for one to exist.
func (b *Bounded[T]) peekTimeout(timeout time.Duration, front bool) (T, bool) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	ok := b.notEmpty.WaitTimeout(func() bool {
		return b.closed || b.items.Len() > 0
	}, timeout)
	if !ok {
		b.stats.Timeout()
		return zero, false
	}
	if b.items.Len() == 0 {
		return zero, false
	}

	b.stats.Peek()
	if b.metrics != nil {
		b.metrics.recordPeek()
	}
	if front {
		return b.items.Front()
	}
	return b.items.Back()
}

// PeekFrontTimeout returns the front element without removal, waiting up to timeout.
func (b *Bounded[T]) PeekFrontTimeout(timeout time.Duration) (T, bool) {
	return b.peekTimeout(timeout, true)
}

// PeekBackTimeout returns the back element without removal, waiting up to timeout.
func (b *Bounded[T]) PeekBackTimeout(timeout time.Duration) (T, bool) {
	return b.peekTimeout(timeout, false)
}

// Access runs fn with exclusive access to the raw underlying deque, for
// compound scans or erasures the narrow API cannot express.
//
// fn must not block, must not call back into this adapter, and must not
// retain the reference after returning. The queue is left however fn last
// left it; no rollback is attempted if fn panics. All waiters are woken
// afterward since fn may have changed the size in either direction.
func (b *Bounded[T]) Access(fn func(d *Deque[T])) {
	b.mon.Lock()
	defer func() {
		b.stats.Access()
		b.stats.UpdateSize(int64(b.items.Len()))
		if b.metrics != nil {
			b.metrics.updateSize(b.items.Len(), b.capacity)
		}
		b.notFull.Broadcast()
		b.notEmpty.Broadcast()
		b.mon.Unlock()
	}()

	fn(b.items)
}

// Clear removes all elements and wakes all blocked producers.
func (b *Bounded[T]) Clear() {
	b.mon.Lock()
	defer b.mon.Unlock()

	b.items.Clear()
	b.stats.UpdateSize(0)
	if b.metrics != nil {
		b.metrics.updateSize(0, b.capacity)
	}
	b.notFull.Broadcast()
}

// Resize changes the element count to n, truncating or padding with zero
// values. Returns a classified invalid error if n is negative or exceeds
// the capacity.
func (b *Bounded[T]) Resize(n int) error {
	if n < 0 {
		return errors.WrapInvalid(errors.ErrOutOfRange, "Bounded", "Resize", "validate length")
	}

	b.mon.Lock()
	defer b.mon.Unlock()

	if n > b.capacity {
		return errors.WrapInvalid(errors.ErrCapacityExceeded, "Bounded", "Resize", "validate length")
	}

	before := b.items.Len()
	b.items.Resize(n)
	b.stats.UpdateSize(int64(n))
	if b.metrics != nil {
		b.metrics.updateSize(n, b.capacity)
	}

	if n < before {
		b.notFull.Broadcast()
	}
	if n > before {
		b.notEmpty.Broadcast()
	}
	return nil
}

// SetCapacity changes the capacity bound. Shrinking below the current size
// truncates to the first n elements. Growing wakes blocked producers.
// Returns a classified invalid error if n is not positive.
func (b *Bounded[T]) SetCapacity(n int) error {
	if n <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidCapacity, "Bounded", "SetCapacity", "validate capacity")
	}

	b.mon.Lock()
	defer b.mon.Unlock()

	if n < b.items.Len() {
		b.items.Resize(n)
		b.stats.UpdateSize(int64(n))
	}
	grew := n > b.capacity
	b.capacity = n
	if b.metrics != nil {
		b.metrics.updateSize(b.items.Len(), b.capacity)
	}
	if grew {
		b.notFull.Broadcast()
	}
	return nil
}

// Size returns the current number of elements.
func (b *Bounded[T]) Size() int {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Len()
}

// Capacity returns the capacity bound.
func (b *Bounded[T]) Capacity() int {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.capacity
}

// IsEmpty reports whether the queue holds no elements.
func (b *Bounded[T]) IsEmpty() bool {
	return b.Size() == 0
}

// IsFull reports whether the queue is at capacity.
func (b *Bounded[T]) IsFull() bool {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Len() >= b.capacity
}

// Values returns a front-to-back copy of the elements.
func (b *Bounded[T]) Values() []T {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Values()
}

// Close marks the queue closed and wakes all waiters. Subsequent pushes
// fail; pops drain remaining elements and then report closed. Close is
// idempotent.
func (b *Bounded[T]) Close() error {
	b.mon.Lock()
	defer b.mon.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.notEmpty.Broadcast()
	b.notFull.Broadcast()
	return nil
}

// IsClosed reports whether Close has been called.
func (b *Bounded[T]) IsClosed() bool {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.closed
}

// Stats returns adapter statistics (always available for observability).
func (b *Bounded[T]) Stats() *Statistics {
	return b.stats
}
