package ring

import (
	"time"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/monitor"
)

// Buffer is a synchronized fixed-capacity circular buffer. Its surface
// mirrors deque.Bounded; the difference is the overflow policy, which is
// chosen at construction and applied uniformly to every push form.
//
// Drop callbacks run outside the buffer lock.
type Buffer[T any] struct {
	mon      *monitor.Monitor
	notEmpty *monitor.Cond
	notFull  *monitor.Cond

	items  *Ring[T]
	policy OverflowPolicy
	dropFn DropCallback[T]
	closed bool

	stats   *Statistics    // ALWAYS initialized for observability
	metrics *bufferMetrics // Optional Prometheus metrics
}

// NewBuffer creates a synchronized ring buffer with the given capacity.
// Returns a classified invalid error if capacity is not positive, or a
// transient error if metrics registration fails when requested.
func NewBuffer[T any](capacity int, options ...Option[T]) (*Buffer[T], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidCapacity, "Buffer", "NewBuffer", "validate capacity")
	}

	opts := applyOptions(options...)

	var metrics *bufferMetrics
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		var err error
		metrics, err = newBufferMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Buffer", "NewBuffer", "metrics registration")
		}
	}

	mon := monitor.New()
	return &Buffer[T]{
		mon:      mon,
		notEmpty: mon.NewCond(),
		notFull:  mon.NewCond(),
		items:    NewRing[T](capacity),
		policy:   opts.overflowPolicy,
		dropFn:   opts.dropCallback,
		stats:    NewStatistics(),
		metrics:  metrics,
	}, nil
}

// Policy returns the overflow policy chosen at construction.
func (b *Buffer[T]) Policy() OverflowPolicy {
	return b.policy
}

// insertLocked applies the overflow policy for a full buffer and inserts
// the element when the policy admits it. It reports whether the element was
// accepted and returns any dropped element for the out-of-lock callback.
func (b *Buffer[T]) insertLocked(item T, atBack bool) (accepted bool, dropped T, hasDropped bool) {
	if b.items.Full() {
		switch b.policy {
		case DropOldest:
			b.stats.Overflow()
			b.stats.Drop()
			if b.metrics != nil {
				b.metrics.recordOverflow()
				b.metrics.recordDrop()
			}
			if atBack {
				dropped, _ = b.items.PushBack(item)
			} else {
				dropped, _ = b.items.PushFront(item)
			}
			b.afterInsert()
			return true, dropped, true

		case DropNewest:
			b.stats.Overflow()
			b.stats.Drop()
			if b.metrics != nil {
				b.metrics.recordOverflow()
				b.metrics.recordDrop()
			}
			// The incoming element is the drop; the buffer is unchanged.
			return true, item, true

		default: // Block: caller handles waiting; a full buffer here means reject
			return false, dropped, false
		}
	}

	if atBack {
		b.items.PushBack(item)
	} else {
		b.items.PushFront(item)
	}
	b.afterInsert()
	return true, dropped, false
}

// afterInsert updates accounting and wakes one consumer. Lock held.
func (b *Buffer[T]) afterInsert() {
	b.stats.Push()
	b.stats.UpdateSize(int64(b.items.Len()))
	if b.metrics != nil {
		b.metrics.recordPush(b.items.Len(), b.items.Capacity())
	}
	b.notEmpty.Signal()
}

// tryPush attempts a non-suspending push at either end.
func (b *Buffer[T]) tryPush(item T, atBack bool) bool {
	if !b.mon.TryLock() {
		b.stats.Reject()
		return false
	}

	if b.closed {
		b.stats.Reject()
		b.mon.Unlock()
		return false
	}

	accepted, dropped, hasDropped := b.insertLocked(item, atBack)
	if !accepted {
		b.stats.Reject()
	}
	b.mon.Unlock()

	if hasDropped && b.dropFn != nil {
		b.dropFn(dropped)
	}
	return accepted
}

// TryPushBack appends without blocking. Under Block policy it fails when
// full; under the drop policies it always succeeds.
func (b *Buffer[T]) TryPushBack(item T) bool { return b.tryPush(item, true) }

// TryPushFront prepends without blocking. Under Block policy it fails when
// full; under the drop policies it always succeeds.
func (b *Buffer[T]) TryPushFront(item T) bool { return b.tryPush(item, false) }

// pushTimeout pushes at either end. Under Block policy it waits up to
// timeout for space; the drop policies never wait.
func (b *Buffer[T]) pushTimeout(item T, timeout time.Duration, atBack bool) bool {
	b.mon.Lock()

	if b.policy == Block {
		ok := b.notFull.WaitTimeout(func() bool {
			return b.closed || !b.items.Full()
		}, timeout)
		if !ok {
			b.stats.Timeout()
			if b.metrics != nil {
				b.metrics.recordTimeout()
			}
			b.mon.Unlock()
			return false
		}
	}
	if b.closed {
		b.mon.Unlock()
		return false
	}

	accepted, dropped, hasDropped := b.insertLocked(item, atBack)
	b.mon.Unlock()

	if hasDropped && b.dropFn != nil {
		b.dropFn(dropped)
	}
	return accepted
}

// PushBackTimeout appends, waiting up to timeout for space under Block policy.
func (b *Buffer[T]) PushBackTimeout(item T, timeout time.Duration) bool {
	return b.pushTimeout(item, timeout, true)
}

// PushFrontTimeout prepends, waiting up to timeout for space under Block policy.
func (b *Buffer[T]) PushFrontTimeout(item T, timeout time.Duration) bool {
	return b.pushTimeout(item, timeout, false)
}

// push blocks until space is available under Block policy; the drop
// policies insert immediately.
func (b *Buffer[T]) push(item T, atBack bool) error {
	b.mon.Lock()

	if b.policy == Block {
		b.notFull.Wait(func() bool {
			return b.closed || !b.items.Full()
		})
	}
	if b.closed {
		b.mon.Unlock()
		return errors.WrapInvalid(errors.ErrClosed, "Buffer", "Push", "push to closed buffer")
	}

	_, dropped, hasDropped := b.insertLocked(item, atBack)
	b.mon.Unlock()

	if hasDropped && b.dropFn != nil {
		b.dropFn(dropped)
	}
	return nil
}

// PushBack appends, blocking for space under Block policy.
func (b *Buffer[T]) PushBack(item T) error { return b.push(item, true) }

// PushFront prepends, blocking for space under Block policy.
func (b *Buffer[T]) PushFront(item T) error { return b.push(item, false) }

// tryPop attempts a non-suspending pop at either end.
func (b *Buffer[T]) tryPop(fromFront bool) (T, bool) {
	var zero T
	if !b.mon.TryLock() {
		b.stats.Reject()
		return zero, false
	}
	defer b.mon.Unlock()

	if b.items.Empty() {
		b.stats.Reject()
		return zero, false
	}
	return b.popLocked(fromFront), true
}

// TryPopFront removes and returns the front element without blocking.
func (b *Buffer[T]) TryPopFront() (T, bool) { return b.tryPop(true) }

// TryPopBack removes and returns the back element without blocking.
func (b *Buffer[T]) TryPopBack() (T, bool) { return b.tryPop(false) }

// popTimeout pops at either end, waiting up to timeout for an element.
func (b *Buffer[T]) popTimeout(timeout time.Duration, fromFront bool) (T, bool) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	ok := b.notEmpty.WaitTimeout(func() bool {
		return b.closed || !b.items.Empty()
	}, timeout)
	if !ok {
		b.stats.Timeout()
		if b.metrics != nil {
			b.metrics.recordTimeout()
		}
		return zero, false
	}
	if b.items.Empty() {
		return zero, false
	}
	return b.popLocked(fromFront), true
}

// PopFrontTimeout removes and returns the front element, waiting up to timeout.
func (b *Buffer[T]) PopFrontTimeout(timeout time.Duration) (T, bool) {
	return b.popTimeout(timeout, true)
}

// PopBackTimeout removes and returns the back element, waiting up to timeout.
func (b *Buffer[T]) PopBackTimeout(timeout time.Duration) (T, bool) {
	return b.popTimeout(timeout, false)
}

// pop blocks until an element exists or the buffer is closed and drained.
func (b *Buffer[T]) pop(fromFront bool) (T, error) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	b.notEmpty.Wait(func() bool {
		return b.closed || !b.items.Empty()
	})
	if b.items.Empty() {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Buffer", "Pop", "pop from closed buffer")
	}
	return b.popLocked(fromFront), nil
}

// PopFront removes and returns the front element, blocking until one exists.
func (b *Buffer[T]) PopFront() (T, error) { return b.pop(true) }

// PopBack removes and returns the back element, blocking until one exists.
func (b *Buffer[T]) PopBack() (T, error) { return b.pop(false) }

// popLocked removes under the held lock and wakes one producer.
func (b *Buffer[T]) popLocked(fromFront bool) T {
	var item T
	if fromFront {
		item, _ = b.items.PopFront()
	} else {
		item, _ = b.items.PopBack()
	}

	b.stats.Pop()
	b.stats.UpdateSize(int64(b.items.Len()))
	if b.metrics != nil {
		b.metrics.recordPop(b.items.Len(), b.items.Capacity())
	}

	b.notFull.Signal()
	return item
}

// TryPeekFront returns the front element without removing it, without blocking.
func (b *Buffer[T]) TryPeekFront() (T, bool) {
	var zero T
	if !b.mon.TryLock() {
		return zero, false
	}
	defer b.mon.Unlock()
	b.stats.Peek()
	return b.items.Front()
}

// TryPeekBack returns the back element without removing it, without blocking.
func (b *Buffer[T]) TryPeekBack() (T, bool) {
	var zero T
	if !b.mon.TryLock() {
		return zero, false
	}
	defer b.mon.Unlock()
	b.stats.Peek()
	return b.items.Back()
}

// PeekFront returns the front element without removal, blocking until the
// buffer is non-empty.
func (b *Buffer[T]) PeekFront() (T, error) { return b.peek(true) }

// PeekBack returns the back element without removal, blocking until the
// buffer is non-empty.
func (b *Buffer[T]) PeekBack() (T, error) { return b.peek(false) }

func (b *Buffer[T]) peek(front bool) (T, error) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	b.notEmpty.Wait(func() bool {
		return b.closed || !b.items.Empty()
	})
	if b.items.Empty() {
		return zero, errors.WrapInvalid(errors.ErrClosed, "Buffer", "Peek", "peek at closed buffer")
	}

	b.stats.Peek()
	var item T
	if front {
		item, _ = b.items.Front()
	} else {
		item, _ = b.items.Back()
	}
	return item, nil
}

// PeekFrontTimeout returns the front element without removal, waiting up to timeout.
func (b *Buffer[T]) PeekFrontTimeout(timeout time.Duration) (T, bool) {
	return b.peekTimeout(timeout, true)
}

// PeekBackTimeout returns the back element without removal, waiting up to timeout.
func (b *Buffer[T]) PeekBackTimeout(timeout time.Duration) (T, bool) {
	return b.peekTimeout(timeout, false)
}

func (b *Buffer[T]) peekTimeout(timeout time.Duration, front bool) (T, bool) {
	var zero T
	b.mon.Lock()
	defer b.mon.Unlock()

	ok := b.notEmpty.WaitTimeout(func() bool {
		return b.closed || !b.items.Empty()
	}, timeout)
	if !ok {
		b.stats.Timeout()
		return zero, false
	}
	if b.items.Empty() {
		return zero, false
	}

	b.stats.Peek()
	if front {
		return b.items.Front()
	}
	return b.items.Back()
}

// Access runs fn with exclusive access to the raw underlying ring. The same
// trust boundary as deque.Bounded.Access applies: fn must not block, must
// not call back into this buffer, and must not retain the reference. All
// waiters are woken afterward since fn may have changed the size in either
// direction.
func (b *Buffer[T]) Access(fn func(r *Ring[T])) {
	b.mon.Lock()
	defer func() {
		b.stats.UpdateSize(int64(b.items.Len()))
		if b.metrics != nil {
			b.metrics.updateSize(b.items.Len(), b.items.Capacity())
		}
		b.notFull.Broadcast()
		b.notEmpty.Broadcast()
		b.mon.Unlock()
	}()

	fn(b.items)
}

// Clear removes all elements and wakes all blocked producers.
func (b *Buffer[T]) Clear() {
	b.mon.Lock()
	defer b.mon.Unlock()

	b.items.Clear()
	b.stats.UpdateSize(0)
	if b.metrics != nil {
		b.metrics.updateSize(0, b.items.Capacity())
	}
	b.notFull.Broadcast()
}

// SetCapacity reallocates storage with a new capacity, truncating to the
// first n elements when shrinking below the current size. Growing wakes
// blocked producers. Returns a classified invalid error if n is not positive.
func (b *Buffer[T]) SetCapacity(n int) error {
	if n <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidCapacity, "Buffer", "SetCapacity", "validate capacity")
	}

	b.mon.Lock()
	defer b.mon.Unlock()

	grew := n > b.items.Capacity()
	b.items.SetCapacity(n)
	b.stats.UpdateSize(int64(b.items.Len()))
	if b.metrics != nil {
		b.metrics.updateSize(b.items.Len(), n)
	}
	if grew {
		b.notFull.Broadcast()
	}
	return nil
}

// Reserve grows the capacity to at least n. It never shrinks.
func (b *Buffer[T]) Reserve(n int) error {
	if n <= 0 {
		return errors.WrapInvalid(errors.ErrInvalidCapacity, "Buffer", "Reserve", "validate capacity")
	}

	b.mon.Lock()
	defer b.mon.Unlock()

	if n <= b.items.Capacity() {
		return nil
	}
	b.items.SetCapacity(n)
	if b.metrics != nil {
		b.metrics.updateSize(b.items.Len(), n)
	}
	b.notFull.Broadcast()
	return nil
}

// Size returns the current number of elements.
func (b *Buffer[T]) Size() int {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Len()
}

// Capacity returns the current capacity.
func (b *Buffer[T]) Capacity() int {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Capacity()
}

// Full reports whether the buffer is at capacity.
func (b *Buffer[T]) Full() bool {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Full()
}

// IsEmpty reports whether the buffer holds no elements.
func (b *Buffer[T]) IsEmpty() bool {
	return b.Size() == 0
}

// Values returns a front-to-back copy of the elements.
func (b *Buffer[T]) Values() []T {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.items.Values()
}

// Close marks the buffer closed and wakes all waiters. Subsequent pushes
// fail; pops drain remaining elements and then report closed. Close is
// idempotent.
func (b *Buffer[T]) Close() error {
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
func (b *Buffer[T]) IsClosed() bool {
	b.mon.RLock()
	defer b.mon.RUnlock()
	return b.closed
}

// Stats returns buffer statistics (always available for observability).
func (b *Buffer[T]) Stats() *Statistics {
	return b.stats
}
