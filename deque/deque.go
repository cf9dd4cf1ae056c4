// Package deque provides a generic double-ended queue and two synchronized
// adapters over it: Bounded (fixed capacity, blocks producers when full and
// consumers when empty) and Unbounded (never blocks producers, blocks
// consumers when empty).
//
// Every blocking operation of the adapters exists in three forms:
//   - Try* attempts the operation without suspending and reports success
//   - *Timeout waits up to a duration and reports success
//   - the bare form waits indefinitely, released only by progress or Close
//
// Statistics are always collected for observability. Prometheus metrics can
// be optionally enabled via the WithMetrics functional option.
package deque

// Deque is an unsynchronized, growable double-ended queue backed by a ring
// of slice storage. It is the raw collection owned by the synchronized
// adapters; use it directly only from single-goroutine code or inside an
// adapter's Access callback.
type Deque[T any] struct {
	items []T
	head  int
	size  int
}

const minDequeCapacity = 8

// NewDeque creates an empty Deque.
func NewDeque[T any]() *Deque[T] {
	return &Deque[T]{}
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int {
	return d.size
}

// PushBack appends an element at the back.
func (d *Deque[T]) PushBack(item T) {
	d.grow(d.size + 1)
	d.items[d.index(d.size)] = item
	d.size++
}

// PushFront prepends an element at the front.
func (d *Deque[T]) PushFront(item T) {
	d.grow(d.size + 1)
	d.head = d.wrap(d.head - 1)
	d.items[d.head] = item
	d.size++
}

// PopFront removes and returns the front element.
func (d *Deque[T]) PopFront() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	item := d.items[d.head]
	d.items[d.head] = zero // Clear for GC
	d.head = d.wrap(d.head + 1)
	d.size--
	return item, true
}

// PopBack removes and returns the back element.
func (d *Deque[T]) PopBack() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	idx := d.index(d.size - 1)
	item := d.items[idx]
	d.items[idx] = zero // Clear for GC
	d.size--
	return item, true
}

// Front returns the front element without removing it.
func (d *Deque[T]) Front() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	return d.items[d.head], true
}

// Back returns the back element without removing it.
func (d *Deque[T]) Back() (T, bool) {
	var zero T
	if d.size == 0 {
		return zero, false
	}
	return d.items[d.index(d.size-1)], true
}

// At returns the element at position i, front-to-back.
func (d *Deque[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= d.size {
		return zero, false
	}
	return d.items[d.index(i)], true
}

// Set replaces the element at position i, front-to-back.
func (d *Deque[T]) Set(i int, item T) bool {
	if i < 0 || i >= d.size {
		return false
	}
	d.items[d.index(i)] = item
	return true
}

// Resize changes the length to n: truncating from the back when shrinking,
// appending zero values when growing. Negative n is treated as zero.
func (d *Deque[T]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	var zero T
	for d.size > n {
		d.items[d.index(d.size-1)] = zero
		d.size--
	}
	for d.size < n {
		d.PushBack(zero)
	}
}

// Clear removes all elements.
func (d *Deque[T]) Clear() {
	var zero T
	for i := 0; i < d.size; i++ {
		d.items[d.index(i)] = zero
	}
	d.head = 0
	d.size = 0
}

// Values returns a front-to-back copy of the elements.
func (d *Deque[T]) Values() []T {
	out := make([]T, d.size)
	for i := 0; i < d.size; i++ {
		out[i] = d.items[d.index(i)]
	}
	return out
}

// index maps a logical position to a storage slot.
func (d *Deque[T]) index(i int) int {
	return d.wrap(d.head + i)
}

func (d *Deque[T]) wrap(i int) int {
	n := len(d.items)
	if n == 0 {
		return 0
	}
	// i is always within one capacity of the valid range.
	if i < 0 {
		return i + n
	}
	if i >= n {
		return i - n
	}
	return i
}

// grow ensures storage for at least need elements, doubling and compacting
// into a fresh slice when the ring is full.
func (d *Deque[T]) grow(need int) {
	if need <= len(d.items) {
		return
	}
	capacity := len(d.items) * 2
	if capacity < minDequeCapacity {
		capacity = minDequeCapacity
	}
	for capacity < need {
		capacity *= 2
	}
	items := make([]T, capacity)
	for i := 0; i < d.size; i++ {
		items[i] = d.items[d.index(i)]
	}
	d.items = items
	d.head = 0
}
