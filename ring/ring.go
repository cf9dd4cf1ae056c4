// Package ring provides a generic fixed-capacity circular buffer and a
// synchronized adapter over it with an explicit overflow policy.
//
// The raw Ring overwrites the oldest element at the pushed end once full;
// the synchronized Buffer makes that behavior a caller-chosen policy applied
// uniformly to every push form: Block (wait for space, the default),
// DropOldest (overwrite), or DropNewest (discard the incoming element).
package ring

// Ring is an unsynchronized circular buffer with fixed capacity. Pushing
// into a full ring overwrites the oldest element at that end. It is the raw
// collection owned by Buffer; use it directly only from single-goroutine
// code or inside Buffer's Access callback.
type Ring[T any] struct {
	items []T
	head  int // next read position
	size  int
}

// NewRing creates a ring with the given capacity. Capacities below one are
// clamped to one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring[T]{items: make([]T, capacity)}
}

// Len returns the number of elements.
func (r *Ring[T]) Len() int { return r.size }

// Capacity returns the fixed capacity.
func (r *Ring[T]) Capacity() int { return len(r.items) }

// Full reports whether the ring is at capacity.
func (r *Ring[T]) Full() bool { return r.size == len(r.items) }

// Empty reports whether the ring holds no elements.
func (r *Ring[T]) Empty() bool { return r.size == 0 }

// PushBack appends an element. When full, the front (oldest) element is
// overwritten and returned with overwrote true.
func (r *Ring[T]) PushBack(item T) (dropped T, overwrote bool) {
	if r.Full() {
		dropped = r.items[r.head]
		r.items[r.head] = item
		r.head = r.wrap(r.head + 1)
		return dropped, true
	}
	r.items[r.wrap(r.head+r.size)] = item
	r.size++
	return dropped, false
}

// PushFront prepends an element. When full, the back element at that end is
// overwritten and returned with overwrote true.
func (r *Ring[T]) PushFront(item T) (dropped T, overwrote bool) {
	if r.Full() {
		backIdx := r.wrap(r.head + r.size - 1)
		dropped = r.items[backIdx]
		r.head = r.wrap(r.head - 1)
		r.items[r.head] = item
		return dropped, true
	}
	r.head = r.wrap(r.head - 1)
	r.items[r.head] = item
	r.size++
	return dropped, false
}

// PopFront removes and returns the front element.
func (r *Ring[T]) PopFront() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	item := r.items[r.head]
	r.items[r.head] = zero // Clear for GC
	r.head = r.wrap(r.head + 1)
	r.size--
	return item, true
}

// PopBack removes and returns the back element.
func (r *Ring[T]) PopBack() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	idx := r.wrap(r.head + r.size - 1)
	item := r.items[idx]
	r.items[idx] = zero // Clear for GC
	r.size--
	return item, true
}

// Front returns the front element without removing it.
func (r *Ring[T]) Front() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.items[r.head], true
}

// Back returns the back element without removing it.
func (r *Ring[T]) Back() (T, bool) {
	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.items[r.wrap(r.head+r.size-1)], true
}

// At returns the element at position i, front-to-back.
func (r *Ring[T]) At(i int) (T, bool) {
	var zero T
	if i < 0 || i >= r.size {
		return zero, false
	}
	return r.items[r.wrap(r.head+i)], true
}

// SetCapacity reallocates storage with the new capacity, keeping the first
// min(Len, n) elements. Capacities below one are clamped to one.
func (r *Ring[T]) SetCapacity(n int) {
	if n < 1 {
		n = 1
	}
	items := make([]T, n)
	keep := r.size
	if keep > n {
		keep = n
	}
	for i := 0; i < keep; i++ {
		items[i] = r.items[r.wrap(r.head+i)]
	}
	r.items = items
	r.head = 0
	r.size = keep
}

// Clear removes all elements.
func (r *Ring[T]) Clear() {
	var zero T
	for i := 0; i < r.size; i++ {
		r.items[r.wrap(r.head+i)] = zero
	}
	r.head = 0
	r.size = 0
}

// Values returns a front-to-back copy of the elements.
func (r *Ring[T]) Values() []T {
	out := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[r.wrap(r.head+i)]
	}
	return out
}

func (r *Ring[T]) wrap(i int) int {
	n := len(r.items)
	if i < 0 {
		return i + n
	}
	if i >= n {
		return i - n
	}
	return i
}
