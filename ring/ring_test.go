package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingPushPopFIFO(t *testing.T) {
	r := NewRing[int](4)

	for i := 1; i <= 4; i++ {
		_, overwrote := r.PushBack(i)
		assert.False(t, overwrote)
	}
	require.True(t, r.Full())

	for i := 1; i <= 4; i++ {
		v, ok := r.PopFront()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.True(t, r.Empty())
}

func TestRingOverwriteOldestAtBack(t *testing.T) {
	r := NewRing[int](3)

	for i := 1; i <= 3; i++ {
		r.PushBack(i)
	}

	dropped, overwrote := r.PushBack(4)
	require.True(t, overwrote)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []int{2, 3, 4}, r.Values())
	assert.Equal(t, 3, r.Len())
}

func TestRingOverwriteAtFront(t *testing.T) {
	r := NewRing[int](3)

	for i := 1; i <= 3; i++ {
		r.PushBack(i)
	}

	dropped, overwrote := r.PushFront(0)
	require.True(t, overwrote)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, []int{0, 1, 2}, r.Values())
}

func TestRingSizeBoundedByCapacity(t *testing.T) {
	r := NewRing[int](5)

	for i := 0; i < 100; i++ {
		r.PushBack(i)
		assert.Equal(t, min(i+1, 5), r.Len())
	}
	assert.Equal(t, []int{95, 96, 97, 98, 99}, r.Values())
}

func TestRingBothEnds(t *testing.T) {
	r := NewRing[int](8)

	r.PushBack(2)
	r.PushFront(1)
	r.PushBack(3)

	front, ok := r.Front()
	require.True(t, ok)
	assert.Equal(t, 1, front)

	back, ok := r.Back()
	require.True(t, ok)
	assert.Equal(t, 3, back)

	v, ok := r.PopBack()
	require.True(t, ok)
	assert.Equal(t, 3, v)

	v, ok = r.PopFront()
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, r.Len())
}

func TestRingEmptyOperations(t *testing.T) {
	r := NewRing[string](2)

	_, ok := r.PopFront()
	assert.False(t, ok)
	_, ok = r.PopBack()
	assert.False(t, ok)
	_, ok = r.Front()
	assert.False(t, ok)
	_, ok = r.Back()
	assert.False(t, ok)
}

func TestRingAt(t *testing.T) {
	r := NewRing[int](4)
	for i := 1; i <= 4; i++ {
		r.PushBack(i)
	}
	// Force wrap-around of the internal head.
	r.PopFront()
	r.PushBack(5)

	for i := 0; i < 4; i++ {
		v, ok := r.At(i)
		require.True(t, ok)
		assert.Equal(t, i+2, v)
	}

	_, ok := r.At(-1)
	assert.False(t, ok)
	_, ok = r.At(4)
	assert.False(t, ok)
}

func TestRingSetCapacity(t *testing.T) {
	r := NewRing[int](4)
	for i := 1; i <= 4; i++ {
		r.PushBack(i)
	}

	r.SetCapacity(6)
	assert.Equal(t, 6, r.Capacity())
	assert.Equal(t, []int{1, 2, 3, 4}, r.Values())

	r.SetCapacity(2)
	assert.Equal(t, 2, r.Capacity())
	assert.Equal(t, []int{1, 2}, r.Values())
	assert.True(t, r.Full())
}

func TestRingClear(t *testing.T) {
	r := NewRing[int](3)
	for i := 0; i < 3; i++ {
		r.PushBack(i)
	}

	r.Clear()
	assert.True(t, r.Empty())
	assert.Equal(t, 3, r.Capacity())

	r.PushBack(42)
	v, ok := r.PopFront()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing[int](0)
	assert.Equal(t, 1, r.Capacity())

	r.PushBack(1)
	dropped, overwrote := r.PushBack(2)
	require.True(t, overwrote)
	assert.Equal(t, 1, dropped)
}
