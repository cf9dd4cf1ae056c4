package deque

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/metric"
)

func TestNewBoundedValidatesCapacity(t *testing.T) {
	_, err := NewBounded[int](0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	_, err = NewBounded[int](-3)
	require.Error(t, err)

	q, err := NewBounded[int](1)
	require.NoError(t, err)
	defer q.Close()
	assert.Equal(t, 1, q.Capacity())
}

func TestBoundedBackpressureScenario(t *testing.T) {
	q, err := NewBounded[int](2)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))
	assert.True(t, q.IsFull())

	assert.False(t, q.TryPushBack(3))

	v, err := q.PopFront()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	assert.True(t, q.TryPushBack(3))
	assert.Equal(t, []int{2, 3}, q.Values())
}

func TestBoundedFIFOOrder(t *testing.T) {
	q, err := NewBounded[int](16)
	require.NoError(t, err)

	const n = 1000
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < n; i++ {
			if err := q.PushBack(i); err != nil {
				t.Errorf("push %d: %v", i, err)
				return
			}
		}
	}()

	for i := 0; i < n; i++ {
		v, err := q.PopFront()
		require.NoError(t, err)
		assert.Equal(t, i, v)
	}
	<-done
	require.NoError(t, q.Close())
}

func TestBoundedCapacityInvariant(t *testing.T) {
	const capacity = 4
	q, err := NewBounded[int](capacity)
	require.NoError(t, err)
	defer q.Close()

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					q.TryPushBack(1)
				}
			}
		}()
	}
	for c := 0; c < 2; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					q.TryPopFront()
				}
			}
		}()
	}

	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		size := q.Size()
		require.LessOrEqual(t, size, capacity)
		require.GreaterOrEqual(t, size, 0)
	}
	close(stop)
	wg.Wait()
}

func TestBoundedNoLostWakeup(t *testing.T) {
	const (
		producers   = 4
		consumers   = 4
		perProducer = 500
	)
	q, err := NewBounded[int](8) // capacity < producers*perProducer
	require.NoError(t, err)

	var wg sync.WaitGroup
	var consumed sync.Map
	var total int64
	var totalMu sync.Mutex

	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				require.NoError(t, q.PushBack(p*perProducer+i))
			}
		}(p)
	}

	var cg sync.WaitGroup
	for c := 0; c < consumers; c++ {
		cg.Add(1)
		go func() {
			defer cg.Done()
			for {
				v, err := q.PopFront()
				if err != nil {
					return // closed and drained
				}
				if _, dup := consumed.LoadOrStore(v, true); dup {
					t.Errorf("duplicate element %d", v)
				}
				totalMu.Lock()
				total++
				totalMu.Unlock()
			}
		}()
	}

	wg.Wait()
	require.NoError(t, q.Close())
	cg.Wait()

	assert.Equal(t, int64(producers*perProducer), total)
	assert.Equal(t, 0, q.Size())
}

func TestBoundedPopTimeoutAccuracy(t *testing.T) {
	q, err := NewBounded[int](1)
	require.NoError(t, err)
	defer q.Close()

	start := time.Now()
	_, ok := q.PopFrontTimeout(100 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, int64(1), q.Stats().Timeouts())
}

func TestBoundedPushTimeoutWhenFull(t *testing.T) {
	q, err := NewBounded[int](1)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))

	start := time.Now()
	ok := q.PushBackTimeout(2, 50*time.Millisecond)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// Space appears mid-wait: the push must complete.
	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = q.PopFront()
	}()
	assert.True(t, q.PushBackTimeout(2, time.Second))
}

func TestBoundedPushFrontPopBack(t *testing.T) {
	q, err := NewBounded[int](4)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushFront(2))
	require.NoError(t, q.PushFront(1))
	require.NoError(t, q.PushBack(3))

	v, err := q.PopBack()
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = q.PopFront()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBoundedPeek(t *testing.T) {
	q, err := NewBounded[string](4)
	require.NoError(t, err)
	defer q.Close()

	_, ok := q.TryPeekFront()
	assert.False(t, ok)

	require.NoError(t, q.PushBack("a"))
	require.NoError(t, q.PushBack("b"))

	front, err := q.PeekFront()
	require.NoError(t, err)
	assert.Equal(t, "a", front)

	back, err := q.PeekBack()
	require.NoError(t, err)
	assert.Equal(t, "b", back)

	// Peeks must not consume.
	assert.Equal(t, 2, q.Size())

	got, ok := q.PeekFrontTimeout(10 * time.Millisecond)
	require.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestBoundedPeekBlocksUntilElement(t *testing.T) {
	q, err := NewBounded[int](4)
	require.NoError(t, err)
	defer q.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = q.PushBack(7)
	}()

	v, err := q.PeekFront()
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, q.Size())
}

func TestBoundedAccess(t *testing.T) {
	q, err := NewBounded[int](8)
	require.NoError(t, err)
	defer q.Close()

	for i := 0; i < 8; i++ {
		require.NoError(t, q.PushBack(i))
	}
	require.True(t, q.IsFull())

	// Bulk erasure of odd elements under one lock.
	q.Access(func(d *Deque[int]) {
		kept := NewDeque[int]()
		for {
			v, ok := d.PopFront()
			if !ok {
				break
			}
			if v%2 == 0 {
				kept.PushBack(v)
			}
		}
		for {
			v, ok := kept.PopFront()
			if !ok {
				break
			}
			d.PushBack(v)
		}
	})

	assert.Equal(t, []int{0, 2, 4, 6}, q.Values())
	require.NoError(t, q.PushBack(100))
}

func TestBoundedAccessWakesProducers(t *testing.T) {
	q, err := NewBounded[int](2)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))

	pushed := make(chan error, 1)
	go func() {
		pushed <- q.PushBack(3)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Access(func(d *Deque[int]) {
		d.Clear()
	})

	select {
	case err := <-pushed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("blocked producer not woken by Access")
	}
}

func TestBoundedClear(t *testing.T) {
	q, err := NewBounded[int](2)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))

	blocked := make(chan error, 1)
	go func() {
		blocked <- q.PushBack(3)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Clear()

	select {
	case err := <-blocked:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Clear did not wake blocked producer")
	}
	assert.Equal(t, 1, q.Size())
}

func TestBoundedResize(t *testing.T) {
	q, err := NewBounded[int](4)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))
	require.NoError(t, q.PushBack(3))

	// Beyond capacity fails as invalid.
	err = q.Resize(5)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	// Shrink truncates.
	require.NoError(t, q.Resize(1))
	assert.Equal(t, []int{1}, q.Values())

	// Grow pads with zero values.
	require.NoError(t, q.Resize(3))
	assert.Equal(t, []int{1, 0, 0}, q.Values())

	err = q.Resize(-1)
	require.Error(t, err)
}

func TestBoundedSetCapacity(t *testing.T) {
	q, err := NewBounded[int](2)
	require.NoError(t, err)
	defer q.Close()

	err = q.SetCapacity(0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))

	blocked := make(chan error, 1)
	go func() {
		blocked <- q.PushBack(3)
	}()
	time.Sleep(20 * time.Millisecond)

	// Growing must wake the blocked producer.
	require.NoError(t, q.SetCapacity(4))
	select {
	case err := <-blocked:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("SetCapacity increase did not wake blocked producer")
	}

	// Shrinking below size truncates to the first n elements.
	require.NoError(t, q.SetCapacity(2))
	assert.Equal(t, 2, q.Size())
	assert.Equal(t, []int{1, 2}, q.Values())
}

func TestBoundedCloseSemantics(t *testing.T) {
	q, err := NewBounded[int](4)
	require.NoError(t, err)

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))

	popped := make(chan error, 1)
	go func() {
		// Block on an empty predicate only after drain.
		for {
			_, err := q.PopFront()
			if err != nil {
				popped <- err
				return
			}
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close()) // idempotent

	select {
	case err := <-popped:
		assert.ErrorIs(t, err, errors.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Close did not release blocked consumer")
	}

	// Pushes after close fail.
	err = q.PushBack(3)
	assert.ErrorIs(t, err, errors.ErrClosed)
	assert.False(t, q.TryPushBack(3))
	assert.True(t, q.IsClosed())
}

func TestBoundedDrainAfterClose(t *testing.T) {
	q, err := NewBounded[int](4)
	require.NoError(t, err)

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))
	require.NoError(t, q.Close())

	v, err := q.PopFront()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, ok := q.TryPopFront()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, err = q.PopFront()
	assert.ErrorIs(t, err, errors.ErrClosed)
}

func TestBoundedContextForms(t *testing.T) {
	q, err := NewBounded[int](1)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBackContext(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = q.PushBackContext(ctx, 2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := q.PopFrontContext(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel2()
	_, err = q.PopFrontContext(ctx2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBoundedStats(t *testing.T) {
	q, err := NewBounded[int](2)
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))
	require.NoError(t, q.PushBack(2))
	assert.False(t, q.TryPushBack(3))

	_, err = q.PopFront()
	require.NoError(t, err)

	stats := q.Stats()
	assert.Equal(t, int64(2), stats.Pushes())
	assert.Equal(t, int64(1), stats.Pops())
	assert.Equal(t, int64(1), stats.Rejected())
	assert.Equal(t, int64(1), stats.CurrentSize())
	assert.Equal(t, int64(2), stats.MaxSize())

	summary := stats.Summary()
	assert.Equal(t, int64(2), summary.Pushes)
}

func TestBoundedWithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	q, err := NewBounded[int](2, WithMetrics[int](registry, "work_queue"))
	require.NoError(t, err)
	defer q.Close()

	require.NoError(t, q.PushBack(1))
	_, err = q.PopFront()
	require.NoError(t, err)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["synckit_deque_pushes_total"])
	assert.True(t, names["synckit_deque_pops_total"])
	assert.True(t, names["synckit_deque_size"])

	// A second adapter with the same prefix must fail registration.
	_, err = NewBounded[int](2, WithMetrics[int](registry, "work_queue"))
	require.Error(t, err)
}
