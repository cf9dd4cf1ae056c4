package worker

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/metric"
	"github.com/c360/synckit/retry"
)

func TestNewPoolValidation(t *testing.T) {
	_, err := NewPool[int](2, 10, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	p, err := NewPool(0, 0, func(context.Context, int) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stats().Workers)
	assert.Equal(t, 1000, p.Stats().QueueSize)
}

func TestPoolLifecycle(t *testing.T) {
	p, err := NewPool(2, 10, func(context.Context, int) error { return nil })
	require.NoError(t, err)

	// Submit before Start fails.
	err = p.Submit(1)
	assert.ErrorIs(t, err, errors.ErrNotStarted)

	ctx := context.Background()
	require.NoError(t, p.Start(ctx))

	// Double Start fails.
	err = p.Start(ctx)
	assert.ErrorIs(t, err, errors.ErrAlreadyStarted)

	require.NoError(t, p.Submit(1))
	require.NoError(t, p.Stop(time.Second))
	require.NoError(t, p.Stop(time.Second)) // idempotent

	// Submit after Stop fails.
	err = p.Submit(2)
	assert.ErrorIs(t, err, errors.ErrClosed)
}

func TestPoolProcessesEveryItemExactlyOnce(t *testing.T) {
	const total = 1000

	var seen sync.Map
	var processed int64
	p, err := NewPool(4, 16, func(_ context.Context, v int) error {
		if _, loaded := seen.LoadOrStore(v, true); loaded {
			t.Errorf("item %d processed twice", v)
		}
		atomic.AddInt64(&processed, 1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	for i := 0; i < total; i++ {
		require.NoError(t, p.SubmitWait(i))
	}
	require.NoError(t, p.Stop(5*time.Second))

	assert.Equal(t, int64(total), atomic.LoadInt64(&processed))
	stats := p.Stats()
	assert.Equal(t, int64(total), stats.Submitted)
	assert.Equal(t, int64(total), stats.Processed)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, 0, p.QueueDepth())
}

func TestPoolSubmitFullQueue(t *testing.T) {
	block := make(chan struct{})
	p, err := NewPool(1, 1, func(_ context.Context, v int) error {
		<-block
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	// One item in flight, one queued; the next non-blocking submit drops.
	require.NoError(t, p.Submit(1))
	time.Sleep(30 * time.Millisecond) // let the worker take item 1
	require.NoError(t, p.Submit(2))

	err = p.Submit(3)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrResourceExhausted)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, int64(1), p.Stats().Dropped)

	err = p.SubmitTimeout(3, 30*time.Millisecond)
	assert.ErrorIs(t, err, errors.ErrTimeout)

	close(block)
	require.NoError(t, p.Stop(time.Second))
}

func TestPoolSubmitWaitAppliesBackpressure(t *testing.T) {
	release := make(chan struct{})
	p, err := NewPool(1, 1, func(_ context.Context, v int) error {
		<-release
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	require.NoError(t, p.Submit(1))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, p.Submit(2))

	submitted := make(chan struct{})
	go func() {
		assert.NoError(t, p.SubmitWait(3))
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Fatal("SubmitWait should block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	release <- struct{}{} // finish item 1, worker takes item 2

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("SubmitWait did not complete after space was freed")
	}

	release <- struct{}{}
	release <- struct{}{}
	require.NoError(t, p.Stop(time.Second))
}

func TestPoolRetriesTransientFailures(t *testing.T) {
	var attempts int64
	p, err := NewPool(1, 4, func(_ context.Context, v int) error {
		if atomic.AddInt64(&attempts, 1) < 3 {
			return stderrors.New("flaky downstream")
		}
		return nil
	}, WithRetry[int](retry.Config{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	require.NoError(t, p.Submit(1))
	require.NoError(t, p.Stop(time.Second))

	assert.Equal(t, int64(3), atomic.LoadInt64(&attempts))
	assert.Equal(t, int64(0), p.Stats().Failed)
}

func TestPoolCountsFailures(t *testing.T) {
	p, err := NewPool(2, 8, func(_ context.Context, v int) error {
		if v%2 == 0 {
			return stderrors.New("even items fail")
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	for i := 0; i < 10; i++ {
		require.NoError(t, p.SubmitWait(i))
	}
	require.NoError(t, p.Stop(time.Second))

	stats := p.Stats()
	assert.Equal(t, int64(10), stats.Processed)
	assert.Equal(t, int64(5), stats.Failed)
}

func TestPoolStopDrainsQueue(t *testing.T) {
	var processed int64
	p, err := NewPool(1, 100, func(_ context.Context, v int) error {
		time.Sleep(time.Millisecond)
		atomic.AddInt64(&processed, 1)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	for i := 0; i < 50; i++ {
		require.NoError(t, p.Submit(i))
	}
	require.NoError(t, p.Stop(5*time.Second))

	assert.Equal(t, int64(50), atomic.LoadInt64(&processed))
}

func TestPoolStopTimeout(t *testing.T) {
	started := make(chan struct{})
	block := make(chan struct{})
	p, err := NewPool(1, 4, func(_ context.Context, v int) error {
		close(started)
		<-block
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	require.NoError(t, p.Submit(1))
	<-started

	err = p.Stop(50 * time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrTimeout)

	close(block)
}

func TestPoolWithMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	p, err := NewPool(2, 8, func(context.Context, int) error { return nil },
		WithMetricsRegistry[int](registry, "ingest"))
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	for i := 0; i < 5; i++ {
		require.NoError(t, p.SubmitWait(i))
	}
	require.NoError(t, p.Stop(time.Second))

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	found := make(map[string]bool)
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	assert.True(t, found["ingest_submitted_total"])
	assert.True(t, found["ingest_processed_total"])
}
