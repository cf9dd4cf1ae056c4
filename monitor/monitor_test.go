package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockExclusive(t *testing.T) {
	m := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.WithLock(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5000, counter)
}

func TestTryLock(t *testing.T) {
	m := New()

	require.True(t, m.TryLock())
	assert.False(t, m.TryLock())
	assert.False(t, m.TryRLock())
	m.Unlock()

	require.True(t, m.TryRLock())
	// Shared lock permits more readers but no writer.
	assert.True(t, m.TryRLock())
	assert.False(t, m.TryLock())
	m.RUnlock()
	m.RUnlock()
}

func TestLockTimeoutAcquiresFreeLock(t *testing.T) {
	m := New()
	require.True(t, m.LockTimeout(10*time.Millisecond))
	m.Unlock()
}

func TestLockTimeoutExpires(t *testing.T) {
	m := New()
	m.Lock()

	start := time.Now()
	ok := m.LockTimeout(50 * time.Millisecond)
	elapsed := time.Since(start)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	m.Unlock()

	// A later acquisition must still succeed: the abandoned helper
	// goroutine releases the lock once granted.
	require.True(t, m.LockTimeout(time.Second))
	m.Unlock()
}

func TestLockTimeoutEventuallyAcquires(t *testing.T) {
	m := New()
	m.Lock()

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Unlock()
	}()

	require.True(t, m.LockTimeout(time.Second))
	m.Unlock()
}

func TestCondWait(t *testing.T) {
	m := New()
	cond := m.NewCond()
	ready := false

	got := make(chan struct{})
	go func() {
		m.Lock()
		cond.Wait(func() bool { return ready })
		m.Unlock()
		close(got)
	}()

	time.Sleep(10 * time.Millisecond)
	m.Lock()
	ready = true
	cond.Signal()
	m.Unlock()

	select {
	case <-got:
	case <-time.After(time.Second):
		t.Fatal("waiter never woke after signal")
	}
}

func TestCondWaitTimeoutExpires(t *testing.T) {
	m := New()
	cond := m.NewCond()

	m.Lock()
	start := time.Now()
	ok := cond.WaitTimeout(func() bool { return false }, 100*time.Millisecond)
	elapsed := time.Since(start)
	m.Unlock()

	assert.False(t, ok)
	// Not "immediately": the full timeout must elapse before giving up.
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
}

func TestCondWaitTimeoutAbsoluteDeadline(t *testing.T) {
	m := New()
	cond := m.NewCond()

	// A stream of unrelated broadcasts must not extend the wait.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Lock()
				cond.Broadcast()
				m.Unlock()
			case <-stop:
				return
			}
		}
	}()

	m.Lock()
	start := time.Now()
	ok := cond.WaitTimeout(func() bool { return false }, 100*time.Millisecond)
	elapsed := time.Since(start)
	m.Unlock()
	close(stop)

	assert.False(t, ok)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestCondWaitTimeoutSatisfied(t *testing.T) {
	m := New()
	cond := m.NewCond()
	ready := false

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Lock()
		ready = true
		cond.Signal()
		m.Unlock()
	}()

	m.Lock()
	ok := cond.WaitTimeout(func() bool { return ready }, time.Second)
	m.Unlock()

	assert.True(t, ok)
}

func TestCondWaitContextCancel(t *testing.T) {
	m := New()
	cond := m.NewCond()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	m.Lock()
	err := cond.WaitContext(ctx, func() bool { return false })
	m.Unlock()

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCondWaitContextAlreadyDone(t *testing.T) {
	m := New()
	cond := m.NewCond()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.Lock()
	err := cond.WaitContext(ctx, func() bool { return false })
	m.Unlock()

	assert.ErrorIs(t, err, context.Canceled)
}

func TestCondNoLostWakeup(t *testing.T) {
	m := New()
	cond := m.NewCond()

	const waiters = 8
	pending := waiters
	var wg sync.WaitGroup

	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			cond.Wait(func() bool { return pending <= 0 })
			m.Unlock()
		}()
	}

	time.Sleep(20 * time.Millisecond)
	m.Lock()
	pending = 0
	cond.Broadcast()
	m.Unlock()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast failed to wake all waiters")
	}
}
