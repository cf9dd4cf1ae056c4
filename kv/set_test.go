package kv

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/synckit/errors"
)

func TestSetInsertContains(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)

	require.NoError(t, s.Insert("a"))
	require.NoError(t, s.Insert("b"))

	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, 2, s.Size())
	assert.ElementsMatch(t, []string{"a", "b"}, s.Elements())
}

func TestSetDuplicateElementFails(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)

	require.NoError(t, s.Insert("e"))

	err = s.Insert("e")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrKeyExists)
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, 1, s.Size())
}

func TestSetUniquenessUnderConcurrency(t *testing.T) {
	s, err := NewSet[int]()
	require.NoError(t, err)

	const goroutines = 16
	var succeeded int64

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Insert(7); err == nil {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), succeeded)
	assert.Equal(t, 1, s.Size())
}

func TestSetWait(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		done <- s.Wait("ready")
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before the element was inserted")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.Insert("ready"))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe the insert")
	}
}

func TestSetWaitTimeout(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)

	start := time.Now()
	assert.False(t, s.WaitTimeout("absent", 100*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, int64(1), s.Stats().Timeouts())

	go func() {
		time.Sleep(30 * time.Millisecond)
		assert.NoError(t, s.Insert("late"))
	}()
	assert.True(t, s.WaitTimeout("late", time.Second))
}

func TestSetTryAndTimedInsert(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)

	ok, err := s.TryInsert("a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.TryInsert("a")
	assert.False(t, ok)
	assert.ErrorIs(t, err, errors.ErrKeyExists)

	ok, err = s.InsertTimeout("b", 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, s.Size())
}

func TestSetDelete(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)
	require.NoError(t, s.Insert("e"))

	assert.True(t, s.Delete("e"))
	assert.False(t, s.Delete("e"))
	assert.False(t, s.Contains("e"))

	// A deleted element can be inserted again.
	require.NoError(t, s.Insert("e"))
	assert.True(t, s.Contains("e"))
}

func TestSetAccessAndClear(t *testing.T) {
	s, err := NewSet[int]()
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Insert(i))
	}

	waiting := make(chan error, 1)
	go func() {
		waiting <- s.Wait(99)
	}()
	time.Sleep(30 * time.Millisecond)

	s.Access(func(items map[int]struct{}) {
		delete(items, 1)
		items[99] = struct{}{}
	})

	select {
	case err := <-waiting:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Access insert")
	}
	assert.Equal(t, 3, s.Size())

	s.Clear()
	assert.True(t, s.IsEmpty())
}

func TestSetClose(t *testing.T) {
	s, err := NewSet[string]()
	require.NoError(t, err)
	require.NoError(t, s.Insert("kept"))

	released := make(chan error, 1)
	go func() {
		released <- s.Wait("never")
	}()
	time.Sleep(30 * time.Millisecond)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close()) // idempotent
	assert.True(t, s.IsClosed())

	select {
	case err := <-released:
		assert.ErrorIs(t, err, errors.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter not released by Close")
	}

	assert.ErrorIs(t, s.Insert("new"), errors.ErrClosed)
	assert.True(t, s.Contains("kept"))
}
