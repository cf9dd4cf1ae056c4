package deque

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks adapter performance counters.
type Statistics struct {
	// Atomic counters for thread-safe updates
	pushes   int64
	pops     int64
	peeks    int64
	rejected int64
	timeouts int64
	accesses int64

	// Protected by mutex
	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	maxSize     int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{
		startTime: time.Now(),
	}
}

// Push records a successful push operation.
func (s *Statistics) Push() {
	atomic.AddInt64(&s.pushes, 1)
}

// Pop records a successful pop operation.
func (s *Statistics) Pop() {
	atomic.AddInt64(&s.pops, 1)
}

// Peek records a peek operation.
func (s *Statistics) Peek() {
	atomic.AddInt64(&s.peeks, 1)
}

// Reject records a try-form operation that failed immediately.
func (s *Statistics) Reject() {
	atomic.AddInt64(&s.rejected, 1)
}

// Timeout records a timed operation that expired before completing.
func (s *Statistics) Timeout() {
	atomic.AddInt64(&s.timeouts, 1)
}

// Access records an Access escape-hatch invocation.
func (s *Statistics) Access() {
	atomic.AddInt64(&s.accesses, 1)
}

// UpdateSize updates the current size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Pushes returns the total number of successful pushes.
func (s *Statistics) Pushes() int64 {
	return atomic.LoadInt64(&s.pushes)
}

// Pops returns the total number of successful pops.
func (s *Statistics) Pops() int64 {
	return atomic.LoadInt64(&s.pops)
}

// Peeks returns the total number of peeks.
func (s *Statistics) Peeks() int64 {
	return atomic.LoadInt64(&s.peeks)
}

// Rejected returns the total number of immediately-failed try operations.
func (s *Statistics) Rejected() int64 {
	return atomic.LoadInt64(&s.rejected)
}

// Timeouts returns the total number of expired timed operations.
func (s *Statistics) Timeouts() int64 {
	return atomic.LoadInt64(&s.timeouts)
}

// Accesses returns the total number of Access invocations.
func (s *Statistics) Accesses() int64 {
	return atomic.LoadInt64(&s.accesses)
}

// CurrentSize returns the current number of elements.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the maximum number of elements held so far.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// Throughput returns the average number of pushes per second.
func (s *Statistics) Throughput() float64 {
	s.mu.RLock()
	elapsed := time.Since(s.startTime)
	s.mu.RUnlock()

	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Pushes()) / elapsed.Seconds()
}

// Uptime returns how long the adapter has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset resets all statistics to zero.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.pushes, 0)
	atomic.StoreInt64(&s.pops, 0)
	atomic.StoreInt64(&s.peeks, 0)
	atomic.StoreInt64(&s.rejected, 0)
	atomic.StoreInt64(&s.timeouts, 0)
	atomic.StoreInt64(&s.accesses, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.maxSize = 0
	s.mu.Unlock()
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Pushes      int64         `json:"pushes"`
	Pops        int64         `json:"pops"`
	Peeks       int64         `json:"peeks"`
	Rejected    int64         `json:"rejected"`
	Timeouts    int64         `json:"timeouts"`
	Accesses    int64         `json:"accesses"`
	CurrentSize int64         `json:"current_size"`
	MaxSize     int64         `json:"max_size"`
	Throughput  float64       `json:"throughput"`
	Uptime      time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Pushes:      s.Pushes(),
		Pops:        s.Pops(),
		Peeks:       s.Peeks(),
		Rejected:    s.Rejected(),
		Timeouts:    s.Timeouts(),
		Accesses:    s.Accesses(),
		CurrentSize: s.CurrentSize(),
		MaxSize:     s.MaxSize(),
		Throughput:  s.Throughput(),
		Uptime:      s.Uptime(),
	}
}
