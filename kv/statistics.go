package kv

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks associative container metrics using atomic operations
// for minimal overhead. Always collected, never optional.
type Statistics struct {
	inserts  int64
	deletes  int64
	lookups  int64
	hits     int64
	misses   int64
	rejected int64
	timeouts int64
	accesses int64

	mu          sync.Mutex
	currentSize int64
	maxSize     int64
	startTime   time.Time
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Insert records a successful insert.
func (s *Statistics) Insert() {
	atomic.AddInt64(&s.inserts, 1)
}

// Delete records removed entries.
func (s *Statistics) Delete(n int64) {
	atomic.AddInt64(&s.deletes, n)
}

// Hit records a lookup that found its key.
func (s *Statistics) Hit() {
	atomic.AddInt64(&s.lookups, 1)
	atomic.AddInt64(&s.hits, 1)
}

// Miss records a lookup that did not find its key.
func (s *Statistics) Miss() {
	atomic.AddInt64(&s.lookups, 1)
	atomic.AddInt64(&s.misses, 1)
}

// Reject records an operation refused due to lock contention or a
// duplicate key.
func (s *Statistics) Reject() {
	atomic.AddInt64(&s.rejected, 1)
}

// Timeout records a timed operation that expired.
func (s *Statistics) Timeout() {
	atomic.AddInt64(&s.timeouts, 1)
}

// Access records a raw access through the escape hatch.
func (s *Statistics) Access() {
	atomic.AddInt64(&s.accesses, 1)
}

// UpdateSize records the current size and tracks the high-water mark.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
}

// Inserts returns the total successful inserts.
func (s *Statistics) Inserts() int64 { return atomic.LoadInt64(&s.inserts) }

// Deletes returns the total removed entries.
func (s *Statistics) Deletes() int64 { return atomic.LoadInt64(&s.deletes) }

// Lookups returns the total lookups.
func (s *Statistics) Lookups() int64 { return atomic.LoadInt64(&s.lookups) }

// Hits returns the lookups that found their key.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the lookups that did not find their key.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Rejected returns the operations refused without suspending.
func (s *Statistics) Rejected() int64 { return atomic.LoadInt64(&s.rejected) }

// Timeouts returns the timed operations that expired.
func (s *Statistics) Timeouts() int64 { return atomic.LoadInt64(&s.timeouts) }

// Accesses returns the raw accesses through the escape hatch.
func (s *Statistics) Accesses() int64 { return atomic.LoadInt64(&s.accesses) }

// CurrentSize returns the size recorded by the last update.
func (s *Statistics) CurrentSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSize
}

// MaxSize returns the high-water mark.
func (s *Statistics) MaxSize() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxSize
}

// HitRate returns hits / lookups, or 0 when no lookups occurred.
func (s *Statistics) HitRate() float64 {
	lookups := s.Lookups()
	if lookups == 0 {
		return 0
	}
	return float64(s.Hits()) / float64(lookups)
}

// Uptime returns the duration since creation or the last reset.
func (s *Statistics) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startTime)
}

// Reset zeroes all counters and restarts the uptime clock.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.inserts, 0)
	atomic.StoreInt64(&s.deletes, 0)
	atomic.StoreInt64(&s.lookups, 0)
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.rejected, 0)
	atomic.StoreInt64(&s.timeouts, 0)
	atomic.StoreInt64(&s.accesses, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSize = 0
	s.maxSize = 0
	s.startTime = time.Now()
}

// StatsSummary is a point-in-time snapshot of container statistics.
type StatsSummary struct {
	Inserts     int64         `json:"inserts"`
	Deletes     int64         `json:"deletes"`
	Lookups     int64         `json:"lookups"`
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	Rejected    int64         `json:"rejected"`
	Timeouts    int64         `json:"timeouts"`
	Accesses    int64         `json:"accesses"`
	CurrentSize int64         `json:"current_size"`
	MaxSize     int64         `json:"max_size"`
	HitRate     float64       `json:"hit_rate"`
	Uptime      time.Duration `json:"uptime"`
}

// Summary returns a consistent snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	s.mu.Lock()
	currentSize := s.currentSize
	maxSize := s.maxSize
	uptime := time.Since(s.startTime)
	s.mu.Unlock()

	return StatsSummary{
		Inserts:     s.Inserts(),
		Deletes:     s.Deletes(),
		Lookups:     s.Lookups(),
		Hits:        s.Hits(),
		Misses:      s.Misses(),
		Rejected:    s.Rejected(),
		Timeouts:    s.Timeouts(),
		Accesses:    s.Accesses(),
		CurrentSize: currentSize,
		MaxSize:     maxSize,
		HitRate:     s.HitRate(),
		Uptime:      uptime,
	}
}
