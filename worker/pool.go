// Package worker provides a generic worker pool backed by a bounded
// synchronized queue.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/synckit/deque"
	"github.com/c360/synckit/errors"
	"github.com/c360/synckit/metric"
	"github.com/c360/synckit/retry"
)

// Pool processes work items of type T on a fixed set of worker goroutines.
// Work is queued on a deque.Bounded, so Submit applies backpressure through
// its access disciplines: Submit never blocks, SubmitWait blocks for queue
// space, SubmitTimeout bounds the wait.
type Pool[T any] struct {
	workers   int
	processor func(context.Context, T) error
	retryCfg  *retry.Config
	logger    *slog.Logger

	queue *deque.Bounded[T]
	wg    *sync.WaitGroup

	lifecycleMu sync.Mutex
	started     bool
	stopped     bool

	// Statistics (atomic)
	submitted int64
	processed int64
	failed    int64
	dropped   int64

	metrics         *Metrics
	metricsRegistry *metric.MetricsRegistry
	metricsPrefix   string
}

// Metrics holds Prometheus metrics for worker pool monitoring
type Metrics struct {
	queueDepth     prometheus.Gauge
	submitted      prometheus.Counter
	processed      prometheus.Counter
	failed         prometheus.Counter
	dropped        prometheus.Counter
	processingTime *prometheus.HistogramVec
}

// Option represents a configuration option for the worker pool
type Option[T any] func(*Pool[T])

// WithMetricsRegistry configures the pool to register Prometheus metrics.
func WithMetricsRegistry[T any](registry *metric.MetricsRegistry, prefix string) Option[T] {
	return func(p *Pool[T]) {
		p.metricsRegistry = registry
		p.metricsPrefix = prefix
	}
}

// WithRetry retries transient processor failures with the given backoff
// configuration. Invalid and fatal errors are never retried.
func WithRetry[T any](cfg retry.Config) Option[T] {
	return func(p *Pool[T]) {
		p.retryCfg = &cfg
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(p *Pool[T]) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPool creates a worker pool with the given concurrency and queue
// capacity. Returns a classified invalid error when processor is nil, and
// propagates queue or metrics construction failures.
func NewPool[T any](workers, queueSize int, processor func(context.Context, T) error, opts ...Option[T]) (*Pool[T], error) {
	if workers <= 0 {
		workers = 10 // Default worker count
	}
	if queueSize <= 0 {
		queueSize = 1000 // Default queue size
	}
	if processor == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Pool", "NewPool", "nil processor")
	}

	queue, err := deque.NewBounded[T](queueSize)
	if err != nil {
		return nil, errors.Wrap(err, "Pool", "NewPool", "create work queue")
	}

	pool := &Pool[T]{
		workers:   workers,
		processor: processor,
		logger:    slog.Default(),
		queue:     queue,
	}
	for _, opt := range opts {
		opt(pool)
	}

	if pool.metricsRegistry != nil && pool.metricsPrefix != "" {
		if err := pool.initializeMetrics(); err != nil {
			return nil, errors.WrapTransient(err, "Pool", "NewPool", "metrics registration")
		}
	}

	return pool, nil
}

// initializeMetrics creates and registers pool metrics.
func (p *Pool[T]) initializeMetrics() error {
	prefix := p.metricsPrefix

	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: prefix + "_queue_depth",
		Help: "Current worker pool queue depth",
	})
	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_submitted_total",
		Help: "Total work items submitted",
	})
	processed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_processed_total",
		Help: "Total work items processed",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_failed_total",
		Help: "Total work items that failed processing",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: prefix + "_dropped_total",
		Help: "Total work items refused due to a full queue",
	})
	processingTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prefix + "_processing_duration_seconds",
		Help:    "Time spent processing work items",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"status"})

	const component = "worker_pool"
	if err := p.metricsRegistry.RegisterGauge(component, prefix+"_queue_depth", queueDepth); err != nil {
		return err
	}
	if err := p.metricsRegistry.RegisterCounter(component, prefix+"_submitted_total", submitted); err != nil {
		return err
	}
	if err := p.metricsRegistry.RegisterCounter(component, prefix+"_processed_total", processed); err != nil {
		return err
	}
	if err := p.metricsRegistry.RegisterCounter(component, prefix+"_failed_total", failed); err != nil {
		return err
	}
	if err := p.metricsRegistry.RegisterCounter(component, prefix+"_dropped_total", dropped); err != nil {
		return err
	}
	if err := p.metricsRegistry.RegisterHistogramVec(component, prefix+"_processing_duration_seconds", processingTime); err != nil {
		return err
	}

	p.metrics = &Metrics{
		queueDepth:     queueDepth,
		submitted:      submitted,
		processed:      processed,
		failed:         failed,
		dropped:        dropped,
		processingTime: processingTime,
	}
	return nil
}

// Start launches the worker goroutines.
func (p *Pool[T]) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.started {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Pool", "Start", "pool already started")
	}

	p.wg = &sync.WaitGroup{}
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	p.started = true

	p.logger.Debug("worker pool started",
		"workers", p.workers,
		"queue_capacity", p.queue.Capacity())
	return nil
}

func (p *Pool[T]) checkSubmittable() error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started {
		return errors.WrapInvalid(errors.ErrNotStarted, "Pool", "Submit", "pool not started")
	}
	if p.stopped {
		return errors.WrapInvalid(errors.ErrClosed, "Pool", "Submit", "pool stopped")
	}
	return nil
}

func (p *Pool[T]) recordSubmit() {
	atomic.AddInt64(&p.submitted, 1)
	if p.metrics != nil {
		p.metrics.submitted.Inc()
		p.metrics.queueDepth.Set(float64(p.queue.Size()))
	}
}

// Submit queues work without blocking. Returns a transient resource
// exhaustion error when the queue is full.
func (p *Pool[T]) Submit(work T) error {
	if err := p.checkSubmittable(); err != nil {
		return err
	}

	if !p.queue.TryPushBack(work) {
		atomic.AddInt64(&p.dropped, 1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return errors.WrapTransient(errors.ErrResourceExhausted, "Pool", "Submit", "work queue full")
	}
	p.recordSubmit()
	return nil
}

// SubmitWait queues work, blocking until queue space is available.
func (p *Pool[T]) SubmitWait(work T) error {
	if err := p.checkSubmittable(); err != nil {
		return err
	}

	if err := p.queue.PushBack(work); err != nil {
		return errors.Wrap(err, "Pool", "SubmitWait", "push work item")
	}
	p.recordSubmit()
	return nil
}

// SubmitTimeout queues work, waiting up to timeout for queue space.
func (p *Pool[T]) SubmitTimeout(work T, timeout time.Duration) error {
	if err := p.checkSubmittable(); err != nil {
		return err
	}

	if !p.queue.PushBackTimeout(work, timeout) {
		atomic.AddInt64(&p.dropped, 1)
		if p.metrics != nil {
			p.metrics.dropped.Inc()
		}
		return errors.WrapTransient(errors.ErrTimeout, "Pool", "SubmitTimeout", "wait for queue space")
	}
	p.recordSubmit()
	return nil
}

// Stop closes the queue, lets the workers drain it, and waits up to
// timeout for them to finish.
func (p *Pool[T]) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.started || p.stopped {
		return nil
	}

	if err := p.queue.Close(); err != nil {
		return errors.Wrap(err, "Pool", "Stop", "close work queue")
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		p.stopped = true
		p.logger.Debug("worker pool stopped",
			"processed", atomic.LoadInt64(&p.processed),
			"failed", atomic.LoadInt64(&p.failed))
		return nil
	case <-timer.C:
		return errors.WrapTransient(errors.ErrTimeout, "Pool", "Stop", "wait for workers to drain")
	}
}

// QueueDepth returns the number of queued work items.
func (p *Pool[T]) QueueDepth() int {
	return p.queue.Size()
}

// Stats returns current pool statistics
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Workers:    p.workers,
		QueueSize:  p.queue.Capacity(),
		QueueDepth: p.queue.Size(),
		Submitted:  atomic.LoadInt64(&p.submitted),
		Processed:  atomic.LoadInt64(&p.processed),
		Failed:     atomic.LoadInt64(&p.failed),
		Dropped:    atomic.LoadInt64(&p.dropped),
	}
}

// PoolStats represents worker pool statistics
type PoolStats struct {
	Workers    int   `json:"workers"`
	QueueSize  int   `json:"queue_size"`
	QueueDepth int   `json:"queue_depth"`
	Submitted  int64 `json:"submitted"`
	Processed  int64 `json:"processed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
}

// worker drains the queue until it is closed and empty or ctx is
// cancelled.
func (p *Pool[T]) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		work, err := p.queue.PopFrontContext(ctx)
		if err != nil {
			// Closed and drained, or ctx cancelled.
			return
		}

		start := time.Now()
		procErr := p.process(ctx, work)
		duration := time.Since(start)

		atomic.AddInt64(&p.processed, 1)
		if procErr != nil {
			atomic.AddInt64(&p.failed, 1)
			p.logger.Warn("work item failed", "error", procErr)
		}

		if p.metrics != nil {
			p.metrics.processed.Inc()
			p.metrics.queueDepth.Set(float64(p.queue.Size()))
			status := "success"
			if procErr != nil {
				p.metrics.failed.Inc()
				status = "error"
			}
			p.metrics.processingTime.WithLabelValues(status).Observe(duration.Seconds())
		}
	}
}

func (p *Pool[T]) process(ctx context.Context, work T) error {
	if p.retryCfg == nil {
		return p.processor(ctx, work)
	}
	return retry.Do(ctx, *p.retryCfg, func() error {
		return p.processor(ctx, work)
	})
}
