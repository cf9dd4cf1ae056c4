package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/synckit/config"
	"github.com/c360/synckit/deque"
	"github.com/c360/synckit/kv"
	"github.com/c360/synckit/metric"
	"github.com/c360/synckit/ring"
	"github.com/c360/synckit/testutil"
)

// Result summarizes a completed workload run.
type Result struct {
	Produced int64
	Consumed int64
	Dropped  int64
	Duration time.Duration
}

func runWorkload(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) (*Result, error) {
	start := time.Now()

	var (
		result *Result
		err    error
	)
	switch cfg.Workload.Container {
	case config.ContainerBounded:
		result, err = runBounded(ctx, cfg, registry)
	case config.ContainerUnbounded:
		result, err = runUnbounded(ctx, cfg, registry)
	case config.ContainerRing:
		result, err = runRing(ctx, cfg, registry, logger)
	case config.ContainerMap:
		result, err = runMap(ctx, cfg, registry)
	default:
		return nil, fmt.Errorf("unknown container kind %q", cfg.Workload.Container)
	}
	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

func runBounded(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry) (*Result, error) {
	queue, err := deque.NewBounded[testutil.WorkItem](cfg.Workload.Capacity,
		deque.WithMetrics[testutil.WorkItem](registry, "bench"))
	if err != nil {
		return nil, err
	}

	var produced, consumed int64

	g, ctx := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Workload.Producers; p++ {
		base := p * cfg.Workload.Items
		g.Go(func() error {
			for i := 0; i < cfg.Workload.Items; i++ {
				if err := queue.PushBackContext(ctx, testutil.NewWorkItem(base+i)); err != nil {
					return err
				}
				atomic.AddInt64(&produced, 1)
			}
			return nil
		})
	}

	consumers, consumersCtx := errgroup.WithContext(ctx)
	for c := 0; c < cfg.Workload.Consumers; c++ {
		consumers.Go(func() error {
			for {
				if _, err := queue.PopFrontContext(consumersCtx); err != nil {
					if consumersCtx.Err() != nil {
						return consumersCtx.Err()
					}
					return nil // closed and drained
				}
				atomic.AddInt64(&consumed, 1)
			}
		})
	}

	if err := g.Wait(); err != nil {
		_ = queue.Close()
		return nil, err
	}
	if err := queue.Close(); err != nil {
		return nil, err
	}
	if err := consumers.Wait(); err != nil {
		return nil, err
	}

	return &Result{Produced: produced, Consumed: consumed}, nil
}

func runUnbounded(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry) (*Result, error) {
	queue, err := deque.NewUnbounded[testutil.WorkItem](
		deque.WithMetrics[testutil.WorkItem](registry, "bench"))
	if err != nil {
		return nil, err
	}

	var produced, consumed int64

	g, _ := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Workload.Producers; p++ {
		base := p * cfg.Workload.Items
		g.Go(func() error {
			for i := 0; i < cfg.Workload.Items; i++ {
				if err := queue.PushBack(testutil.NewWorkItem(base + i)); err != nil {
					return err
				}
				atomic.AddInt64(&produced, 1)
			}
			return nil
		})
	}

	consumers, consumersCtx := errgroup.WithContext(ctx)
	for c := 0; c < cfg.Workload.Consumers; c++ {
		consumers.Go(func() error {
			for {
				if _, err := queue.PopFrontContext(consumersCtx); err != nil {
					if consumersCtx.Err() != nil {
						return consumersCtx.Err()
					}
					return nil
				}
				atomic.AddInt64(&consumed, 1)
			}
		})
	}

	if err := g.Wait(); err != nil {
		_ = queue.Close()
		return nil, err
	}
	if err := queue.Close(); err != nil {
		return nil, err
	}
	if err := consumers.Wait(); err != nil {
		return nil, err
	}

	return &Result{Produced: produced, Consumed: consumed}, nil
}

func runRing(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry, logger *slog.Logger) (*Result, error) {
	policy, err := cfg.OverflowPolicy()
	if err != nil {
		return nil, err
	}

	var dropped int64
	buffer, err := ring.NewBuffer[testutil.WorkItem](cfg.Workload.Capacity,
		ring.WithOverflowPolicy[testutil.WorkItem](policy),
		ring.WithDropCallback[testutil.WorkItem](func(testutil.WorkItem) {
			atomic.AddInt64(&dropped, 1)
		}),
		ring.WithMetrics[testutil.WorkItem](registry, "bench"))
	if err != nil {
		return nil, err
	}

	logger.Debug("Ring buffer configured", "policy", policy.String())

	var produced, consumed int64

	g, _ := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Workload.Producers; p++ {
		base := p * cfg.Workload.Items
		g.Go(func() error {
			for i := 0; i < cfg.Workload.Items; i++ {
				if err := buffer.PushBack(testutil.NewWorkItem(base + i)); err != nil {
					return err
				}
				atomic.AddInt64(&produced, 1)
			}
			return nil
		})
	}

	consumers, consumersCtx := errgroup.WithContext(ctx)
	for c := 0; c < cfg.Workload.Consumers; c++ {
		consumers.Go(func() error {
			for {
				if consumersCtx.Err() != nil {
					return consumersCtx.Err()
				}
				if _, err := buffer.PopFront(); err != nil {
					return nil // closed and drained
				}
				atomic.AddInt64(&consumed, 1)
			}
		})
	}

	if err := g.Wait(); err != nil {
		_ = buffer.Close()
		return nil, err
	}
	if err := buffer.Close(); err != nil {
		return nil, err
	}
	if err := consumers.Wait(); err != nil {
		return nil, err
	}

	return &Result{Produced: produced, Consumed: consumed, Dropped: dropped}, nil
}

func runMap(ctx context.Context, cfg *config.Config, registry *metric.MetricsRegistry) (*Result, error) {
	table, err := kv.NewMap[string, testutil.WorkItem](
		kv.WithMetrics(registry, "bench"))
	if err != nil {
		return nil, err
	}

	items := cfg.Workload.Items
	var produced, consumed int64

	// Each producer publishes its keys; consumers wait on key presence
	// and claim entries by deleting them.
	g, _ := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Workload.Producers; p++ {
		producer := p
		g.Go(func() error {
			for i := 0; i < items; i++ {
				key := fmt.Sprintf("p%d-%d", producer, i)
				if err := table.Insert(key, testutil.NewWorkItem(i)); err != nil {
					return err
				}
				atomic.AddInt64(&produced, 1)
			}
			return nil
		})
	}

	// Consumers shard the producers between them.
	consumers, _ := errgroup.WithContext(ctx)
	for c := 0; c < cfg.Workload.Consumers; c++ {
		consumer := c
		consumers.Go(func() error {
			for p := consumer; p < cfg.Workload.Producers; p += cfg.Workload.Consumers {
				for i := 0; i < items; i++ {
					key := fmt.Sprintf("p%d-%d", p, i)
					if _, err := table.At(key); err != nil {
						return err
					}
					if table.Delete(key) {
						atomic.AddInt64(&consumed, 1)
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		_ = table.Close()
		return nil, err
	}
	if err := consumers.Wait(); err != nil {
		return nil, err
	}
	if err := table.Close(); err != nil {
		return nil, err
	}

	return &Result{Produced: produced, Consumed: consumed}, nil
}
