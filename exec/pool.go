package exec

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrPoolSaturated is returned by PoolStrategy.Submit when all workers are
// busy and the submission cannot be scheduled.
var ErrPoolSaturated = errors.New("execution pool is saturated")

// PoolStrategy bounds concurrent submissions with a weighted semaphore.
// Saturation rejects the submission instead of queueing, so callers see
// back-pressure immediately.
type PoolStrategy struct {
	sem        *semaphore.Weighted
	maxWorkers int64
	logger     *zap.Logger

	// Metrics
	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	rejected  atomic.Int64
	active    atomic.Int32
}

// NewPoolStrategy creates a strategy running at most maxWorkers submissions
// concurrently.
func NewPoolStrategy(maxWorkers int, logger *zap.Logger) *PoolStrategy {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PoolStrategy{
		sem:        semaphore.NewWeighted(int64(maxWorkers)),
		maxWorkers: int64(maxWorkers),
		logger:     logger.With(zap.String("component", "pool_strategy")),
	}
}

// Submit schedules fn on a pooled worker slot, or returns ErrPoolSaturated
// when no slot is free.
func (s *PoolStrategy) Submit(ctx context.Context, name string, fn TaskFunc) (*Future, error) {
	if !s.sem.TryAcquire(1) {
		s.rejected.Add(1)
		s.logger.Warn("submission rejected", zap.String("name", name))
		return nil, ErrPoolSaturated
	}

	s.submitted.Add(1)
	runCtx, cancel := context.WithCancel(ctx)
	f := newFuture(cancel)

	go func() {
		defer s.sem.Release(1)
		defer cancel()

		s.active.Add(1)
		err := runGuarded(runCtx, name, fn, s.logger)
		s.active.Add(-1)

		if err != nil {
			s.failed.Add(1)
		} else {
			s.completed.Add(1)
		}
		f.complete(err)
	}()

	return f, nil
}

// Stats returns a snapshot of pool counters.
func (s *PoolStrategy) Stats() PoolStats {
	return PoolStats{
		MaxWorkers: int(s.maxWorkers),
		Active:     int(s.active.Load()),
		Submitted:  s.submitted.Load(),
		Completed:  s.completed.Load(),
		Failed:     s.failed.Load(),
		Rejected:   s.rejected.Load(),
	}
}

// PoolStats contains pool counters.
type PoolStats struct {
	MaxWorkers int   `json:"max_workers"`
	Active     int   `json:"active"`
	Submitted  int64 `json:"submitted"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Rejected   int64 `json:"rejected"`
}
