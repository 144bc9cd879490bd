// Package exec provides execution strategies for submitting concurrent work
// and obtaining cancellable, awaitable handles.
package exec

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// TaskFunc is a unit of concurrent work. It must honour ctx cancellation to
// be interruptible; the engine never forcibly stops a running task.
type TaskFunc func(ctx context.Context) error

// ExecutionStrategy submits work for concurrent execution.
type ExecutionStrategy interface {
	// Submit schedules fn and returns an awaitable handle. An error from
	// Submit itself (as opposed to an error from fn) means the work was
	// never started.
	Submit(ctx context.Context, name string, fn TaskFunc) (*Future, error)
}

// Future is a cancellable handle on submitted work.
type Future struct {
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

func newFuture(cancel context.CancelFunc) *Future {
	return &Future{
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// complete records the outcome and releases waiters. Called exactly once.
func (f *Future) complete(err error) {
	f.err = err
	close(f.done)
}

// Wait blocks until the work finishes or ctx is cancelled, returning the
// work's error.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the work finishes.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the outcome after Done is closed. Before that it returns nil.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Cancel cancels the context the work was started with. Work already running
// keeps running unless it observes the cancellation.
func (f *Future) Cancel() {
	f.cancel()
}

// GoroutineStrategy runs every submission on its own goroutine.
type GoroutineStrategy struct {
	logger *zap.Logger
}

// NewGoroutineStrategy creates a strategy that spawns one goroutine per
// submission.
func NewGoroutineStrategy(logger *zap.Logger) *GoroutineStrategy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoroutineStrategy{logger: logger}
}

// Submit schedules fn on a new goroutine.
func (s *GoroutineStrategy) Submit(ctx context.Context, name string, fn TaskFunc) (*Future, error) {
	runCtx, cancel := context.WithCancel(ctx)
	f := newFuture(cancel)

	go func() {
		defer cancel()
		f.complete(runGuarded(runCtx, name, fn, s.logger))
	}()

	return f, nil
}

// runGuarded executes fn, translating panics into errors.
func runGuarded(ctx context.Context, name string, fn TaskFunc, logger *zap.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("submitted work panicked",
				zap.String("name", name),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("task %s panicked: %v", name, r)
		}
	}()

	return fn(ctx)
}
