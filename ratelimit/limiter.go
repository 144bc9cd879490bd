// Package ratelimit provides in-process admission control for workflow
// execution.
//
// Four independent algorithms are implemented: fixed window, sliding window,
// token bucket, and leaky bucket. Each limiter guards its mutable state with a
// single mutex and never holds the lock while sleeping. Blocking Acquire
// computes the minimum wait until the next unit could become available and
// sleeps in bounded increments, re-checking after every wakeup so that
// scheduling jitter never causes a missed grant.
package ratelimit

import (
	"context"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// Limiter is the common contract shared by all rate limiting algorithms.
type Limiter interface {
	// Acquire blocks until a permit is granted or ctx is cancelled.
	// Cancellation is reported as a RATE_LIMIT_INTERRUPTED error.
	Acquire(ctx context.Context) error

	// TryAcquire attempts to take a permit without blocking.
	TryAcquire() bool

	// TryAcquireWithin blocks up to timeout for a permit.
	TryAcquireWithin(timeout time.Duration) bool

	// Reset restores the limiter to a fresh, fully-available state and
	// wakes any goroutine blocked in Acquire.
	Reset()

	// Available returns a best-effort snapshot of the permits currently
	// available.
	Available() int
}

// admitter is the internal surface each algorithm exposes to the shared
// blocking-acquire loop. tryAdmit performs one admission attempt under the
// algorithm's lock and, on refusal, reports how long until the next unit
// could become available together with the reset signal valid at that moment.
type admitter interface {
	tryAdmit() (ok bool, wait time.Duration, reset <-chan struct{})
}

// maxSleepSlice bounds a single sleep inside the acquire loop. Waits longer
// than this are split into slices so a Reset or cancellation is observed
// promptly even when the computed wait is stale.
const maxSleepSlice = 50 * time.Millisecond

// minSleepSlice guards against busy-spinning when the computed wait rounds
// down to zero.
const minSleepSlice = time.Millisecond

// acquire drives the blocking admission loop shared by all algorithms.
func acquire(ctx context.Context, a admitter) error {
	for {
		ok, wait, reset := a.tryAdmit()
		if ok {
			return nil
		}

		if wait < minSleepSlice {
			wait = minSleepSlice
		}
		if wait > maxSleepSlice {
			wait = maxSleepSlice
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return types.NewError(types.ErrInterrupted, "rate limiter acquire interrupted").
				WithCause(ctx.Err())
		case <-reset:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// acquireWithin implements TryAcquireWithin on top of acquire.
func acquireWithin(a admitter, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return acquire(ctx, a) == nil
}
