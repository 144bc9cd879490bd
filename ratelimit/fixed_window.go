package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// FixedWindow implements fixed window rate limiting.
//
// Up to max permits are granted per window; the counter resets when the
// window elapses. Up to 2*max grants can land across a window boundary, which
// is the accepted trade-off of this algorithm.
type FixedWindow struct {
	max    int
	window time.Duration

	mu          sync.Mutex
	count       int
	windowStart time.Time
	resetCh     chan struct{}
	now         func() time.Time
}

// NewFixedWindow creates a fixed window limiter granting max permits per
// window.
func NewFixedWindow(max int, window time.Duration) (*FixedWindow, error) {
	if max <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "fixed window: max must be positive, got %d", max)
	}
	if window <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "fixed window: window must be positive, got %v", window)
	}
	l := &FixedWindow{
		max:     max,
		window:  window,
		resetCh: make(chan struct{}),
		now:     time.Now,
	}
	l.windowStart = l.now()
	return l, nil
}

// Acquire blocks until a permit is granted or ctx is cancelled.
func (l *FixedWindow) Acquire(ctx context.Context) error {
	return acquire(ctx, l)
}

// TryAcquire attempts to take a permit without blocking.
func (l *FixedWindow) TryAcquire() bool {
	ok, _, _ := l.tryAdmit()
	return ok
}

// TryAcquireWithin blocks up to timeout for a permit.
func (l *FixedWindow) TryAcquireWithin(timeout time.Duration) bool {
	return acquireWithin(l, timeout)
}

func (l *FixedWindow) tryAdmit() (bool, time.Duration, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.rollWindow(now)

	if l.count < l.max {
		l.count++
		return true, 0, l.resetCh
	}

	// Next unit becomes available when the current window expires.
	return false, l.windowStart.Add(l.window).Sub(now), l.resetCh
}

// rollWindow resets the counter when the window has elapsed. Caller holds the
// lock.
func (l *FixedWindow) rollWindow(now time.Time) {
	if now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
}

// Reset restores the limiter to a fresh window and wakes blocked acquirers.
func (l *FixedWindow) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count = 0
	l.windowStart = l.now()
	close(l.resetCh)
	l.resetCh = make(chan struct{})
}

// Available returns the permits remaining in the current window.
func (l *FixedWindow) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollWindow(l.now())

	remaining := l.max - l.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
