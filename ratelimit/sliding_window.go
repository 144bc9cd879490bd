package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// SlidingWindow implements sliding window rate limiting.
//
// A FIFO queue of grant timestamps is kept; a permit is granted while fewer
// than max timestamps fall within the trailing window. Unlike the fixed
// window algorithm there is no boundary burst: any trailing window of the
// configured size sees at most max grants.
type SlidingWindow struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	grants  []time.Time
	resetCh chan struct{}
	now     func() time.Time
}

// NewSlidingWindow creates a sliding window limiter granting max permits per
// trailing window.
func NewSlidingWindow(max int, window time.Duration) (*SlidingWindow, error) {
	if max <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "sliding window: max must be positive, got %d", max)
	}
	if window <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "sliding window: window must be positive, got %v", window)
	}
	return &SlidingWindow{
		max:     max,
		window:  window,
		grants:  make([]time.Time, 0, max),
		resetCh: make(chan struct{}),
		now:     time.Now,
	}, nil
}

// Acquire blocks until a permit is granted or ctx is cancelled.
func (l *SlidingWindow) Acquire(ctx context.Context) error {
	return acquire(ctx, l)
}

// TryAcquire attempts to take a permit without blocking.
func (l *SlidingWindow) TryAcquire() bool {
	ok, _, _ := l.tryAdmit()
	return ok
}

// TryAcquireWithin blocks up to timeout for a permit.
func (l *SlidingWindow) TryAcquireWithin(timeout time.Duration) bool {
	return acquireWithin(l, timeout)
}

func (l *SlidingWindow) tryAdmit() (bool, time.Duration, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictExpired(now)

	if len(l.grants) < l.max {
		l.grants = append(l.grants, now)
		return true, 0, l.resetCh
	}

	// Next unit becomes available when the oldest grant leaves the window.
	return false, l.grants[0].Add(l.window).Sub(now), l.resetCh
}

// evictExpired drops grants that have left the trailing window. Caller holds
// the lock.
func (l *SlidingWindow) evictExpired(now time.Time) {
	cutoff := now.Add(-l.window)
	idx := 0
	for idx < len(l.grants) && !l.grants[idx].After(cutoff) {
		idx++
	}
	if idx > 0 {
		l.grants = append(l.grants[:0], l.grants[idx:]...)
	}
}

// Reset drops all recorded grants and wakes blocked acquirers.
func (l *SlidingWindow) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.grants = l.grants[:0]
	close(l.resetCh)
	l.resetCh = make(chan struct{})
}

// Available returns the permits remaining in the current trailing window.
func (l *SlidingWindow) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.evictExpired(l.now())

	remaining := l.max - len(l.grants)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}
