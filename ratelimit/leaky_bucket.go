package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// LeakyBucket implements leaky bucket rate limiting.
//
// Every grant pours one unit of water into the bucket; water drains at
// leakRate units per second, floored at zero. A permit is granted only while
// the bucket has room for one more unit, so bursts are smoothed into a
// constant drain rate with no burst tolerance once the bucket is full.
type LeakyBucket struct {
	capacity float64
	leakRate float64 // units per second

	mu       sync.Mutex
	water    float64
	lastLeak time.Time
	resetCh  chan struct{}
	now      func() time.Time
}

// NewLeakyBucket creates a leaky bucket limiter with the given capacity and
// leak rate in units per second. The bucket starts empty.
func NewLeakyBucket(capacity int, leakRate float64) (*LeakyBucket, error) {
	if capacity <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "leaky bucket: capacity must be positive, got %d", capacity)
	}
	if leakRate <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "leaky bucket: leak rate must be positive, got %g", leakRate)
	}
	l := &LeakyBucket{
		capacity: float64(capacity),
		leakRate: leakRate,
		resetCh:  make(chan struct{}),
		now:      time.Now,
	}
	l.lastLeak = l.now()
	return l, nil
}

// Acquire blocks until the bucket has room or ctx is cancelled.
func (l *LeakyBucket) Acquire(ctx context.Context) error {
	return acquire(ctx, l)
}

// TryAcquire attempts to pour one unit without blocking.
func (l *LeakyBucket) TryAcquire() bool {
	ok, _, _ := l.tryAdmit()
	return ok
}

// TryAcquireWithin blocks up to timeout for room in the bucket.
func (l *LeakyBucket) TryAcquireWithin(timeout time.Duration) bool {
	return acquireWithin(l, timeout)
}

func (l *LeakyBucket) tryAdmit() (bool, time.Duration, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.leak(now)

	if l.water+1.0 <= l.capacity {
		l.water += 1.0
		return true, 0, l.resetCh
	}

	// Wait for enough water to drain that one more unit fits.
	overflow := l.water + 1.0 - l.capacity
	wait := time.Duration(overflow / l.leakRate * float64(time.Second))
	return false, wait, l.resetCh
}

// leak drains water for the elapsed time, floored at zero. Caller holds the
// lock.
func (l *LeakyBucket) leak(now time.Time) {
	elapsed := now.Sub(l.lastLeak).Seconds()
	if elapsed <= 0 {
		return
	}
	l.water -= elapsed * l.leakRate
	if l.water < 0 {
		l.water = 0
	}
	l.lastLeak = now
}

// Reset empties the bucket and wakes blocked acquirers.
func (l *LeakyBucket) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.water = 0
	l.lastLeak = l.now()
	close(l.resetCh)
	l.resetCh = make(chan struct{})
}

// Available returns how many whole units still fit in the bucket.
func (l *LeakyBucket) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leak(l.now())
	return int(l.capacity - l.water)
}
