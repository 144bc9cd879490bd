package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// TokenBucket implements token bucket rate limiting.
//
// The bucket starts full at capacity and refills continuously at refillRate
// tokens per second, capped at capacity. A permit consumes exactly one token,
// so bursts up to capacity are allowed before the limiter reverts to the
// steady refill rate.
type TokenBucket struct {
	capacity   float64
	refillRate float64 // tokens per second

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
	resetCh    chan struct{}
	now        func() time.Time
}

// NewTokenBucket creates a token bucket limiter with the given capacity and
// refill rate in tokens per second. The bucket starts full.
func NewTokenBucket(capacity int, refillRate float64) (*TokenBucket, error) {
	if capacity <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "token bucket: capacity must be positive, got %d", capacity)
	}
	if refillRate <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "token bucket: refill rate must be positive, got %g", refillRate)
	}
	l := &TokenBucket{
		capacity:   float64(capacity),
		refillRate: refillRate,
		tokens:     float64(capacity),
		resetCh:    make(chan struct{}),
		now:        time.Now,
	}
	l.lastRefill = l.now()
	return l, nil
}

// Acquire blocks until a token is available or ctx is cancelled.
func (l *TokenBucket) Acquire(ctx context.Context) error {
	return acquire(ctx, l)
}

// TryAcquire attempts to consume a token without blocking.
func (l *TokenBucket) TryAcquire() bool {
	ok, _, _ := l.tryAdmit()
	return ok
}

// TryAcquireWithin blocks up to timeout for a token.
func (l *TokenBucket) TryAcquireWithin(timeout time.Duration) bool {
	return acquireWithin(l, timeout)
}

func (l *TokenBucket) tryAdmit() (bool, time.Duration, <-chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.refill(now)

	if l.tokens >= 1.0 {
		l.tokens -= 1.0
		return true, 0, l.resetCh
	}

	// Wait for the fractional remainder of the next token to accrue.
	needed := 1.0 - l.tokens
	wait := time.Duration(needed / l.refillRate * float64(time.Second))
	return false, wait, l.resetCh
}

// refill adds tokens for the elapsed time, capped at capacity. Caller holds
// the lock.
func (l *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(l.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	l.tokens += elapsed * l.refillRate
	if l.tokens > l.capacity {
		l.tokens = l.capacity
	}
	l.lastRefill = now
}

// Reset refills the bucket to capacity and wakes blocked acquirers.
func (l *TokenBucket) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens = l.capacity
	l.lastRefill = l.now()
	close(l.resetCh)
	l.resetCh = make(chan struct{})
}

// Available returns the number of whole tokens currently in the bucket.
func (l *TokenBucket) Available() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill(l.now())
	return int(l.tokens)
}
