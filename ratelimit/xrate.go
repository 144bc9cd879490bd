package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/BaSui01/flowkit/types"
)

// XRate adapts golang.org/x/time/rate to the Limiter contract, for callers
// that prefer the ecosystem token bucket over the in-repo implementation.
type XRate struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewXRate creates an adapter around a rate.Limiter with the given
// events-per-second limit and burst.
func NewXRate(eventsPerSecond float64, burst int) (*XRate, error) {
	if eventsPerSecond <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "xrate: limit must be positive, got %g", eventsPerSecond)
	}
	if burst <= 0 {
		return nil, types.Errorf(types.ErrInvalidConfig, "xrate: burst must be positive, got %d", burst)
	}
	limit := rate.Limit(eventsPerSecond)
	return &XRate{
		limit:   limit,
		burst:   burst,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// Acquire blocks until a token is available or ctx is cancelled.
func (l *XRate) Acquire(ctx context.Context) error {
	l.mu.Lock()
	limiter := l.limiter
	l.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return types.NewError(types.ErrInterrupted, "rate limiter acquire interrupted").WithCause(err)
	}
	return nil
}

// TryAcquire attempts to consume a token without blocking.
func (l *XRate) TryAcquire() bool {
	l.mu.Lock()
	limiter := l.limiter
	l.mu.Unlock()
	return limiter.Allow()
}

// TryAcquireWithin blocks up to timeout for a token.
func (l *XRate) TryAcquireWithin(timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Acquire(ctx) == nil
}

// Reset replaces the underlying limiter with a fresh, full one. Goroutines
// already blocked in Acquire keep waiting on the old limiter; x/time/rate has
// no broadcast wakeup.
func (l *XRate) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter = rate.NewLimiter(l.limit, l.burst)
}

// Available returns the number of whole tokens currently available.
func (l *XRate) Available() int {
	l.mu.Lock()
	limiter := l.limiter
	l.mu.Unlock()

	tokens := limiter.Tokens()
	if tokens < 0 {
		return 0
	}
	return int(tokens)
}
