package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BaSui01/flowkit/types"
)

// fakeClock drives the limiters' injected clock so window and refill math can
// be tested without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestAcquire_ContextCancelled(t *testing.T) {
	limiter, err := NewFixedWindow(1, time.Hour)
	if err != nil {
		t.Fatalf("NewFixedWindow: %v", err)
	}
	if !limiter.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()

	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected interruption error")
		}
		if types.GetErrorCode(err) != types.ErrInterrupted {
			t.Errorf("expected code %s, got %s", types.ErrInterrupted, types.GetErrorCode(err))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not observe cancellation")
	}
}

func TestAcquire_WokenByReset(t *testing.T) {
	limiter, err := NewFixedWindow(1, time.Hour)
	if err != nil {
		t.Fatalf("NewFixedWindow: %v", err)
	}
	if !limiter.TryAcquire() {
		t.Fatal("first acquire should succeed")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(context.Background())
	}()

	// Give the goroutine a moment to enter the wait loop, then reset.
	time.Sleep(20 * time.Millisecond)
	limiter.Reset()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("expected acquire to succeed after reset, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire was not woken by Reset")
	}
}

func TestTryAcquireWithin_TimesOut(t *testing.T) {
	limiter, err := NewFixedWindow(1, time.Hour)
	if err != nil {
		t.Fatalf("NewFixedWindow: %v", err)
	}
	limiter.TryAcquire()

	start := time.Now()
	if limiter.TryAcquireWithin(50 * time.Millisecond) {
		t.Error("expected TryAcquireWithin to fail while window is exhausted")
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("TryAcquireWithin returned too early: %v", elapsed)
	}
}

func TestTryAcquireWithin_Succeeds(t *testing.T) {
	limiter, err := NewTokenBucket(1, 1000) // refills fast
	if err != nil {
		t.Fatalf("NewTokenBucket: %v", err)
	}
	limiter.TryAcquire()

	if !limiter.TryAcquireWithin(time.Second) {
		t.Error("expected TryAcquireWithin to succeed once the bucket refills")
	}
}

func TestLimiters_ConcurrentTryAcquire(t *testing.T) {
	limiters := map[string]Limiter{}

	fw, _ := NewFixedWindow(100, time.Minute)
	sw, _ := NewSlidingWindow(100, time.Minute)
	tb, _ := NewTokenBucket(100, 0.001) // effectively no refill during the test
	limiters["fixed_window"] = fw
	limiters["sliding_window"] = sw
	limiters["token_bucket"] = tb

	for name, limiter := range limiters {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			var mu sync.Mutex
			granted := 0

			for i := 0; i < 200; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if limiter.TryAcquire() {
						mu.Lock()
						granted++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if granted != 100 {
				t.Errorf("expected exactly 100 grants, got %d", granted)
			}
		})
	}
}

func TestNewLimiters_RejectBadConfig(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"fixed window max", func() error { _, err := NewFixedWindow(0, time.Second); return err }()},
		{"fixed window window", func() error { _, err := NewFixedWindow(1, 0); return err }()},
		{"sliding window max", func() error { _, err := NewSlidingWindow(-1, time.Second); return err }()},
		{"token bucket capacity", func() error { _, err := NewTokenBucket(0, 1); return err }()},
		{"token bucket rate", func() error { _, err := NewTokenBucket(1, 0); return err }()},
		{"leaky bucket capacity", func() error { _, err := NewLeakyBucket(0, 1); return err }()},
		{"leaky bucket rate", func() error { _, err := NewLeakyBucket(1, -1); return err }()},
		{"xrate rate", func() error { _, err := NewXRate(0, 1); return err }()},
	}

	for _, tc := range cases {
		if tc.err == nil {
			t.Errorf("%s: expected config error", tc.name)
			continue
		}
		if types.GetErrorCode(tc.err) != types.ErrInvalidConfig {
			t.Errorf("%s: expected %s, got %s", tc.name, types.ErrInvalidConfig, types.GetErrorCode(tc.err))
		}
	}
}
