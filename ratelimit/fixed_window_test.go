package ratelimit

import (
	"testing"
	"time"
)

func newTestFixedWindow(t *testing.T, max int, window time.Duration) (*FixedWindow, *fakeClock) {
	t.Helper()
	limiter, err := NewFixedWindow(max, window)
	if err != nil {
		t.Fatalf("NewFixedWindow: %v", err)
	}
	clock := newFakeClock()
	limiter.now = clock.Now
	limiter.windowStart = clock.Now()
	return limiter, clock
}

func TestFixedWindow_ExhaustsWindow(t *testing.T) {
	limiter, _ := newTestFixedWindow(t, 3, time.Second)

	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Fatalf("acquire %d should succeed", i)
		}
	}
	if limiter.TryAcquire() {
		t.Error("4th acquire should be refused within the window")
	}
	if avail := limiter.Available(); avail != 0 {
		t.Errorf("expected 0 available, got %d", avail)
	}
}

func TestFixedWindow_RollsAfterWindow(t *testing.T) {
	limiter, clock := newTestFixedWindow(t, 2, time.Second)

	limiter.TryAcquire()
	limiter.TryAcquire()
	if limiter.TryAcquire() {
		t.Fatal("window should be exhausted")
	}

	// Just short of the boundary: still refused.
	clock.Advance(999 * time.Millisecond)
	if limiter.TryAcquire() {
		t.Error("acquire before window boundary should be refused")
	}

	// Crossing the boundary resets the counter.
	clock.Advance(time.Millisecond)
	if !limiter.TryAcquire() {
		t.Error("acquire after window boundary should succeed")
	}
	if avail := limiter.Available(); avail != 1 {
		t.Errorf("expected 1 available in new window, got %d", avail)
	}
}

func TestFixedWindow_Reset(t *testing.T) {
	limiter, _ := newTestFixedWindow(t, 1, time.Hour)

	limiter.TryAcquire()
	if limiter.TryAcquire() {
		t.Fatal("expected exhausted window")
	}

	limiter.Reset()
	if !limiter.TryAcquire() {
		t.Error("acquire after reset should succeed")
	}
}

func TestFixedWindow_WaitHint(t *testing.T) {
	limiter, clock := newTestFixedWindow(t, 1, time.Second)
	limiter.TryAcquire()
	clock.Advance(400 * time.Millisecond)

	ok, wait, _ := limiter.tryAdmit()
	if ok {
		t.Fatal("expected refusal")
	}
	if wait != 600*time.Millisecond {
		t.Errorf("expected 600ms wait hint, got %v", wait)
	}
}
