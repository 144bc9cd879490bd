package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/flowkit/types"
)

func TestXRate_Burst(t *testing.T) {
	limiter, err := NewXRate(0.01, 3) // negligible refill during the test
	if err != nil {
		t.Fatalf("NewXRate: %v", err)
	}

	for i := 0; i < 3; i++ {
		if !limiter.TryAcquire() {
			t.Fatalf("acquire %d within burst should succeed", i)
		}
	}
	if limiter.TryAcquire() {
		t.Error("acquire beyond burst should be refused")
	}
}

func TestXRate_Reset(t *testing.T) {
	limiter, err := NewXRate(0.01, 2)
	if err != nil {
		t.Fatalf("NewXRate: %v", err)
	}

	limiter.TryAcquire()
	limiter.TryAcquire()
	if limiter.TryAcquire() {
		t.Fatal("burst should be spent")
	}

	limiter.Reset()
	if !limiter.TryAcquire() {
		t.Error("acquire after reset should succeed")
	}
	if avail := limiter.Available(); avail != 1 {
		t.Errorf("expected 1 token after reset and one grant, got %d", avail)
	}
}

func TestXRate_AcquireCancelled(t *testing.T) {
	limiter, err := NewXRate(0.01, 1)
	if err != nil {
		t.Fatalf("NewXRate: %v", err)
	}
	limiter.TryAcquire()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx)
	}()
	cancel()

	select {
	case acquireErr := <-errCh:
		if types.GetErrorCode(acquireErr) != types.ErrInterrupted {
			t.Errorf("expected %s, got %v", types.ErrInterrupted, acquireErr)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Acquire did not observe cancellation")
	}
}
