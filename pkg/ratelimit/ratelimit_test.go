package ratelimit

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestThrottle_WaitWithinBounds(t *testing.T) {
	th := NewThrottle(10*time.Millisecond, 30*time.Millisecond, rand.New(rand.NewSource(1)))

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	if elapsed < 10*time.Millisecond {
		t.Errorf("wait returned too early: %v", elapsed)
	}
	// Generous upper bound; timers can overshoot under load.
	if elapsed > 200*time.Millisecond {
		t.Errorf("wait took too long: %v", elapsed)
	}
}

func TestThrottle_Disabled(t *testing.T) {
	th := NewThrottle(0, 0, nil)

	start := time.Now()
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 5*time.Millisecond {
		t.Errorf("disabled throttle should not sleep")
	}
}

func TestThrottle_NilReceiver(t *testing.T) {
	var th *Throttle
	if err := th.Wait(context.Background()); err != nil {
		t.Fatalf("nil throttle should be a no-op, got %v", err)
	}
}

func TestThrottle_ContextCancel(t *testing.T) {
	th := NewThrottle(time.Second, 2*time.Second, rand.New(rand.NewSource(1)))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := th.Wait(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestThrottle_MaxBelowMin(t *testing.T) {
	th := NewThrottle(20*time.Millisecond, 5*time.Millisecond, rand.New(rand.NewSource(1)))
	if th.Max != th.Min {
		t.Errorf("expected max raised to min, got min=%v max=%v", th.Min, th.Max)
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	l := NewLimiter(0, 0)
	defer l.Stop()

	start := time.Now()
	for i := 0; i < 100; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("unlimited limiter should not block")
	}
}

func TestLimiter_Paces(t *testing.T) {
	l := NewLimiter(100, 0) // 10ms interval
	defer l.Stop()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("expected at least ~30ms of pacing, got %v", elapsed)
	}
}

func TestLimiter_ContextCancel(t *testing.T) {
	l := NewLimiter(0.1, 0) // 10s interval, will never tick in time
	defer l.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err == nil {
		t.Errorf("expected context error")
	}
}
