package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRateLimiter_BurstThenThrottle(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 1, Burst: 2})

	if !rl.Allow() || !rl.Allow() {
		t.Fatal("burst capacity should admit two calls")
	}
	if rl.Allow() {
		t.Error("third immediate call should be throttled")
	}
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 100, Burst: 1})

	if !rl.Allow() {
		t.Fatal("first call should pass")
	}
	time.Sleep(20 * time.Millisecond)
	if !rl.Allow() {
		t.Error("token should refill at 100/s")
	}
}

func TestRateLimiter_ExecuteFailsFast(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})

	rl.Allow()
	err := rl.Execute(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("Execute() error = %v, want ErrRateLimitExceeded", err)
	}
}

func TestRateLimiter_WaitOnLimitQueues(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		Rate:        50,
		Burst:       1,
		WaitOnLimit: true,
		MaxWait:     time.Second,
	})

	rl.Allow()
	err := rl.Execute(context.Background(), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Errorf("queued call should eventually run, error = %v", err)
	}
}

func TestRateLimiter_WaitRespectsContext(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1, MaxWait: time.Hour})
	rl.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := rl.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}
