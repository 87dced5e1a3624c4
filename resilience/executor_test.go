package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_EmptyPassesThrough(t *testing.T) {
	e := NewExecutor()

	ran := false
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Fatalf("Execute() error = %v, ran = %v", err, ran)
	}
}

func TestExecutor_RetryWithCircuitBreaker(t *testing.T) {
	e := NewExecutor(
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 10})),
		WithRetry(NewRetry(RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			Jitter:       false,
		})),
	)

	attempts := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
	if e.Breaker().State() != StateClosed {
		t.Errorf("breaker state = %v, want closed", e.Breaker().State())
	}
}

func TestExecutor_OpenCircuitSkipsRetries(t *testing.T) {
	e := NewExecutor(
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)

	e.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("down")
	})

	// The breaker sits outside retry, so the whole failed batch opened
	// it and the next call must not run the operation at all.
	attempts := 0
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() error = %v, want ErrCircuitOpen", err)
	}
	if attempts != 0 {
		t.Errorf("open circuit ran the operation %d times", attempts)
	}
}

func TestExecutor_RateLimitFailsBeforeBreaker(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})
	e := NewExecutor(
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 1})),
		WithCircuitBreaker(cb),
	)

	e.Execute(context.Background(), func(ctx context.Context) error { return nil })

	err := e.Execute(context.Background(), func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Fatalf("Execute() error = %v, want ErrRateLimitExceeded", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("throttled call must not count as breaker failure, state = %v", cb.State())
	}
}

func TestExecutor_TimeoutInnermost(t *testing.T) {
	e := NewExecutor(WithTimeout(5 * time.Millisecond))

	err := e.Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}
