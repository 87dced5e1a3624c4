package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Jitter:       false,
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("feed unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		Jitter:       false,
	})

	wantErr := errors.New("graph store down")
	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Execute() error = %v, want %v", err, wantErr)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_RetryIfShortCircuits(t *testing.T) {
	permanent := errors.New("bad cypher query")
	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			return !errors.Is(err, permanent)
		},
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Execute() error = %v, want %v", err, permanent)
	}
	if attempts != 1 {
		t.Errorf("non-retryable error must not retry, got %d attempts", attempts)
	}
}

func TestRetry_ContextCancelDuringBackoff(t *testing.T) {
	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Hour,
		Jitter:       false,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Execute(ctx, func(ctx context.Context) error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}

func TestRetry_BackoffStrategies(t *testing.T) {
	cases := []struct {
		name     string
		strategy BackoffStrategy
		attempt  int
		want     time.Duration
	}{
		{"constant", BackoffConstant, 3, 100 * time.Millisecond},
		{"linear", BackoffLinear, 3, 300 * time.Millisecond},
		{"exponential", BackoffExponential, 3, 400 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRetry(RetryConfig{
				InitialDelay: 100 * time.Millisecond,
				Strategy:     tc.strategy,
				Jitter:       false,
			})
			if got := r.calculateDelay(tc.attempt); got != tc.want {
				t.Errorf("calculateDelay(%d) = %v, want %v", tc.attempt, got, tc.want)
			}
		})
	}
}

func TestRetry_DelayCappedAtMax(t *testing.T) {
	r := NewRetry(RetryConfig{
		InitialDelay: time.Second,
		MaxDelay:     2 * time.Second,
		Multiplier:   10,
		Jitter:       false,
	})
	if got := r.calculateDelay(5); got != 2*time.Second {
		t.Errorf("calculateDelay(5) = %v, want cap of 2s", got)
	}
}
