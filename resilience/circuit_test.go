package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func failing(err error) func(context.Context) error {
	return func(ctx context.Context) error { return err }
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3})

	upstream := errors.New("quote API 503")
	for i := 0; i < 3; i++ {
		if err := cb.Execute(context.Background(), failing(upstream)); !errors.Is(err, upstream) {
			t.Fatalf("attempt %d: error = %v", i, err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
	if err := cb.Execute(context.Background(), failing(nil)); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("open circuit: error = %v, want ErrCircuitOpen", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})

	cb.Execute(context.Background(), failing(errors.New("blip")))
	cb.Execute(context.Background(), failing(nil))
	cb.Execute(context.Background(), failing(errors.New("blip")))

	if cb.State() != StateClosed {
		t.Errorf("interleaved success must keep circuit closed, state = %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+">"+to.String())
		},
	})

	cb.Execute(context.Background(), failing(errors.New("down")))
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	time.Sleep(15 * time.Millisecond)

	// Recovered upstream closes the circuit through a half-open probe.
	if err := cb.Execute(context.Background(), failing(nil)); err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state after successful probe = %v, want closed", cb.State())
	}

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 5 * time.Millisecond,
	})

	cb.Execute(context.Background(), failing(errors.New("down")))
	time.Sleep(10 * time.Millisecond)
	cb.Execute(context.Background(), failing(errors.New("still down")))

	if cb.State() != StateOpen {
		t.Errorf("state after failed probe = %v, want open", cb.State())
	}
}

func TestCircuitBreaker_IsFailurePredicate(t *testing.T) {
	notFound := errors.New("entity not found")
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, notFound)
		},
	})

	// Domain misses are not upstream failures.
	cb.Execute(context.Background(), failing(notFound))
	if cb.State() != StateClosed {
		t.Errorf("not-found must not trip the breaker, state = %v", cb.State())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})
	cb.Execute(context.Background(), failing(errors.New("down")))

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("state after Reset = %v, want closed", cb.State())
	}
	if err := cb.Execute(context.Background(), failing(nil)); err != nil {
		t.Errorf("Execute after Reset error = %v", err)
	}
}
