package resilience

import "time"

// PolicyConfig is the YAML-friendly shape of an upstream call policy.
// Zero fields leave the corresponding pattern out of the executor, so
// an empty policy builds a pass-through executor.
type PolicyConfig struct {
	// MaxAttempts enables retry when greater than 1.
	MaxAttempts    int     `yaml:"max_attempts"`
	InitialDelayMS int     `yaml:"initial_delay_ms"`
	MaxDelayMS     int     `yaml:"max_delay_ms"`
	Multiplier     float64 `yaml:"multiplier"`

	// TimeoutMS enables a per-attempt timeout when positive.
	TimeoutMS int `yaml:"timeout_ms"`

	// RatePerSecond enables a token bucket limiter when positive.
	// WaitOnLimit makes callers queue instead of failing fast.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	WaitOnLimit   bool    `yaml:"wait_on_limit"`

	// MaxFailures enables a circuit breaker when positive.
	MaxFailures    int `yaml:"max_failures"`
	ResetTimeoutMS int `yaml:"reset_timeout_ms"`
}

// Build constructs an Executor from the policy.
func (p PolicyConfig) Build() *Executor {
	var opts []ExecutorOption

	if p.RatePerSecond > 0 {
		opts = append(opts, WithRateLimiter(NewRateLimiter(RateLimiterConfig{
			Rate:        p.RatePerSecond,
			Burst:       p.Burst,
			WaitOnLimit: p.WaitOnLimit,
		})))
	}
	if p.MaxFailures > 0 {
		opts = append(opts, WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{
			MaxFailures:  p.MaxFailures,
			ResetTimeout: time.Duration(p.ResetTimeoutMS) * time.Millisecond,
		})))
	}
	if p.MaxAttempts > 1 {
		opts = append(opts, WithRetry(NewRetry(RetryConfig{
			MaxAttempts:  p.MaxAttempts,
			InitialDelay: time.Duration(p.InitialDelayMS) * time.Millisecond,
			MaxDelay:     time.Duration(p.MaxDelayMS) * time.Millisecond,
			Multiplier:   p.Multiplier,
			Jitter:       true,
		})))
	}
	if p.TimeoutMS > 0 {
		opts = append(opts, WithTimeout(time.Duration(p.TimeoutMS)*time.Millisecond))
	}

	return NewExecutor(opts...)
}
