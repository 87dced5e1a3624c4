// Package resilience guards calls to upstream dependencies: the entity
// graph store, market data feeds, and alert webhooks.
//
// # Patterns
//
//   - Circuit Breaker: stops hammering an upstream that keeps failing,
//     with a timed probe before resuming.
//
//   - Retry: retries failed calls with configurable backoff
//     (exponential, linear, constant).
//
//   - Rate Limiter: token bucket limiting for metered upstreams such as
//     market quote APIs.
//
//   - Timeout: bounds the duration of a single call.
//
// # Usage
//
// Patterns compose through an Executor. Services normally build one
// from YAML configuration via PolicyConfig:
//
//	exec := resilience.PolicyConfig{
//	    MaxAttempts:   3,
//	    TimeoutMS:     5000,
//	    RatePerSecond: 8,
//	    Burst:         8,
//	}.Build()
//
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return fetchQuote(ctx, symbol)
//	})
package resilience
