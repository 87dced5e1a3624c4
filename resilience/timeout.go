package resilience

import (
	"context"
	"time"
)

// TimeoutConfig configures the timeout wrapper.
type TimeoutConfig struct {
	// Timeout bounds one operation. A tool call blocked on a dead
	// backend should fail well inside the MCP client's patience.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout bounds the duration of wrapped operations.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout wrapper, filling config defaults.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Timeout{config: config}
}

// Execute runs the operation, returning ErrTimeout once the deadline
// passes. The operation's context is cancelled; a well-behaved backend
// client abandons the request then.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ctx.Err()
	}
}

// ExecuteWithTimeout runs one operation under an ad hoc deadline.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	t := NewTimeout(TimeoutConfig{Timeout: timeout})
	return t.Execute(ctx, op)
}
