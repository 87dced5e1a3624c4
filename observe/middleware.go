package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature for tool execution functions wrapped by
// Middleware. Input is the raw tool argument map; the result is whatever
// the handler produced.
type ExecuteFunc func(ctx context.Context, tool ToolMeta, input any) (any, error)

// Middleware wraps tool execution with observability (tracing, metrics,
// logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Errors: errors from the wrapped function are recorded and propagated
//     unchanged.
//   - Ownership: input/output values pass through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, tool)

		start := time.Now()
		result, err := fn(ctx, tool, input)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, tool, duration, err)

		toolLogger := m.logger.WithTool(tool)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			toolLogger.Error(ctx, "tool execution failed", fields...)
		} else {
			toolLogger.Info(ctx, "tool execution completed", fields...)
		}

		return result, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
