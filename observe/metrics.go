package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/surveilops/surveilops/refcontext"
)

// Metrics records execution and resolution metrics for tool services.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records a tool execution with duration and error status.
	RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error)

	// RecordResolution records one reference-resolution outcome by tier.
	RecordResolution(ctx context.Context, service string, ev refcontext.ResolveEvent)
}

type metricsImpl struct {
	meter          metric.Meter
	totalCount     metric.Int64Counter
	errorCount     metric.Int64Counter
	durationHist   metric.Float64Histogram
	resolveCount   metric.Int64Counter
	passthroughCnt metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"tool.exec.total",
		metric.WithDescription("Total number of tool executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"tool.exec.errors",
		metric.WithDescription("Total number of tool execution errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"tool.exec.duration_ms",
		metric.WithDescription("Tool execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	resolveCount, err := meter.Int64Counter(
		"refcontext.resolve.total",
		metric.WithDescription("Reference resolutions by tier"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}

	passthroughCnt, err := meter.Int64Counter(
		"refcontext.resolve.passthrough",
		metric.WithDescription("Resolutions that fell through to the raw partial"),
		metric.WithUnit("{resolution}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		totalCount:     totalCount,
		errorCount:     errorCount,
		durationHist:   durationHist,
		resolveCount:   resolveCount,
		passthroughCnt: passthroughCnt,
	}, nil
}

// RecordExecution records metrics for a tool execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.id", meta.ToolID()),
		attribute.String("tool.name", meta.Name),
	}
	if meta.Service != "" {
		attrs = append(attrs, attribute.String("tool.service", meta.Service))
	}

	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordResolution records one resolution outcome, labelled by kind and
// tier so that passthrough and misresolution-prone tiers can be charted.
func (m *metricsImpl) RecordResolution(ctx context.Context, service string, ev refcontext.ResolveEvent) {
	opt := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("kind", string(ev.Kind)),
		attribute.String("tier", ev.Tier.String()),
	)

	m.resolveCount.Add(ctx, 1, opt)
	if ev.Tier == refcontext.TierPassthrough {
		m.passthroughCnt.Add(ctx, 1, opt)
	}
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordResolution(ctx context.Context, service string, ev refcontext.ResolveEvent) {
}
