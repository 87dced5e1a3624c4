package observe

import (
	"context"

	"github.com/surveilops/surveilops/refcontext"
)

// ResolutionMonitor observes reference-resolution outcomes for one
// service. A partial matched against an unrelated historical entry is
// silent inside the cache, so every outcome is logged with its tier.
// A spike in passthrough or prompt-tier resolutions is the operational
// signal that the cache is guessing.
type ResolutionMonitor struct {
	service string
	logger  Logger
	metrics Metrics
}

// NewResolutionMonitor creates a monitor for the named service. A nil
// logger or metrics falls back to a no-op implementation.
func NewResolutionMonitor(service string, logger Logger, metrics Metrics) *ResolutionMonitor {
	if logger == nil {
		logger = &noopLogger{}
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	return &ResolutionMonitor{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

// MonitorFromObserver creates a ResolutionMonitor backed by an Observer.
func MonitorFromObserver(service string, obs Observer) (*ResolutionMonitor, error) {
	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewResolutionMonitor(service, obs.Logger(), metrics), nil
}

// Hook returns a refcontext.Hook that logs and counts every resolution.
// Wire it into refcontext.Config.OnResolve.
func (m *ResolutionMonitor) Hook() refcontext.Hook {
	return func(ev refcontext.ResolveEvent) {
		ctx := context.Background()

		m.metrics.RecordResolution(ctx, m.service, ev)

		fields := []Field{
			{Key: "service", Value: m.service},
			{Key: "kind", Value: string(ev.Kind)},
			{Key: "partial", Value: ev.Partial},
			{Key: "resolved", Value: ev.Resolved},
			{Key: "tier", Value: ev.Tier.String()},
		}
		if ev.Tier == refcontext.TierPassthrough && ev.Partial != "" {
			m.logger.Warn(ctx, "reference resolution passthrough", fields...)
			return
		}
		m.logger.Debug(ctx, "reference resolved", fields...)
	}
}
