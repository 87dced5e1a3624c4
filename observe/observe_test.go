package observe

import (
	"context"
	"errors"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	cfg := Config{ServiceName: "entityrel"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("minimal config should validate, got: %v", err)
	}

	cfg = Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrMissingServiceName) {
		t.Errorf("empty service name: got %v, want ErrMissingServiceName", err)
	}

	cfg = Config{
		ServiceName: "entityrel",
		Tracing:     TracingConfig{Enabled: true, Exporter: "carrier-pigeon"},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidTracingExporter) {
		t.Errorf("bad tracing exporter: got %v, want ErrInvalidTracingExporter", err)
	}

	cfg = Config{
		ServiceName: "entityrel",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidSamplePct) {
		t.Errorf("bad sample pct: got %v, want ErrInvalidSamplePct", err)
	}

	cfg = Config{
		ServiceName: "entityrel",
		Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidMetricsExporter) {
		t.Errorf("bad metrics exporter: got %v, want ErrInvalidMetricsExporter", err)
	}

	cfg = Config{
		ServiceName: "entityrel",
		Logging:     LoggingConfig{Enabled: true, Level: "verbose"},
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("bad log level: got %v, want ErrInvalidLogLevel", err)
	}
}

func TestNewObserver_DisabledSubsystemsAreNoop(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "tradedata"})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}
	defer obs.Shutdown(context.Background())

	if obs.Tracer() == nil {
		t.Error("Tracer should never be nil")
	}
	if obs.Meter() == nil {
		t.Error("Meter should never be nil")
	}
	if obs.Logger() == nil {
		t.Error("Logger should never be nil")
	}

	// Logging on a disabled observer must be a safe no-op.
	obs.Logger().Info(context.Background(), "hello")
}

func TestNewObserver_ShutdownIsIdempotent(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "anomaly",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		t.Fatalf("NewObserver failed: %v", err)
	}

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("first Shutdown failed: %v", err)
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown failed: %v", err)
	}
}

func TestToolMeta_Naming(t *testing.T) {
	meta := ToolMeta{Service: "entityrel", Name: "get_entity"}
	if got := meta.ToolID(); got != "entityrel.get_entity" {
		t.Errorf("ToolID = %q, want entityrel.get_entity", got)
	}
	if got := meta.SpanName(); got != "tool.exec.entityrel.get_entity" {
		t.Errorf("SpanName = %q, want tool.exec.entityrel.get_entity", got)
	}

	meta = ToolMeta{Name: "get_context"}
	if got := meta.ToolID(); got != "get_context" {
		t.Errorf("ToolID without service = %q, want get_context", got)
	}
	if got := meta.SpanName(); got != "tool.exec.get_context" {
		t.Errorf("SpanName without service = %q, want tool.exec.get_context", got)
	}
}
