package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/surveilops/surveilops/refcontext"
)

// captureMetrics records resolution events for assertions.
type captureMetrics struct {
	mu     sync.Mutex
	events []refcontext.ResolveEvent
}

func (c *captureMetrics) RecordExecution(ctx context.Context, meta ToolMeta, d time.Duration, err error) {
}

func (c *captureMetrics) RecordResolution(ctx context.Context, service string, ev refcontext.ResolveEvent) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func TestResolutionMonitor_HookLogsAndCounts(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)
	metrics := &captureMetrics{}

	monitor := NewResolutionMonitor("entityrel", logger, metrics)

	rc, err := refcontext.New(refcontext.Config{
		Kinds:     []refcontext.Kind{refcontext.KindEntityID},
		DedupKey:  []refcontext.Kind{refcontext.KindEntityID},
		OnResolve: monitor.Hook(),
	})
	if err != nil {
		t.Fatalf("refcontext.New failed: %v", err)
	}

	rc.Record("get_entity", map[refcontext.Kind]string{refcontext.KindEntityID: "ENT-REL-001"}, "p")
	rc.Resolve(refcontext.KindEntityID, "REL")
	rc.Resolve(refcontext.KindEntityID, "ZZZ-MISS")

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.events) != 2 {
		t.Fatalf("got %d metric events, want 2", len(metrics.events))
	}
	if metrics.events[1].Tier != refcontext.TierPassthrough {
		t.Errorf("second event tier = %v, want passthrough", metrics.events[1].Tier)
	}

	// Each resolution produced one JSON log line; the miss is a warning.
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatalf("bad log line: %v", err)
	}
	if entry["level"] != "warn" {
		t.Errorf("passthrough log level = %v, want warn", entry["level"])
	}
	if entry["tier"] != "passthrough" {
		t.Errorf("tier = %v, want passthrough", entry["tier"])
	}
	if entry["partial"] != "ZZZ-MISS" {
		t.Errorf("partial = %v, want ZZZ-MISS", entry["partial"])
	}
	if entry["resolved"] != "ZZZ-MISS" {
		t.Errorf("resolved = %v, want ZZZ-MISS", entry["resolved"])
	}
}

func TestResolutionMonitor_NilComponentsAreSafe(t *testing.T) {
	monitor := NewResolutionMonitor("tradedata", nil, nil)
	hook := monitor.Hook()

	// Must not panic.
	hook(refcontext.ResolveEvent{
		Kind:     refcontext.KindSymbol,
		Partial:  "REL",
		Resolved: "RELIANCE",
		Tier:     refcontext.TierField,
	})
}

func TestMiddleware_WrapRecordsOutcome(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)
	metrics := &captureMetrics{}

	mw := NewMiddleware(newNoopTracer(), metrics, logger)

	called := false
	fn := mw.Wrap(func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		called = true
		return "ok", nil
	})

	out, err := fn(context.Background(), ToolMeta{Service: "upsidb", Name: "get_upsi"}, nil)
	if err != nil {
		t.Fatalf("wrapped fn failed: %v", err)
	}
	if !called {
		t.Error("wrapped function was not invoked")
	}
	if out != "ok" {
		t.Errorf("result = %v, want ok", out)
	}

	entry := decodeLine(t, &buf)
	if entry["msg"] != "tool execution completed" {
		t.Errorf("msg = %v, want completion log", entry["msg"])
	}
	if entry["tool.id"] != "upsidb.get_upsi" {
		t.Errorf("tool.id = %v, want upsidb.get_upsi", entry["tool.id"])
	}
}
