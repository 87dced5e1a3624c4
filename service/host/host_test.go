package host

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
)

type stubTracer struct {
	noop trace.Tracer
}

func (t *stubTracer) StartSpan(ctx context.Context, meta observe.ToolMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *stubTracer) EndSpan(span trace.Span, err error) { span.End() }

type stubMetrics struct{}

func (stubMetrics) RecordExecution(ctx context.Context, meta observe.ToolMeta, d time.Duration, err error) {
}

func (stubMetrics) RecordResolution(ctx context.Context, service string, ev refcontext.ResolveEvent) {
}

func newTestMiddleware() *observe.Middleware {
	tracer := &stubTracer{noop: tracenoop.NewTracerProvider().Tracer("test")}
	return observe.NewMiddleware(tracer, stubMetrics{}, observe.NopLogger())
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := mcp.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("content is %T, want text", res.Content[0])
	}
	return text.Text
}

func TestContextTool_ReturnsSnapshot(t *testing.T) {
	cache, err := refcontext.New(refcontext.Config{
		Kinds:    []refcontext.Kind{refcontext.KindEntityID, refcontext.KindSymbol},
		DedupKey: []refcontext.Kind{refcontext.KindEntityID, refcontext.KindSymbol},
	})
	if err != nil {
		t.Fatalf("refcontext.New() error = %v", err)
	}
	cache.Record("detect_spoofing", map[refcontext.Kind]string{
		refcontext.KindEntityID: "TRADER-001",
		refcontext.KindSymbol:   "RELIANCE",
	}, "Check spoofing for TRADER-001 on RELIANCE")

	_, handler := ContextTool(cache)
	res, err := handler(context.Background(), callRequest("get_context", nil))
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}

	var snap refcontext.Snapshot
	if err := json.Unmarshal([]byte(resultText(t, res)), &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if len(snap.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(snap.History))
	}
	if got := snap.Last[refcontext.KindEntityID]; got != "TRADER-001" {
		t.Errorf("last entity = %q, want TRADER-001", got)
	}
}

func TestJSONResult_MarshalsValue(t *testing.T) {
	res := JSONResult(map[string]string{"symbol": "INFY"})
	if res.IsError {
		t.Fatal("JSONResult() returned error result")
	}
	if text := resultText(t, res); !strings.Contains(text, `"symbol": "INFY"`) {
		t.Errorf("result text = %q, missing symbol field", text)
	}
}

func TestInstrument_NilMiddlewarePassesThrough(t *testing.T) {
	called := false
	h := Instrument(nil, observe.ToolMeta{}, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("ok"), nil
	})

	if _, err := h(context.Background(), callRequest("x", nil)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !called {
		t.Error("wrapped handler was not called")
	}
}

func TestInstrument_PropagatesHandlerError(t *testing.T) {
	wantErr := errors.New("upstream unreachable")
	mw := newTestMiddleware()
	h := Instrument(mw, observe.ToolMeta{Service: "entityrel", Name: "get_entity"},
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, wantErr
		})

	_, err := h(context.Background(), callRequest("get_entity", nil))
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}
