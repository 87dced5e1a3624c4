package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return entry
}

func TestLogger_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "case created",
		Field{Key: "case_id", Value: "CASE-001"},
	)

	entry := decodeLine(t, &buf)
	if entry["msg"] != "case created" {
		t.Errorf("msg = %v, want %q", entry["msg"], "case created")
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if entry["case_id"] != "CASE-001" {
		t.Errorf("case_id = %v, want CASE-001", entry["case_id"])
	}
	if entry["timestamp"] == nil {
		t.Error("timestamp missing")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Debug(context.Background(), "dropped")
	logger.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Errorf("sub-threshold logs should be dropped, got %q", buf.String())
	}

	logger.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Error("warn should pass a warn-level logger")
	}
}

func TestLogger_RedactsSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "upsi access",
		Field{Key: "upsi_headline", Value: "Merger announcement pending"},
		Field{Key: "pan_number", Value: "ABCDE1234F"},
		Field{Key: "api_key", Value: "sk-123"},
		Field{Key: "upsi_id", Value: "UPSI-001"},
	)

	entry := decodeLine(t, &buf)
	for _, key := range []string{"upsi_headline", "pan_number", "api_key"} {
		if entry[key] != "[REDACTED]" {
			t.Errorf("%s = %v, want [REDACTED]", key, entry[key])
		}
	}
	if entry["upsi_id"] != "UPSI-001" {
		t.Errorf("upsi_id = %v, want UPSI-001 (identifiers are not sensitive)", entry["upsi_id"])
	}
}

func TestLogger_WithToolAttachesContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	scoped := logger.WithTool(ToolMeta{Service: "anomaly", Name: "detect_spoofing"})
	scoped.Info(context.Background(), "run")

	entry := decodeLine(t, &buf)
	if entry["tool.id"] != "anomaly.detect_spoofing" {
		t.Errorf("tool.id = %v, want anomaly.detect_spoofing", entry["tool.id"])
	}
	if entry["tool.service"] != "anomaly" {
		t.Errorf("tool.service = %v, want anomaly", entry["tool.service"])
	}

	// The parent logger stays unscoped.
	buf.Reset()
	logger.Info(context.Background(), "plain")
	entry = decodeLine(t, &buf)
	if _, ok := entry["tool.id"]; ok {
		t.Error("parent logger must not inherit tool scope")
	}
}
