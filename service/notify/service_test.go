package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type webhookStub struct {
	texts  []string
	status int
}

func (w *webhookStub) handler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(rw, err.Error(), http.StatusBadRequest)
			return
		}
		w.texts = append(w.texts, payload.Text)
		if w.status != 0 {
			rw.WriteHeader(w.status)
			return
		}
		rw.Write([]byte("ok"))
	})
}

func newTestService(t *testing.T, stub *webhookStub) *Service {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	return NewService(Config{WebhookURL: srv.URL}, nil)
}

func TestSendMessage_FormatsChannelHeading(t *testing.T) {
	stub := &webhookStub{}
	svc := newTestService(t, stub)

	result := svc.SendMessage(context.Background(), "#alerts", "spoofing detected on RELIANCE")
	if !result.Success {
		t.Fatalf("result = %+v, want success", result)
	}
	if !strings.HasPrefix(result.MessageID, "MSG-") {
		t.Errorf("message ID = %q, want MSG- prefix", result.MessageID)
	}

	if len(stub.texts) != 1 {
		t.Fatalf("posted %d messages, want 1", len(stub.texts))
	}
	want := "📢 *#alerts*\nspoofing detected on RELIANCE"
	if stub.texts[0] != want {
		t.Errorf("text = %q, want %q", stub.texts[0], want)
	}
}

func TestSendMessage_EmptyChannelUsesDefault(t *testing.T) {
	stub := &webhookStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)
	svc := NewService(Config{WebhookURL: srv.URL, DefaultChannel: "#ops"}, nil)

	svc.SendMessage(context.Background(), "", "hello")
	if len(stub.texts) != 1 || !strings.Contains(stub.texts[0], "*#ops*") {
		t.Errorf("texts = %v, want default channel heading", stub.texts)
	}
}

func TestSendAlert_SeverityEmoji(t *testing.T) {
	stub := &webhookStub{}
	svc := newTestService(t, stub)
	ctx := context.Background()

	tests := []struct {
		severity string
		emoji    string
	}{
		{"CRITICAL", "🚨"},
		{"HIGH", "🔴"},
		{"MEDIUM", "🟡"},
		{"LOW", "🟢"},
		{"WHATEVER", "ℹ️"},
	}
	for _, tt := range tests {
		t.Run(tt.severity, func(t *testing.T) {
			result := svc.SendAlert(ctx, "SPOOFING", tt.severity, "RELIANCE", "TRADER-001", "large cancelled orders", 75)
			if !result.Success {
				t.Fatalf("result = %+v, want success", result)
			}
			text := stub.texts[len(stub.texts)-1]
			if !strings.HasPrefix(text, tt.emoji) {
				t.Errorf("text = %q, want %s prefix", text, tt.emoji)
			}
			if !strings.Contains(text, "*Risk Score:* 75/100") {
				t.Errorf("text = %q, missing risk score line", text)
			}
		})
	}
}

func TestSendCaseUpdate_StatusEmoji(t *testing.T) {
	stub := &webhookStub{}
	svc := newTestService(t, stub)

	svc.SendCaseUpdate(context.Background(), "CASE-000001", "ESCALATED", "referred to enforcement", "analyst-1")
	text := stub.texts[0]
	if !strings.HasPrefix(text, "⚠️") {
		t.Errorf("text = %q, want escalation emoji prefix", text)
	}
	if !strings.Contains(text, "*Case Update: CASE-000001*") {
		t.Errorf("text = %q, missing case heading", text)
	}
}

func TestSendWorkflowComplete_AlertIndicator(t *testing.T) {
	stub := &webhookStub{}
	svc := newTestService(t, stub)
	ctx := context.Background()

	svc.SendWorkflowComplete(ctx, "WF-001", "SPOOFING_SCAN", "clean", 0)
	if !strings.HasPrefix(stub.texts[0], "✅") {
		t.Errorf("text = %q, want clean-run prefix", stub.texts[0])
	}

	svc.SendWorkflowComplete(ctx, "WF-002", "SPOOFING_SCAN", "two alerts raised", 2)
	if !strings.HasPrefix(stub.texts[1], "🚨") {
		t.Errorf("text = %q, want alert prefix", stub.texts[1])
	}
}

func TestSendDailySummary_Counts(t *testing.T) {
	stub := &webhookStub{}
	svc := newTestService(t, stub)

	svc.SendDailySummary(context.Background(), "2026-01-12", 14, 3, 5, 2)
	text := stub.texts[0]
	for _, line := range []string{
		"*Daily Surveillance Summary - 2026-01-12*",
		"• Total Alerts: 14",
		"• Critical Alerts: 3",
		"• Open Cases: 5",
		"• New Cases Today: 2",
	} {
		if !strings.Contains(text, line) {
			t.Errorf("text = %q, missing %q", text, line)
		}
	}
}

func TestSend_UnconfiguredWebhook(t *testing.T) {
	svc := NewService(Config{}, nil)

	result := svc.SendMessage(context.Background(), "#alerts", "hello")
	if result.Success {
		t.Fatal("result.Success = true, want false without a webhook")
	}
	if result.Error != "Webhook URL not configured" {
		t.Errorf("error = %q, want not-configured message", result.Error)
	}
}

func TestSend_WebhookRejects(t *testing.T) {
	stub := &webhookStub{status: http.StatusForbidden}
	svc := newTestService(t, stub)

	result := svc.SendMessage(context.Background(), "#alerts", "hello")
	if result.Success {
		t.Fatal("result.Success = true, want false on HTTP 403")
	}
	if !strings.Contains(result.Error, "403") {
		t.Errorf("error = %q, want HTTP status in message", result.Error)
	}
}
