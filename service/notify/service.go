package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/resilience"
)

// NotificationResult reports what happened to one message. Success is
// false with a populated Error when the webhook is unset, unreachable
// or rejects the post.
type NotificationResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	Timestamp int64  `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// Service posts formatted surveillance messages to the chat webhook.
type Service struct {
	webhookURL     string
	defaultChannel string
	http           *resty.Client
	exec           *resilience.Executor
	logger         observe.Logger
}

// NewService builds the service.
func NewService(cfg Config, logger observe.Logger) *Service {
	if logger == nil {
		logger = observe.NopLogger()
	}
	channel := cfg.DefaultChannel
	if channel == "" {
		channel = "#surveillance"
	}
	return &Service{
		webhookURL:     cfg.WebhookURL,
		defaultChannel: channel,
		http:           resty.New().SetHeader("Content-Type", "application/json"),
		exec:           cfg.Policy.Build(),
		logger:         logger,
	}
}

func severityEmoji(severity string) string {
	switch strings.ToUpper(severity) {
	case "CRITICAL":
		return "🚨"
	case "HIGH":
		return "🔴"
	case "MEDIUM":
		return "🟡"
	case "LOW":
		return "🟢"
	default:
		return "ℹ️"
	}
}

func statusEmoji(status string) string {
	switch strings.ToUpper(status) {
	case "OPEN":
		return "📂"
	case "INVESTIGATING":
		return "🔍"
	case "ESCALATED":
		return "⚠️"
	case "CLOSED":
		return "✅"
	default:
		return "📋"
	}
}

func (s *Service) send(ctx context.Context, text string) NotificationResult {
	if s.webhookURL == "" {
		return NotificationResult{Error: "Webhook URL not configured"}
	}

	var deliveryErr string
	err := s.exec.Execute(ctx, func(ctx context.Context) error {
		resp, err := s.http.R().
			SetContext(ctx).
			SetBody(map[string]string{"text": text}).
			Post(s.webhookURL)
		if err != nil {
			return err
		}
		if resp.IsError() {
			deliveryErr = fmt.Sprintf("webhook returned HTTP %d: %s", resp.StatusCode(), resp.String())
		}
		return nil
	})
	if err != nil {
		deliveryErr = err.Error()
	}
	if deliveryErr != "" {
		s.logger.Warn(ctx, "webhook delivery failed", observe.Field{Key: "error", Value: deliveryErr})
		return NotificationResult{Error: deliveryErr}
	}

	return NotificationResult{
		Success:   true,
		MessageID: "MSG-" + uuid.NewString()[:8],
		Timestamp: time.Now().UnixMilli(),
	}
}

// SendMessage posts a plain message under a channel heading.
func (s *Service) SendMessage(ctx context.Context, channel, message string) NotificationResult {
	if channel == "" {
		channel = s.defaultChannel
	}
	return s.send(ctx, fmt.Sprintf("📢 *%s*\n%s", channel, message))
}

// SendAlert posts a formatted surveillance alert.
func (s *Service) SendAlert(ctx context.Context, alertType, severity, symbol, entityID, description string, riskScore int) NotificationResult {
	text := fmt.Sprintf(
		"%s *%s Alert - %s*\n\n*Symbol:* %s\n*Entity:* %s\n*Risk Score:* %d/100\n*Description:* %s",
		severityEmoji(severity), severity, alertType, symbol, entityID, riskScore, description)
	return s.send(ctx, text)
}

// SendCaseUpdate posts a case status change.
func (s *Service) SendCaseUpdate(ctx context.Context, caseID, status, updateMessage, assignedTo string) NotificationResult {
	text := fmt.Sprintf(
		"%s *Case Update: %s*\n\n*Status:* %s\n*Assigned To:* %s\n*Update:* %s",
		statusEmoji(status), caseID, status, assignedTo, updateMessage)
	return s.send(ctx, text)
}

// SendWorkflowComplete posts a workflow completion notice. The heading
// flags whether the run raised any alerts.
func (s *Service) SendWorkflowComplete(ctx context.Context, workflowID, workflowType, resultSummary string, alertCount int) NotificationResult {
	indicator := "✅"
	if alertCount > 0 {
		indicator = "🚨"
	}
	text := fmt.Sprintf(
		"%s *Workflow Complete: %s*\n\n*Type:* %s\n*Alerts Generated:* %d\n*Summary:* %s",
		indicator, workflowID, workflowType, alertCount, resultSummary)
	return s.send(ctx, text)
}

// SendDailySummary posts the end of day surveillance digest.
func (s *Service) SendDailySummary(ctx context.Context, date string, totalAlerts, criticalAlerts, openCases, newCases int) NotificationResult {
	text := fmt.Sprintf(
		"📊 *Daily Surveillance Summary - %s*\n\n• Total Alerts: %d\n• Critical Alerts: %d\n• Open Cases: %d\n• New Cases Today: %d",
		date, totalAlerts, criticalAlerts, openCases, newCases)
	return s.send(ctx, text)
}
