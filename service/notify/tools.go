package notify

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "notify"

const instructions = "Chat notification tools. Every tool returns a delivery result; " +
	"success is false with an error string when the webhook is unset or rejects the post."

// NewServer builds the MCP server with all notification tools
// registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the notification tools. There is no get_context
// tool: the service keeps no resolution cache.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	add(mcp.NewTool("send_message",
		mcp.WithDescription("Send a plain text message to a chat channel."),
		mcp.WithString("channel", mcp.Description("Target channel, e.g. #alerts")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.SendMessage(ctx, req.GetString("channel", ""), message)), nil
	})

	add(mcp.NewTool("send_alert",
		mcp.WithDescription("Send a formatted surveillance alert notification."),
		mcp.WithString("alert_type", mcp.Required(), mcp.Description("e.g. INSIDER, SPOOFING, WASH_TRADE, PUMP_DUMP")),
		mcp.WithString("severity", mcp.Required(), mcp.Description("CRITICAL, HIGH, MEDIUM or LOW")),
		mcp.WithString("symbol", mcp.Description("Security symbol")),
		mcp.WithString("entity_id", mcp.Description("Entity involved")),
		mcp.WithString("description", mcp.Description("Alert description")),
		mcp.WithNumber("risk_score", mcp.Description("Risk score from 0 to 100")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		alertType, err := req.RequireString("alert_type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		severity, err := req.RequireString("severity")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.SendAlert(ctx,
			alertType,
			severity,
			req.GetString("symbol", ""),
			req.GetString("entity_id", ""),
			req.GetString("description", ""),
			req.GetInt("risk_score", 0))), nil
	})

	add(mcp.NewTool("send_case_update",
		mcp.WithDescription("Send a case status update notification."),
		mcp.WithString("case_id", mcp.Required(), mcp.Description("Case ID")),
		mcp.WithString("status", mcp.Required(), mcp.Description("OPEN, INVESTIGATING, ESCALATED or CLOSED")),
		mcp.WithString("update_message", mcp.Description("What changed")),
		mcp.WithString("assigned_to", mcp.Description("Assigned investigator")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		caseID, err := req.RequireString("case_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		status, err := req.RequireString("status")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.SendCaseUpdate(ctx,
			caseID,
			status,
			req.GetString("update_message", ""),
			req.GetString("assigned_to", ""))), nil
	})

	add(mcp.NewTool("send_workflow_complete",
		mcp.WithDescription("Send a workflow completion notification."),
		mcp.WithString("workflow_id", mcp.Required(), mcp.Description("Workflow execution ID")),
		mcp.WithString("workflow_type", mcp.Description("What kind of workflow ran")),
		mcp.WithString("result_summary", mcp.Description("Outcome summary")),
		mcp.WithNumber("alert_count", mcp.Description("Alerts the run generated")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		workflowID, err := req.RequireString("workflow_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.SendWorkflowComplete(ctx,
			workflowID,
			req.GetString("workflow_type", ""),
			req.GetString("result_summary", ""),
			req.GetInt("alert_count", 0))), nil
	})

	add(mcp.NewTool("send_daily_summary",
		mcp.WithDescription("Send the daily surveillance summary digest."),
		mcp.WithString("date", mcp.Required(), mcp.Description("Report date, e.g. 2026-01-12")),
		mcp.WithNumber("total_alerts", mcp.Description("Alerts raised today")),
		mcp.WithNumber("critical_alerts", mcp.Description("Critical severity alerts")),
		mcp.WithNumber("open_cases", mcp.Description("Open investigation cases")),
		mcp.WithNumber("new_cases", mcp.Description("Cases opened today")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := req.RequireString("date")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.SendDailySummary(ctx,
			date,
			req.GetInt("total_alerts", 0),
			req.GetInt("critical_alerts", 0),
			req.GetInt("open_cases", 0),
			req.GetInt("new_cases", 0))), nil
	})
}
