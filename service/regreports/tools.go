package regreports

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "regreports"

const instructions = "Regulatory report tools. Call get_context first; entity, case and " +
	"report identifiers accept partial values which are resolved against prior calls."

// NewServer builds the MCP server with all report tools registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the report generation tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	report := func(rep *Report, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(rep), nil
	}

	add(mcp.NewTool("generate_str",
		mcp.WithDescription("Generate a suspicious transaction report and queue it for submission."),
		mcp.WithString("entity_id", mcp.Description("Subject entity ID, may be partial")),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
		mcp.WithString("case_id", mcp.Description("Originating case ID, may be partial")),
		mcp.WithString("entity_name", mcp.Description("Subject's legal name")),
		mcp.WithString("anomaly_summary", mcp.Description("Summary of the suspicious activity")),
		mcp.WithNumber("risk_score", mcp.Description("Risk score; 70 or above escalates")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateSTR(ctx,
			req.GetString("entity_id", ""),
			req.GetString("company_symbol", ""),
			req.GetString("case_id", ""),
			req.GetString("entity_name", ""),
			req.GetString("anomaly_summary", ""),
			req.GetFloat("risk_score", 0)))
	})

	add(mcp.NewTool("generate_surveillance_report",
		mcp.WithDescription("Generate a periodic surveillance summary report."),
		mcp.WithString("period", mcp.Description("Reporting period, e.g. 2026-W34")),
		mcp.WithString("summary", mcp.Description("Activity summary")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateSurveillanceReport(ctx,
			req.GetString("period", ""), req.GetString("summary", "")))
	})

	add(mcp.NewTool("generate_compliance_scorecard",
		mcp.WithDescription("Generate a per-entity compliance scorecard for a period."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
		mcp.WithString("period", mcp.Description("Reporting period")),
		mcp.WithString("summary", mcp.Description("Compliance findings")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateComplianceScorecard(ctx,
			req.GetString("entity_id", ""),
			req.GetString("period", ""),
			req.GetString("summary", "")))
	})

	add(mcp.NewTool("generate_entity_risk_report",
		mcp.WithDescription("Generate a risk assessment report for an entity."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
		mcp.WithNumber("risk_score", mcp.Description("Assessed risk score")),
		mcp.WithString("summary", mcp.Description("Assessment summary")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateEntityRiskReport(ctx,
			req.GetString("entity_id", ""),
			req.GetString("company_symbol", ""),
			req.GetFloat("risk_score", 0),
			req.GetString("summary", "")))
	})

	add(mcp.NewTool("generate_gsm_report",
		mcp.WithDescription("Generate the graded surveillance measures watchlist for a date."),
		mcp.WithString("date", mcp.Description("Watchlist date, YYYY-MM-DD")),
		mcp.WithString("summary", mcp.Description("Watchlist summary")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateGSMReport(ctx,
			req.GetString("date", ""), req.GetString("summary", "")))
	})

	add(mcp.NewTool("generate_esm_report",
		mcp.WithDescription("Generate the enhanced surveillance measures watchlist for a date."),
		mcp.WithString("date", mcp.Description("Watchlist date, YYYY-MM-DD")),
		mcp.WithString("summary", mcp.Description("Watchlist summary")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateESMReport(ctx,
			req.GetString("date", ""), req.GetString("summary", "")))
	})

	add(mcp.NewTool("generate_investigation_report",
		mcp.WithDescription("Generate the investigation record for a case."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial")),
		mcp.WithString("summary", mcp.Description("Investigation summary")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return report(svc.GenerateInvestigationReport(ctx,
			req.GetString("case_id", ""), req.GetString("summary", "")))
	})

	add(mcp.NewTool("get_report_url",
		mcp.WithDescription("Get the public URL of a stored report by its ID prefix."),
		mcp.WithString("report_id", mcp.Description("Report ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := svc.GetReportURL(req.GetString("report_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(map[string]string{"url": url}), nil
	})

	add(mcp.NewTool("get_pending_strs",
		mcp.WithDescription("List STRs generated but not yet submitted, oldest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum reports to return, 0 for all")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return host.JSONResult(svc.GetPendingSTRs(req.GetInt("limit", 0))), nil
	})

	add(mcp.NewTool("submit_str",
		mcp.WithDescription("Submit a pending STR to the regulator."),
		mcp.WithString("report_id", mcp.Description("Report ID, may be partial or empty for the last-seen report")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sub, err := svc.SubmitSTR(req.GetString("report_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(sub), nil
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
