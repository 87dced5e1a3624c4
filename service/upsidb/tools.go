package upsidb

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "upsidb"

const instructions = "UPSI compliance store tools. Call get_context first; UPSI IDs, " +
	"company symbols and person IDs accept partial values which are resolved against prior calls."

// NewServer builds the MCP server with all UPSI tools registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the UPSI compliance tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	result := func(v any, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(v), nil
	}

	add(mcp.NewTool("get_upsi",
		mcp.WithDescription("Get one UPSI record by ID."),
		mcp.WithString("upsi_id", mcp.Description("UPSI record ID, may be partial or empty for the last-seen record")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.GetUPSI(ctx, req.GetString("upsi_id", "")))
	})

	add(mcp.NewTool("get_active_upsi",
		mcp.WithDescription("List a company's still-unpublished UPSI records."),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.GetActiveUPSI(ctx, req.GetString("company_symbol", "")))
	})

	add(mcp.NewTool("log_upsi_access",
		mcp.WithDescription("Record that a person accessed a UPSI record."),
		mcp.WithString("upsi_id", mcp.Description("UPSI record ID, may be partial")),
		mcp.WithString("entity_id", mcp.Required(), mcp.Description("Who accessed it")),
		mcp.WithString("accessor_name", mcp.Description("Accessor's name")),
		mcp.WithString("designation", mcp.Description("Accessor's designation")),
		mcp.WithString("reason", mcp.Description("Why the record was accessed")),
		mcp.WithString("mode", mcp.Description("VIEW, DOWNLOAD or SHARE, defaults to VIEW")),
		mcp.WithNumber("timestamp", mcp.Description("Access time in epoch milliseconds, defaults to now")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entityID, err := req.RequireString("entity_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return result(svc.LogUPSIAccess(ctx,
			req.GetString("upsi_id", ""),
			entityID,
			req.GetString("accessor_name", ""),
			req.GetString("designation", ""),
			req.GetString("reason", ""),
			req.GetString("mode", ""),
			int64(req.GetFloat("timestamp", 0))))
	})

	add(mcp.NewTool("get_upsi_access_log",
		mcp.WithDescription("List who accessed a UPSI record, optionally within a time range."),
		mcp.WithString("upsi_id", mcp.Description("UPSI record ID, may be partial")),
		mcp.WithNumber("from_timestamp", mcp.Description("Inclusive lower bound in epoch milliseconds")),
		mcp.WithNumber("to_timestamp", mcp.Description("Inclusive upper bound in epoch milliseconds")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.GetUPSIAccessLog(ctx,
			req.GetString("upsi_id", ""),
			int64(req.GetFloat("from_timestamp", 0)),
			int64(req.GetFloat("to_timestamp", 0))))
	})

	add(mcp.NewTool("get_upsi_accessors",
		mcp.WithDescription("List everyone who ever accessed a UPSI record."),
		mcp.WithString("upsi_id", mcp.Description("UPSI record ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.GetUPSIAccessors(ctx, req.GetString("upsi_id", "")))
	})

	add(mcp.NewTool("get_access_by_person",
		mcp.WithDescription("List a person's UPSI accesses over a recent window."),
		mcp.WithString("entity_id", mcp.Description("Person ID, may be partial")),
		mcp.WithNumber("days_back", mcp.Description("Lookback window in days, defaults to 30")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.GetAccessByPerson(ctx,
			req.GetString("entity_id", ""),
			req.GetInt("days_back", defaultDaysBack)))
	})

	add(mcp.NewTool("check_upsi_access_before",
		mcp.WithDescription("Check whether a person accessed a company's UPSI before a trade timestamp."),
		mcp.WithString("entity_id", mcp.Description("Person ID, may be partial")),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
		mcp.WithNumber("before_timestamp", mcp.Required(), mcp.Description("Trade time in epoch milliseconds")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.CheckUPSIAccessBefore(ctx,
			req.GetString("entity_id", ""),
			req.GetString("company_symbol", ""),
			int64(req.GetFloat("before_timestamp", 0))))
	})

	add(mcp.NewTool("get_trading_window",
		mcp.WithDescription("Get a company's current trading window state."),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.GetTradingWindow(ctx, req.GetString("company_symbol", "")))
	})

	add(mcp.NewTool("check_window_violation",
		mcp.WithDescription("Check whether a trade executed while the company's trading window was closed."),
		mcp.WithString("entity_id", mcp.Description("Trading entity, may be partial")),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
		mcp.WithNumber("trade_timestamp", mcp.Required(), mcp.Description("Trade time in epoch milliseconds")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return result(svc.CheckWindowViolation(ctx,
			req.GetString("entity_id", ""),
			req.GetString("company_symbol", ""),
			int64(req.GetFloat("trade_timestamp", 0))))
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
