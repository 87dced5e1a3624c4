package casemgmt

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "casemgmt"

const instructions = "Case management tools. Call get_context first; case, entity and " +
	"UPSI identifiers accept partial values which are resolved against prior calls."

// NewServer builds the MCP server with all case tools registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the case management tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	caseResult := func(c *Case, err error) (*mcp.CallToolResult, error) {
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(c), nil
	}

	add(mcp.NewTool("create_case",
		mcp.WithDescription("Open a new surveillance case against an entity."),
		mcp.WithString("case_type", mcp.Required(), mcp.Description("e.g. SPOOFING, INSIDER_TRADING")),
		mcp.WithString("priority", mcp.Description("CRITICAL, HIGH or MEDIUM")),
		mcp.WithString("entity_id", mcp.Description("Subject entity ID, may be partial")),
		mcp.WithString("symbol", mcp.Description("Related symbol")),
		mcp.WithString("upsi_id", mcp.Description("Related UPSI record ID, may be partial")),
		mcp.WithString("summary", mcp.Description("What the case is about")),
		mcp.WithNumber("risk_score", mcp.Description("Initial risk score")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		caseType, err := req.RequireString("case_type")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return caseResult(svc.CreateCase(ctx,
			caseType,
			req.GetString("priority", "MEDIUM"),
			req.GetString("entity_id", ""),
			req.GetString("symbol", ""),
			req.GetString("upsi_id", ""),
			req.GetString("summary", ""),
			req.GetFloat("risk_score", 0)))
	})

	add(mcp.NewTool("get_case",
		mcp.WithDescription("Get a case by ID."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial or empty for the last-seen case")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return caseResult(svc.GetCase(ctx, req.GetString("case_id", "")))
	})

	add(mcp.NewTool("update_case_status",
		mcp.WithDescription("Move a case to OPEN, INVESTIGATING, ESCALATED or CLOSED."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial")),
		mcp.WithString("status", mcp.Required(), mcp.Description("New status")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, err := req.RequireString("status")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return caseResult(svc.UpdateCaseStatus(ctx, req.GetString("case_id", ""), status))
	})

	add(mcp.NewTool("assign_case",
		mcp.WithDescription("Assign a case to an analyst."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial")),
		mcp.WithString("analyst", mcp.Required(), mcp.Description("Analyst identifier")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		analyst, err := req.RequireString("analyst")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return caseResult(svc.AssignCase(ctx, req.GetString("case_id", ""), analyst))
	})

	add(mcp.NewTool("add_evidence",
		mcp.WithDescription("Attach evidence to a case timeline."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial")),
		mcp.WithString("detail", mcp.Required(), mcp.Description("Evidence description")),
		mcp.WithString("added_by", mcp.Description("Who supplied it")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		detail, err := req.RequireString("detail")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entry, err := svc.AddEvidence(ctx, req.GetString("case_id", ""), detail, req.GetString("added_by", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(entry), nil
	})

	add(mcp.NewTool("add_note",
		mcp.WithDescription("Add an analyst note to a case timeline."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial")),
		mcp.WithString("detail", mcp.Required(), mcp.Description("Note text")),
		mcp.WithString("added_by", mcp.Description("Author")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		detail, err := req.RequireString("detail")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entry, err := svc.AddNote(ctx, req.GetString("case_id", ""), detail, req.GetString("added_by", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(entry), nil
	})

	add(mcp.NewTool("get_case_timeline",
		mcp.WithDescription("Get the full event history of a case."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		timeline, err := svc.GetCaseTimeline(ctx, req.GetString("case_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(timeline), nil
	})

	add(mcp.NewTool("list_open_cases",
		mcp.WithDescription("List non-closed cases, most urgent first."),
		mcp.WithString("priority", mcp.Description("Filter by priority, or ALL")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return host.JSONResult(svc.ListOpenCases(ctx, req.GetString("priority", "ALL"))), nil
	})

	add(mcp.NewTool("get_entity_cases",
		mcp.WithDescription("List every case against an entity."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return host.JSONResult(svc.GetEntityCases(ctx, req.GetString("entity_id", ""))), nil
	})

	add(mcp.NewTool("get_case_stats",
		mcp.WithDescription("Aggregate case counts by status and priority."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return host.JSONResult(svc.GetCaseStats(ctx)), nil
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
