package ticketing

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "ticketing"

const instructions = "Investigation ticketing tools. Call get_context first; case and " +
	"entity identifiers accept partial values which are resolved against prior calls. " +
	"Write tools return a result; success is false with an error string when the " +
	"tracker rejects the request."

// NewServer builds the MCP server with all ticketing tools registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the ticketing tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	add(mcp.NewTool("create_ticket",
		mcp.WithDescription("Create a new tracker ticket. Defaults: priority Medium, type Task."),
		mcp.WithString("summary", mcp.Required(), mcp.Description("Ticket title")),
		mcp.WithString("description", mcp.Description("Ticket description")),
		mcp.WithString("priority", mcp.Description("High, Medium or Low")),
		mcp.WithString("issue_type", mcp.Description("Task, Bug or Story")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, err := req.RequireString("summary")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.CreateTicket(ctx,
			summary,
			req.GetString("description", ""),
			req.GetString("priority", ""),
			req.GetString("issue_type", ""))), nil
	})

	add(mcp.NewTool("create_case_ticket",
		mcp.WithDescription("Create the investigation ticket for a surveillance case."),
		mcp.WithString("case_id", mcp.Description("Case ID, may be partial; empty uses the case last discussed")),
		mcp.WithString("subject_entity", mcp.Description("Entity under investigation, may be partial")),
		mcp.WithString("case_summary", mcp.Required(), mcp.Description("Brief summary of the case")),
		mcp.WithString("priority", mcp.Description("High, Medium or Low")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		caseSummary, err := req.RequireString("case_summary")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.CreateCaseTicket(ctx,
			req.GetString("case_id", ""),
			req.GetString("subject_entity", ""),
			caseSummary,
			req.GetString("priority", ""))), nil
	})

	add(mcp.NewTool("close_ticket",
		mcp.WithDescription("Close a ticket, recording the resolution."),
		mcp.WithString("ticket_key", mcp.Required(), mcp.Description("Ticket key, e.g. SURV-123")),
		mcp.WithString("resolution", mcp.Description("Resolution note, default Done")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("ticket_key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.CloseTicket(ctx, key, req.GetString("resolution", ""))), nil
	})

	add(mcp.NewTool("get_ticket",
		mcp.WithDescription("Get ticket details by key."),
		mcp.WithString("ticket_key", mcp.Required(), mcp.Description("Ticket key, e.g. SURV-123")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("ticket_key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		ticket, err := svc.GetTicket(ctx, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(ticket), nil
	})

	add(mcp.NewTool("add_comment",
		mcp.WithDescription("Add a comment to a ticket."),
		mcp.WithString("ticket_key", mcp.Required(), mcp.Description("Ticket key")),
		mcp.WithString("comment", mcp.Required(), mcp.Description("Comment text")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("ticket_key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		comment, err := req.RequireString("comment")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.AddComment(ctx, key, comment)), nil
	})

	add(mcp.NewTool("update_ticket_status",
		mcp.WithDescription("Move a ticket to a new workflow status."),
		mcp.WithString("ticket_key", mcp.Required(), mcp.Description("Ticket key")),
		mcp.WithString("new_status", mcp.Required(), mcp.Description("To Do, In Progress or Done")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("ticket_key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		status, err := req.RequireString("new_status")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(svc.UpdateTicketStatus(ctx, key, status)), nil
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
