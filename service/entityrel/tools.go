package entityrel

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "entityrel"

const instructions = "Entity relationship graph tools. Call get_context first to see " +
	"recent identifiers; entity_id and company_symbol arguments accept partial values " +
	"which are resolved against prior calls."

// NewServer builds the MCP server with all entity graph tools
// registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the entity graph tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	add(mcp.NewTool("get_entity",
		mcp.WithDescription("Get an entity by ID. Accepts partial IDs resolved from recent context."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial or empty for the last-seen entity")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entity, err := svc.GetEntity(ctx, req.GetString("entity_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(entity), nil
	})

	add(mcp.NewTool("search_entities",
		mcp.WithDescription("Search entities by name or PAN number substring."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to match against name or PAN")),
		mcp.WithNumber("limit", mcp.Description("Maximum results, default 10")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		entities, err := svc.SearchEntities(ctx, query, req.GetInt("limit", 10))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(entities), nil
	})

	add(mcp.NewTool("get_relationships",
		mcp.WithDescription("Get all outgoing relationships of an entity."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rels, err := svc.GetRelationships(ctx, req.GetString("entity_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(rels), nil
	})

	add(mcp.NewTool("get_connected_entities",
		mcp.WithDescription("Find entities connected to an entity within a hop limit."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
		mcp.WithNumber("max_hops", mcp.Description("Maximum path length, default 2")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		conns, err := svc.GetConnectedEntities(ctx, req.GetString("entity_id", ""), req.GetInt("max_hops", 2))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(conns), nil
	})

	add(mcp.NewTool("check_insider_status",
		mcp.WithDescription("Check whether an entity is a registered insider of a company."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		status, err := svc.CheckInsiderStatus(ctx,
			req.GetString("entity_id", ""), req.GetString("company_symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(status), nil
	})

	add(mcp.NewTool("get_company_insiders",
		mcp.WithDescription("List all registered insiders of a company."),
		mcp.WithString("company_symbol", mcp.Description("Company symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		insiders, err := svc.GetCompanyInsiders(ctx, req.GetString("company_symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(insiders), nil
	})

	add(mcp.NewTool("are_entities_connected",
		mcp.WithDescription("Find the shortest connection path between two entities."),
		mcp.WithString("entity_id_1", mcp.Required(), mcp.Description("First entity ID, may be partial")),
		mcp.WithString("entity_id_2", mcp.Required(), mcp.Description("Second entity ID, may be partial")),
		mcp.WithNumber("max_hops", mcp.Description("Maximum path length, default 4")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		a, err := req.RequireString("entity_id_1")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		b, err := req.RequireString("entity_id_2")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		conn, err := svc.AreEntitiesConnected(ctx, a, b, req.GetInt("max_hops", 4))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(conn), nil
	})

	add(mcp.NewTool("get_family_members",
		mcp.WithDescription("List entities linked to an entity by family relationships."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		members, err := svc.GetFamilyMembers(ctx, req.GetString("entity_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(members), nil
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
