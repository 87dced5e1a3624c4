package host

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
)

const contextToolDescription = "IMPORTANT: Call this FIRST. Returns recent query history " +
	"and last-seen identifiers so partial references can be resolved against prior calls."

// ContextTool builds the get_context tool for a cache-bearing service.
// The handler returns the cache snapshot as JSON: the ordered history
// plus the last-seen value per identifier kind.
func ContextTool(cache *refcontext.Context) (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("get_context",
		mcp.WithDescription(contextToolDescription),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return JSONResult(cache.Snapshot()), nil
	}

	return tool, handler
}

// RegisterContextTool adds the get_context tool to the server,
// instrumented under the service's name.
func RegisterContextTool(s *server.MCPServer, svc string, cache *refcontext.Context, mw *observe.Middleware) {
	tool, handler := ContextTool(cache)
	meta := observe.ToolMeta{Service: svc, Name: "get_context"}
	s.AddTool(tool, Instrument(mw, meta, handler))
}
