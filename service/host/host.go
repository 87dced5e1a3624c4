package host

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
)

// New creates an MCP server for a surveillance tool service. All
// services share the same capability set: tools only, with panic
// recovery so one bad handler cannot take the process down.
func New(name, version, instructions string) *server.MCPServer {
	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	}
	if instructions != "" {
		opts = append(opts, server.WithInstructions(instructions))
	}
	return server.NewMCPServer(name, version, opts...)
}

// Serve runs the server over stdio until the client disconnects.
// Logs must go to stderr; stdout belongs to the protocol.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Instrument wraps a tool handler with the observe middleware so every
// execution is traced, counted and logged under the given metadata.
// A nil middleware returns the handler unchanged.
func Instrument(mw *observe.Middleware, meta observe.ToolMeta, h server.ToolHandlerFunc) server.ToolHandlerFunc {
	if mw == nil {
		return h
	}

	wrapped := mw.Wrap(func(ctx context.Context, _ observe.ToolMeta, input any) (any, error) {
		req, ok := input.(mcp.CallToolRequest)
		if !ok {
			return nil, fmt.Errorf("host: unexpected input type %T", input)
		}
		return h(ctx, req)
	})

	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := wrapped(ctx, meta, req)
		if out == nil {
			return nil, err
		}
		return out.(*mcp.CallToolResult), err
	}
}

// JSONResult marshals v and returns it as a text tool result. Marshal
// failures become error results rather than protocol errors, matching
// how domain failures are reported to the agent.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}
