package anomaly

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "anomaly"

const instructions = "Anomaly detection tools. Call get_context first; entity_id and " +
	"symbol arguments accept partial values which are resolved against prior calls."

// NewServer builds the MCP server with all detection tools registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the detection tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	add(mcp.NewTool("get_quote",
		mcp.WithDescription("Get the live quote for a symbol including day change percent."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial or empty for the last-seen symbol")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		quote, err := svc.GetQuote(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(quote), nil
	})

	add(mcp.NewTool("get_rsi",
		mcp.WithDescription("Get the one hour RSI reading for a symbol."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		level, err := svc.GetRSI(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(level), nil
	})

	add(mcp.NewTool("detect_spoofing",
		mcp.WithDescription("Check an entity's order against spoofing patterns (large order, thin volume)."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
		mcp.WithString("order_details", mcp.Description("Free-form order description")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.DetectSpoofing(ctx,
			req.GetString("entity_id", ""),
			req.GetString("symbol", ""),
			req.GetString("order_details", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(result), nil
	})

	add(mcp.NewTool("detect_wash_trading",
		mcp.WithDescription("Check whether both sides of a trade resolve to the same entity."),
		mcp.WithString("entity_id", mcp.Description("Buying entity ID, may be partial")),
		mcp.WithString("counterparty_id", mcp.Description("Selling entity ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.DetectWashTrading(ctx,
			req.GetString("entity_id", ""),
			req.GetString("counterparty_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(result), nil
	})

	add(mcp.NewTool("detect_pump_dump",
		mcp.WithDescription("Check a symbol for pump and dump price movement."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.DetectPumpDump(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(result), nil
	})

	add(mcp.NewTool("detect_front_running",
		mcp.WithDescription("Check whether a proprietary order ran ahead of a client order."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
		mcp.WithNumber("prop_timestamp", mcp.Required(), mcp.Description("Proprietary order timestamp in ms")),
		mcp.WithNumber("client_timestamp", mcp.Required(), mcp.Description("Client order timestamp in ms")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.DetectFrontRunning(ctx,
			req.GetString("entity_id", ""),
			req.GetString("symbol", ""),
			int64(req.GetInt("prop_timestamp", 0)),
			int64(req.GetInt("client_timestamp", 0)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(result), nil
	})

	add(mcp.NewTool("analyze_volume_anomaly",
		mcp.WithDescription("Check a symbol for unusually heavy market-wide volume."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := svc.AnalyzeVolumeAnomaly(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(result), nil
	})

	add(mcp.NewTool("check_rsi_levels",
		mcp.WithDescription("Band a symbol's RSI into OVERBOUGHT, OVERSOLD or NEUTRAL."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		level, err := svc.CheckRSILevels(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(level), nil
	})

	add(mcp.NewTool("scan_entity_anomalies",
		mcp.WithDescription("Sweep an entity across the detection rules."),
		mcp.WithString("entity_id", mcp.Description("Entity ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		results, err := svc.ScanEntityAnomalies(ctx, req.GetString("entity_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(results), nil
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
