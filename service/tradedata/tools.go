package tradedata

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/service/host"
)

const serviceName = "tradedata"

const instructions = "Trade data tools. Call get_context first; symbol and account_id " +
	"arguments accept partial values which are resolved against prior calls."

// NewServer builds the MCP server with all trade data tools registered.
func NewServer(version string, svc *Service, mw *observe.Middleware) *server.MCPServer {
	s := host.New(serviceName, version, instructions)
	RegisterTools(s, svc, mw)
	return s
}

// RegisterTools adds the trade tape tools plus get_context.
func RegisterTools(s *server.MCPServer, svc *Service, mw *observe.Middleware) {
	add := func(tool mcp.Tool, h server.ToolHandlerFunc) {
		meta := observe.ToolMeta{Service: serviceName, Name: tool.Name}
		s.AddTool(tool, host.Instrument(mw, meta, h))
	}

	add(mcp.NewTool("get_trade",
		mcp.WithDescription("Get one trade by its composite trade ID (symbol_timestamp_account)."),
		mcp.WithString("trade_id", mcp.Required(), mcp.Description("Trade ID; the symbol segment may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("trade_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		trade, err := svc.GetTrade(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(trade), nil
	})

	add(mcp.NewTool("get_trades_by_symbol",
		mcp.WithDescription("Get recent trades for a symbol."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial or empty for the last-seen symbol")),
		mcp.WithNumber("limit", mcp.Description("Maximum trades, default 10")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		trades, err := svc.GetTradesBySymbol(ctx, req.GetString("symbol", ""), req.GetInt("limit", 10))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(trades), nil
	})

	add(mcp.NewTool("get_trades_by_account",
		mcp.WithDescription("Get an account's recent trades across the default symbol set."),
		mcp.WithString("account_id", mcp.Description("Account ID, may be partial")),
		mcp.WithNumber("limit", mcp.Description("Maximum trades, default 30")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		trades, err := svc.GetTradesByAccount(ctx, req.GetString("account_id", ""), req.GetInt("limit", 30))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(trades), nil
	})

	add(mcp.NewTool("get_trades_by_accounts",
		mcp.WithDescription("Get trades for several accounts at once."),
		mcp.WithString("account_ids", mcp.Required(), mcp.Description("Comma separated account IDs")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		accounts, err := req.RequireString("account_ids")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		trades, err := svc.GetTradesByAccounts(ctx, accounts)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(trades), nil
	})

	add(mcp.NewTool("analyze_volume",
		mcp.WithDescription("Aggregate volume, price range and account concentration for a symbol."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		analysis, err := svc.AnalyzeVolume(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(analysis), nil
	})

	add(mcp.NewTool("detect_volume_anomaly",
		mcp.WithDescription("Compare current volume to the 30 day baseline for a symbol."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		anomaly, err := svc.DetectVolumeAnomaly(ctx, req.GetString("symbol", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(anomaly), nil
	})

	add(mcp.NewTool("get_top_traders",
		mcp.WithDescription("Rank accounts trading a symbol by total volume."),
		mcp.WithString("symbol", mcp.Description("Symbol, may be partial")),
		mcp.WithNumber("limit", mcp.Description("Maximum accounts, default 10")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		traders, err := svc.GetTopTraders(ctx, req.GetString("symbol", ""), req.GetInt("limit", 10))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(traders), nil
	})

	add(mcp.NewTool("get_large_orders",
		mcp.WithDescription("Find trades at or above a value threshold across the scanned symbols."),
		mcp.WithNumber("min_value", mcp.Description("Minimum trade value, default 1000000")),
		mcp.WithString("symbol", mcp.Description("Extra symbol to scan, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		minValue := req.GetInt("min_value", 1000000)
		trades, err := svc.GetLargeOrders(ctx, req.GetString("symbol", ""), uint64(minValue))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(trades), nil
	})

	add(mcp.NewTool("get_account_profile",
		mcp.WithDescription("Summarize an account's activity across the profile symbols."),
		mcp.WithString("account_id", mcp.Description("Account ID, may be partial")),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profile, err := svc.GetAccountProfile(ctx, req.GetString("account_id", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return host.JSONResult(profile), nil
	})

	host.RegisterContextTool(s, serviceName, svc.Cache(), mw)
}
