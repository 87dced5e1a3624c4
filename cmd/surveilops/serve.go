package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/surveilops/surveilops/dashboard"
	"github.com/surveilops/surveilops/observe"
	"github.com/surveilops/surveilops/refcontext"
	"github.com/surveilops/surveilops/service/anomaly"
	"github.com/surveilops/surveilops/service/casemgmt"
	"github.com/surveilops/surveilops/service/entityrel"
	"github.com/surveilops/surveilops/service/host"
	"github.com/surveilops/surveilops/service/notify"
	"github.com/surveilops/surveilops/service/regreports"
	"github.com/surveilops/surveilops/service/ticketing"
	"github.com/surveilops/surveilops/service/tradedata"
	"github.com/surveilops/surveilops/service/upsidb"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve <service>",
		Short: "Run one tool service over stdio",
		Long: "Runs a single surveillance tool service as an MCP server on stdin/stdout.\n" +
			"Services: entityrel, tradedata, anomaly, regreports, casemgmt, upsidb,\n" +
			"ticketing, notify.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}

			obs, err := observe.NewObserver(ctx, cfg.Observe.observeConfig("surveilops-"+name))
			if err != nil {
				return err
			}
			defer obs.Shutdown(context.Background())

			srv, err := buildServer(cfg, name, obs)
			if err != nil {
				return err
			}
			return host.Serve(srv)
		},
	}
}

func buildServer(cfg *appConfig, name string, obs observe.Observer) (*server.MCPServer, error) {
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}
	logger := obs.Logger()

	var hook refcontext.Hook
	if name != "notify" {
		monitor, err := observe.MonitorFromObserver(name, obs)
		if err != nil {
			return nil, err
		}
		hook = monitor.Hook()
	}

	switch name {
	case "entityrel":
		if err := cfg.EntityRel.Validate(); err != nil {
			return nil, err
		}
		svc, err := entityrel.NewService(entityrel.NewGraphClient(cfg.EntityRel), hook)
		if err != nil {
			return nil, err
		}
		return entityrel.NewServer(version, svc, mw), nil

	case "tradedata":
		if err := cfg.TradeData.Validate(); err != nil {
			return nil, err
		}
		svc, err := tradedata.NewService(tradedata.NewQuoteClient(cfg.TradeData), hook)
		if err != nil {
			return nil, err
		}
		return tradedata.NewServer(version, svc, mw), nil

	case "anomaly":
		if err := cfg.Anomaly.Validate(); err != nil {
			return nil, err
		}
		dash := dashboard.NewClient(cfg.Anomaly.DashboardURL, cfg.Anomaly.DashboardAPIKey)
		svc, err := anomaly.NewService(anomaly.NewMarketClient(cfg.Anomaly), dash, logger, hook)
		if err != nil {
			return nil, err
		}
		return anomaly.NewServer(version, svc, mw), nil

	case "regreports":
		if err := cfg.RegReports.Validate(); err != nil {
			return nil, err
		}
		svc, err := regreports.NewService(regreports.NewStorageClient(cfg.RegReports), hook)
		if err != nil {
			return nil, err
		}
		return regreports.NewServer(version, svc, mw), nil

	case "casemgmt":
		dash := dashboard.NewClient(cfg.CaseMgmt.DashboardURL, cfg.CaseMgmt.DashboardAPIKey)
		svc, err := casemgmt.NewService(dash, logger, hook)
		if err != nil {
			return nil, err
		}
		return casemgmt.NewServer(version, svc, mw), nil

	case "upsidb":
		svc, err := upsidb.NewService(cfg.UPSIDB, logger, hook)
		if err != nil {
			return nil, err
		}
		return upsidb.NewServer(version, svc, mw), nil

	case "ticketing":
		svc, err := ticketing.NewService(cfg.Ticketing, logger, hook)
		if err != nil {
			return nil, err
		}
		return ticketing.NewServer(version, svc, mw), nil

	case "notify":
		return notify.NewServer(version, notify.NewService(cfg.Notify, logger), mw), nil

	default:
		return nil, fmt.Errorf("unknown service %q", name)
	}
}
