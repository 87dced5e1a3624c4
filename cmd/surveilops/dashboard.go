package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/surveilops/surveilops/dashboard"
	"github.com/surveilops/surveilops/health"
	"github.com/surveilops/surveilops/observe"
)

// upstreamHealth registers a reachability probe for every configured
// service backend. The gateway is the one process that sees the whole
// config, so /readyz reflects the platform's external dependencies.
func upstreamHealth(cfg *appConfig) *health.Aggregator {
	agg := health.NewAggregator()
	probes := map[string]string{
		"market_data":      cfg.TradeData.BaseURL,
		"quote_api":        cfg.Anomaly.MarketBaseURL,
		"report_storage":   cfg.RegReports.StorageURL,
		"compliance_store": cfg.UPSIDB.StoreURL,
		"ticket_tracker":   cfg.Ticketing.BaseURL,
	}
	for name, url := range probes {
		if url != "" {
			agg.Register(name, health.NewUpstreamChecker(name, nil, url))
		}
	}
	return agg
}

func newDashboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Run the dashboard HTTP gateway",
		Long: "Serves the surveillance dashboard API: alert and case ingest from the tool\n" +
			"services, live stats, and health probes. Everything under /api requires a JWT\n" +
			"bearer token or a registered API key.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(ctx, *configPath)
			if err != nil {
				return err
			}

			obs, err := observe.NewObserver(ctx, cfg.Observe.observeConfig("surveilops-dashboard"))
			if err != nil {
				return err
			}
			defer obs.Shutdown(context.Background())
			logger := obs.Logger()

			auths, err := cfg.Dashboard.authenticators()
			if err != nil {
				return err
			}

			srv := dashboard.NewServer(
				dashboard.NewStore(),
				dashboard.NewContextAggregator(nil),
				upstreamHealth(cfg),
				auths,
				logger,
			)

			addr := cfg.Dashboard.ListenAddr
			if addr == "" {
				addr = ":8080"
			}
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- httpSrv.ListenAndServe() }()
			logger.Info(ctx, "dashboard listening", observe.Field{Key: "addr", Value: addr})

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info(context.Background(), "dashboard stopped")
			return nil
		},
	}
}
