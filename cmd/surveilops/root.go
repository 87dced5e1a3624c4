package main

import "github.com/spf13/cobra"

// version is overridden at build time via -ldflags.
var version = "0.1.0"

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "surveilops",
		Short: "Market surveillance tool platform",
		Long: "surveilops runs the surveillance tool services (entity relationships, trade data,\n" +
			"anomaly detection, regulatory reports, case management, UPSI compliance and chat\n" +
			"notifications) as MCP servers over stdio, plus the dashboard HTTP gateway.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "surveilops.yaml", "path to the configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newDashboardCmd(&configPath),
	)
	return root
}
