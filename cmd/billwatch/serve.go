// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmreed/billwatch/internal/dashboard"
	"github.com/jmreed/billwatch/pkg/types"
)

const defaultPort = 8090

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the enriched-bill dashboard",
	Long: `Serve presents one run's analysis results as a read-only dashboard:
a filterable bill list, per-bill detail with the redline text and flagged
issues, and issue-type and sponsor histograms. The enriched stream is
reloaded automatically when the analyzer rewrites it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "dashboard listen port (default 8090)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)
	runID, err := resolveRun(cmd, dir)
	if err != nil {
		return err
	}

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = viper.GetInt("port")
	}
	if port == 0 {
		port = defaultPort
	}

	srv := dashboard.NewServer(types.DashboardConfig{Port: port, DataDir: dir}, runID)
	return srv.Start()
}
