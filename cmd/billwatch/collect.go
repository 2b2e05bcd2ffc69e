// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmreed/billwatch/internal/collect"
	"github.com/jmreed/billwatch/internal/httputil"
	"github.com/jmreed/billwatch/internal/run"
	"github.com/jmreed/billwatch/pkg/types"
)

const (
	defaultTimeout    = 60 * time.Second
	defaultDelay      = 1 * time.Second
	defaultUserAgent  = "billwatch/0.1"
	defaultBaseURL    = "https://legislature.idaho.gov"
	defaultListingURL = "https://legislature.idaho.gov/sessioninfo/2026/legislation/"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Scrape the bill listing and download bill PDFs",
	Long: `Collect walks the paginated legislature bill listing, recovers each
bill's sponsor from its detail page, downloads bill PDFs, and writes the
record table and collection summary for a new run. Already-downloaded
PDFs are kept; individual bill failures are recorded and collection
continues.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("listing-url", "", "bill listing endpoint (default: current session listing)")
	collectCmd.Flags().String("base-url", "", "legislature site root for relative links")
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	collectCmd.Flags().Duration("delay", 0, "delay between consecutive requests (default 1s)")
	collectCmd.Flags().Int("max-pages", 0, "listing pagination cap (default 50)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := collectConfig(cmd)

	// A fresh run unless the operator pins one explicitly.
	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		runID = viper.GetString("run")
	}
	if runID == "" {
		runID = run.New(time.Now())
	}

	client := &http.Client{Timeout: cfg.Timeout}

	result, err := collect.Collect(cmd.Context(), client, cfg, httputil.DefaultPolicy, runID, os.Stdout)
	if err != nil {
		return err
	}

	if err := collect.WriteRecords(collect.RecordsPath(cfg.DataDir, runID), result.Bills); err != nil {
		return err
	}
	if err := collect.WriteSummary(cfg.DataDir, runID, result, time.Now()); err != nil {
		return err
	}
	if err := run.Save(cfg.DataDir, runID); err != nil {
		return err
	}

	fmt.Printf("Run %s recorded: %d bill(s), %d failed\n", runID, len(result.Bills), len(result.Failed))
	return nil
}

func collectConfig(cmd *cobra.Command) types.CollectConfig {
	listingURL, _ := cmd.Flags().GetString("listing-url")
	if listingURL == "" {
		listingURL = viper.GetString("listing_url")
	}
	if listingURL == "" {
		listingURL = defaultListingURL
	}
	baseURL, _ := cmd.Flags().GetString("base-url")
	if baseURL == "" {
		baseURL = viper.GetString("base_url")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	maxPages, _ := cmd.Flags().GetInt("max-pages")

	return types.CollectConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		BaseURL:      baseURL,
		ListingURL:   listingURL,
		RequestDelay: delay,
		MaxPages:     maxPages,
		DataDir:      dataDir(cmd),
	}
}
