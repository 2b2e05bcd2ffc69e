// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmreed/billwatch/internal/analyze"
	"github.com/jmreed/billwatch/internal/httputil"
	"github.com/jmreed/billwatch/pkg/types"
)

const defaultModel = "claude-sonnet-4-20250514"

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Flag constitutional issues in converted bills",
	Long: `Analyze sends each converted bill's text to Claude and records the
flagged constitutional issues as an enriched JSONL stream. Each issue is
an {issue, references, explanation} record; a bill the model finds clean
gets an empty list. Unconverted bills are skipped, and per-bill failures
land in the failure log without stopping the batch.

Requires the anthropic-api-key credential in .secrets/.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("model", "", "Claude model to review bills with")
	analyzeCmd.Flags().Duration("delay", 0, "delay between consecutive API calls (default 1s)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)
	runID, err := resolveRun(cmd, dir)
	if err != nil {
		return err
	}

	apiKey := secretDefault("anthropic-api-key", viper.GetString("anthropic_api_key"))
	if apiKey == "" {
		return fmt.Errorf("analyze requires the anthropic-api-key credential in .secrets/")
	}

	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("model")
	}
	if model == "" {
		model = defaultModel
	}
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}

	cfg := types.AnalyzeConfig{
		AIConfig: types.AIConfig{
			Model:  model,
			APIKey: apiKey,
		},
		RequestDelay: delay,
		DataDir:      dir,
	}

	backend := &analyze.ClaudeBackend{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 5 * time.Minute},
	}

	summary, err := analyze.AnalyzeAll(cmd.Context(), backend, cfg, httputil.DefaultPolicy, runID, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		fmt.Printf("%d bill(s) failed analysis; see %s\n",
			summary.Failed, analyze.FailuresPath(dir, runID))
	}
	return nil
}
