// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the billwatch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmreed/billwatch/internal/run"
	"github.com/jmreed/billwatch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the billwatch CLI.
var rootCmd = &cobra.Command{
	Use:   "billwatch",
	Short: "Legislative bill collection and constitutional review pipeline",
	Long: `billwatch tracks bills through a four-stage pipeline: collect scrapes
the legislature site for bill metadata and PDFs, convert turns each PDF
into redline-preserving HTML, analyze asks Claude to flag constitutional
issues, and serve presents the enriched results as a dashboard.

Stages hand off through files under the data directory, keyed by a run
identifier; each stage can be re-run independently. The index subcommand
maintains a searchable archive across runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./billwatch.yaml or ~/.config/billwatch/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base directory for pipeline artifacts")
	rootCmd.PersistentFlags().String("run", "", "run identifier (default: data/.run marker, or BILLWATCH_RUN)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("billwatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "billwatch"))
		}
	}

	viper.SetEnvPrefix("BILLWATCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// dataDir returns the artifact base directory from the flag or config.
func dataDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("data-dir")
	if dir == "" || dir == "data" {
		if v := viper.GetString("data_dir"); v != "" {
			dir = v
		}
	}
	if dir == "" {
		dir = "data"
	}
	return dir
}

// resolveRun returns the active run identifier: the --run flag, then the
// BILLWATCH_RUN environment (through viper), then the marker file written
// by collect.
func resolveRun(cmd *cobra.Command, dir string) (string, error) {
	override, _ := cmd.Flags().GetString("run")
	if override == "" {
		override = viper.GetString("run")
	}
	return run.Resolve(dir, override)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
