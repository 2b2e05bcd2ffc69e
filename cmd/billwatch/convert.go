// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmreed/billwatch/internal/collect"
	"github.com/jmreed/billwatch/internal/container"
	"github.com/jmreed/billwatch/internal/convert"
	"github.com/jmreed/billwatch/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert downloaded bill PDFs to redline HTML",
	Long: `Convert turns each collected bill PDF into HTML that preserves the
legislature's redline markup: struck text renders as <s>, underlined
insertions as <u>. Conversion goes through an intermediate DOCX produced
either by the hosted ConvertAPI service (requires the convertapi-secret
credential) or a local LibreOffice container.

Bills that already have HTML are skipped, so re-runs only do new work.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("backend", "", "conversion backend: convertapi or soffice (default convertapi)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)
	runID, err := resolveRun(cmd, dir)
	if err != nil {
		return err
	}

	bills, err := collect.ReadRecords(collect.RecordsPath(dir, runID))
	if err != nil {
		return err
	}

	converter, err := converterFromFlags(cmd)
	if err != nil {
		return err
	}

	result := convert.ConvertBatch(cmd.Context(), converter, bills, os.Stdout)
	if result.HasFailures() {
		fmt.Printf("%d bill(s) failed conversion; re-run convert after fixing them\n", result.Failed)
	}
	return nil
}

func converterFromFlags(cmd *cobra.Command) (convert.DocxConverter, error) {
	backend, _ := cmd.Flags().GetString("backend")
	if backend == "" {
		backend = viper.GetString("convert_backend")
	}
	if backend == "" {
		backend = string(types.BackendConvertAPI)
	}

	cfg := types.ConvertConfig{
		Backend:   types.ConversionBackend(backend),
		APISecret: secretDefault("convertapi-secret", viper.GetString("convertapi_secret")),
		DataDir:   dataDir(cmd),
	}

	switch cfg.Backend {
	case types.BackendConvertAPI:
		if cfg.APISecret == "" {
			return nil, fmt.Errorf("convertapi backend requires the convertapi-secret credential in .secrets/")
		}
		return &convert.ConvertAPIConverter{
			Secret: cfg.APISecret,
			Client: &http.Client{Timeout: defaultTimeout},
		}, nil
	case types.BackendSoffice:
		rt, err := container.DetectRuntime()
		if err != nil {
			return nil, err
		}
		return convert.NewSofficeConverter(rt)
	default:
		return nil, fmt.Errorf("unsupported backend %q: use convertapi or soffice", cfg.Backend)
	}
}
