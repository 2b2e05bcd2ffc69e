// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package run resolves and persists the run identifier that partitions one
// pipeline execution's artifacts. The collector writes the marker file; all
// later stages read it unless an explicit override is supplied.
package run

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// markerFile is the well-known marker location under the data directory.
const markerFile = ".run"

// layout is the date format of generated run identifiers, e.g. "04_30_2026".
const layout = "01_02_2006"

// New returns a fresh run identifier for the given time.
func New(now time.Time) string {
	return now.Format(layout)
}

// MarkerPath returns the marker file path under dataDir.
func MarkerPath(dataDir string) string {
	return filepath.Join(dataDir, markerFile)
}

// Dir returns the artifact directory for a run.
func Dir(dataDir, run string) string {
	return filepath.Join(dataDir, run)
}

// Resolve returns the active run identifier. Priority: the explicit override
// (flag or environment, already merged by the caller), then the marker file.
// An unresolvable run is a setup error for the calling stage.
func Resolve(dataDir, override string) (string, error) {
	if v := strings.TrimSpace(override); v != "" {
		return v, nil
	}

	data, err := os.ReadFile(MarkerPath(dataDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("no run identifier: set --run (or BILLWATCH_RUN) or run collect first, which writes %s", MarkerPath(dataDir))
		}
		return "", fmt.Errorf("reading run marker %s: %w", MarkerPath(dataDir), err)
	}

	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", fmt.Errorf("run marker %s is empty: set --run or re-run collect", MarkerPath(dataDir))
	}
	return v, nil
}

// Save persists the run identifier to the marker file so later stages can
// discover it. Only the collector calls this.
func Save(dataDir, value string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}
	if err := os.WriteFile(MarkerPath(dataDir), []byte(value+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing run marker: %w", err)
	}
	return nil
}
