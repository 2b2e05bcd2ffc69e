// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jmreed/billwatch/pkg/types"
)

// summaryFile is the per-run collection summary name.
const summaryFile = "collect_summary.yaml"

// Summary records the outcome of one collection run alongside the record
// table, so failed bills can be reconciled without re-reading process output.
type Summary struct {
	Run         string                  `yaml:"run"`
	CollectedAt time.Time               `yaml:"collected_at"`
	Pages       int                     `yaml:"pages"`
	Bills       int                     `yaml:"bills"`
	Failed      []types.AnalysisFailure `yaml:"failed,omitempty"`
}

// SummaryPath returns the summary location for a run.
func SummaryPath(dataDir, runID string) string {
	return filepath.Join(dataDir, runID, summaryFile)
}

// WriteSummary writes the collection summary YAML for a run.
func WriteSummary(dataDir, runID string, result Result, now time.Time) error {
	s := Summary{
		Run:         runID,
		CollectedAt: now.UTC(),
		Pages:       result.Pages,
		Bills:       len(result.Bills),
		Failed:      result.Failed,
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	return os.WriteFile(SummaryPath(dataDir, runID), data, 0o644)
}

// ReadSummary loads a run's collection summary.
func ReadSummary(dataDir, runID string) (*Summary, error) {
	data, err := os.ReadFile(SummaryPath(dataDir, runID))
	if err != nil {
		return nil, err
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary: %w", err)
	}
	return &s, nil
}
