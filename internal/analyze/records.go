// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmreed/billwatch/pkg/types"
)

// EnrichedPath returns the enriched JSONL stream location for a run.
func EnrichedPath(dataDir, runID string) string {
	return filepath.Join(dataDir, runID, fmt.Sprintf("bills_enriched_%s.jsonl", runID))
}

// FailuresPath returns the failure log location for a run.
func FailuresPath(dataDir, runID string) string {
	return filepath.Join(dataDir, runID, fmt.Sprintf("analysis_failures_%s.jsonl", runID))
}

// WriteEnriched replaces the enriched stream with one JSON record per line.
// The write goes through a temp file and rename so a killed process never
// leaves a truncated stream for the dashboard.
func WriteEnriched(path string, bills []types.EnrichedBill) error {
	return writeJSONL(path, len(bills), func(enc *json.Encoder, i int) error {
		return enc.Encode(bills[i])
	})
}

// ReadEnriched loads the enriched stream. A missing file yields an empty
// slice rather than an error; the dashboard renders that as an empty state.
func ReadEnriched(path string) ([]types.EnrichedBill, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening enriched stream %s: %w", path, err)
	}
	defer f.Close()

	var bills []types.EnrichedBill
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var b types.EnrichedBill
		if err := json.Unmarshal(scanner.Bytes(), &b); err != nil {
			return nil, fmt.Errorf("parsing enriched stream %s line %d: %w", path, line, err)
		}
		bills = append(bills, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading enriched stream %s: %w", path, err)
	}
	return bills, nil
}

// WriteFailures replaces the failure log with one JSON record per line.
func WriteFailures(path string, failures []types.AnalysisFailure) error {
	return writeJSONL(path, len(failures), func(enc *json.Encoder, i int) error {
		return enc.Encode(failures[i])
	})
}

// ReadFailures loads the failure log. A missing file yields an empty slice.
func ReadFailures(path string) ([]types.AnalysisFailure, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening failure log %s: %w", path, err)
	}
	defer f.Close()

	var failures []types.AnalysisFailure
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec types.AnalysisFailure
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("parsing failure log %s line %d: %w", path, line, err)
		}
		failures = append(failures, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading failure log %s: %w", path, err)
	}
	return failures, nil
}

func writeJSONL(path string, n int, encode func(enc *json.Encoder, i int) error) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	enc := json.NewEncoder(tmpFile)
	for i := 0; i < n; i++ {
		if err := encode(enc, i); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
