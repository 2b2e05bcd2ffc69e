// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmreed/billwatch/pkg/types"
)

// columns is the fixed column order of the primary record table.
var columns = []string{
	"bill_number", "bill_title", "bill_status",
	"detail_link", "pdf_url", "sponsor", "local_pdf_path",
}

// RecordsPath returns the record table location for a run.
func RecordsPath(dataDir, runID string) string {
	return filepath.Join(dataDir, runID, fmt.Sprintf("bills_%s.csv", runID))
}

// WriteRecords writes the primary record table atomically: the rows go to a
// temp file which replaces the target on success, so a killed process never
// leaves a truncated table behind.
func WriteRecords(path string, bills []types.Bill) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".records-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cw := csv.NewWriter(tmpFile)
	if err := cw.Write(columns); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing header: %w", err)
	}
	for _, b := range bills {
		row := []string{b.Number, b.Title, b.Status, b.DetailLink, b.PDFURL, b.Sponsor, b.PDFPath}
		if err := cw.Write(row); err != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("writing row for %s: %w", b.Number, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("flushing records: %w", err)
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

// ReadRecords loads the primary record table written by WriteRecords.
func ReadRecords(path string) ([]types.Bill, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening record table %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading record table %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("record table %s is empty", path)
	}

	header := rows[0]
	if len(header) != len(columns) {
		return nil, fmt.Errorf("record table %s has %d columns, want %d", path, len(header), len(columns))
	}

	bills := make([]types.Bill, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("record table %s row %d has %d fields, want %d", path, i+2, len(row), len(columns))
		}
		bills = append(bills, types.Bill{
			Number:     row[0],
			Title:      row[1],
			Status:     row[2],
			DetailLink: row[3],
			PDFURL:     row[4],
			Sponsor:    row[5],
			PDFPath:    row[6],
		})
	}
	return bills, nil
}
