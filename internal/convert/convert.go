// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns bill PDFs into redline-preserving HTML. The
// conversion is two-hop: PDF to DOCX through a pluggable backend (direct
// PDF-to-HTML tooling drops inline style spans), then DOCX to HTML in
// process, mapping strikethrough runs to <s> and underline runs to <u>.
package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmreed/billwatch/pkg/types"
)

// DocxConverter produces a DOCX document from a bill PDF. Backends:
// the hosted ConvertAPI service and a LibreOffice container.
type DocxConverter interface {
	// ToDocx reads the PDF at pdfPath and returns the DOCX bytes.
	ToDocx(ctx context.Context, pdfPath string) ([]byte, error)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of bills processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any bills failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// DocxPath returns the intermediate DOCX location for a bill PDF.
func DocxPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".docx"
}

// HTMLPath returns the converted HTML location for a bill PDF. The HTML
// sits adjacent to the PDF, named from the bill number.
func HTMLPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".html"
}

// ConvertBill converts one bill's PDF to DOCX and then HTML, writing both
// next to the PDF. An existing HTML file short-circuits the conversion so
// re-runs only do new work.
func ConvertBill(ctx context.Context, c DocxConverter, bill types.Bill, w io.Writer) types.ConversionStatus {
	if bill.PDFPath == "" {
		fmt.Fprintf(w, "failed:  %s (no downloaded PDF)\n", bill.Number)
		return types.ConversionFailed
	}

	htmlPath := HTMLPath(bill.PDFPath)
	if _, err := os.Stat(htmlPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", bill.Number)
		return types.ConversionNone
	}

	docxData, err := c.ToDocx(ctx, bill.PDFPath)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", bill.Number, err)
		return types.ConversionFailed
	}

	docxPath := DocxPath(bill.PDFPath)
	if err := os.WriteFile(docxPath, docxData, 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", bill.Number, err)
		return types.ConversionFailed
	}

	html, err := HTMLFromDocx(docxData)
	if err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", bill.Number, err)
		return types.ConversionFailed
	}

	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", bill.Number, err)
		return types.ConversionFailed
	}

	fmt.Fprintf(w, "converted: %s\n", bill.Number)
	return types.ConversionDone
}

// ConvertBatch processes all bills through the converter, printing per-bill
// status to w and returning a summary. Failures skip the bill; they never
// stop the batch.
func ConvertBatch(ctx context.Context, c DocxConverter, bills []types.Bill, w io.Writer) BatchResult {
	var result BatchResult
	for _, b := range bills {
		switch ConvertBill(ctx, c, b, w) {
		case types.ConversionDone:
			result.Converted++
		case types.ConversionNone:
			result.Skipped++
		case types.ConversionFailed:
			result.Failed++
		}
	}
	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
