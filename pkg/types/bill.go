// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionStatus indicates the state of PDF-to-HTML conversion for a bill.
type ConversionStatus string

const (
	ConversionNone   ConversionStatus = "none"
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// Bill holds the metadata and file paths collected for one legislative bill.
// These fields make up the primary record table written by the collector.
type Bill struct {
	// Number is the bill number (e.g. "H0001"), unique within a run.
	Number string `json:"bill_number" yaml:"bill_number"`

	// Title is the short bill title from the listing page.
	Title string `json:"bill_title" yaml:"bill_title"`

	// Status is the status code from the listing page.
	Status string `json:"bill_status" yaml:"bill_status"`

	// DetailLink is the relative URL of the bill's detail page.
	DetailLink string `json:"detail_link" yaml:"detail_link"`

	// PDFURL is the absolute URL of the bill text PDF.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Sponsor is the sponsor name recovered from the detail page.
	// Empty when the detail fetch failed or the field was absent.
	Sponsor string `json:"sponsor" yaml:"sponsor"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	// Empty when the download failed.
	PDFPath string `json:"local_pdf_path" yaml:"local_pdf_path"`
}

// Issue is one potential constitutional issue flagged by the AI backend.
// The content is opaque natural language; only structural presence is
// validated.
type Issue struct {
	// Issue is a short free-text summary of the potential conflict.
	Issue string `json:"issue" yaml:"issue"`

	// References lists the constitutional provisions cited, free text.
	References string `json:"references" yaml:"references"`

	// Explanation expands on why the bill text may conflict.
	Explanation string `json:"explanation" yaml:"explanation"`
}

// EnrichedBill is a Bill augmented with analysis output. One enriched bill
// per line in the enriched JSONL stream.
type EnrichedBill struct {
	Bill `yaml:",inline"`

	// HTMLPath is the local path to the converted bill HTML.
	HTMLPath string `json:"local_html_path" yaml:"local_html_path"`

	// Issues is the ordered issue list returned by the AI backend.
	Issues []Issue `json:"json_data" yaml:"json_data"`

	// IssueCount is len(Issues), stored for downstream aggregation.
	IssueCount int `json:"issue_count" yaml:"issue_count"`
}

// AnalysisFailure records a bill excluded from the enriched stream. One
// failure per line in the failure JSONL log; a bill never appears in both.
type AnalysisFailure struct {
	BillNumber string `json:"bill_number" yaml:"bill_number"`
	Reason     string `json:"reason" yaml:"reason"`
}
