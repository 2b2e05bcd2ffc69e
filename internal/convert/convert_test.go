// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmreed/billwatch/pkg/types"
)

// fakeDocxConverter implements DocxConverter for testing. It returns canned
// DOCX bytes or an error, depending on configuration.
type fakeDocxConverter struct {
	docx []byte
	err  error
}

func (f *fakeDocxConverter) ToDocx(ctx context.Context, pdfPath string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docx, nil
}

// setupBill creates a temporary bill PDF and returns the bill record.
func setupBill(t *testing.T) types.Bill {
	t.Helper()
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "H0001.pdf")
	if err := os.WriteFile(pdfPath, []byte("fake pdf"), 0o644); err != nil {
		t.Fatal(err)
	}
	return types.Bill{Number: "H0001", PDFPath: pdfPath}
}

func TestConvertBill(t *testing.T) {
	goodDocx := func(t *testing.T) []byte {
		return buildDocx(t, para(run("<w:strike/>", "repealed"), run(`<w:u w:val="single"/>`, "enacted")))
	}

	tests := []struct {
		name       string
		converter  func(t *testing.T) DocxConverter
		preCreate  bool // create output HTML before running
		wantStatus types.ConversionStatus
		wantLog    string
	}{
		{
			name: "successful conversion",
			converter: func(t *testing.T) DocxConverter {
				return &fakeDocxConverter{docx: goodDocx(t)}
			},
			wantStatus: types.ConversionDone,
			wantLog:    "converted:",
		},
		{
			name: "skip existing html",
			converter: func(t *testing.T) DocxConverter {
				return &fakeDocxConverter{err: errors.New("should not be called")}
			},
			preCreate:  true,
			wantStatus: types.ConversionNone,
			wantLog:    "skipped:",
		},
		{
			name: "backend failure",
			converter: func(t *testing.T) DocxConverter {
				return &fakeDocxConverter{err: errors.New("container crashed")}
			},
			wantStatus: types.ConversionFailed,
			wantLog:    "failed:",
		},
		{
			name: "malformed docx",
			converter: func(t *testing.T) DocxConverter {
				return &fakeDocxConverter{docx: []byte("garbage")}
			},
			wantStatus: types.ConversionFailed,
			wantLog:    "failed:",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := setupBill(t)
			if tt.preCreate {
				if err := os.WriteFile(HTMLPath(bill.PDFPath), []byte("<p>old</p>"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			var out bytes.Buffer
			status := ConvertBill(context.Background(), tt.converter(t), bill, &out)

			if status != tt.wantStatus {
				t.Errorf("status = %v, want %v", status, tt.wantStatus)
			}
			if !strings.Contains(out.String(), tt.wantLog) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantLog)
			}
		})
	}
}

func TestConvertBillWritesRedlineHTML(t *testing.T) {
	bill := setupBill(t)
	docx := buildDocx(t, para(run("<w:strike/>", "old text"), run(`<w:u w:val="single"/>`, "new text")))

	var out bytes.Buffer
	status := ConvertBill(context.Background(), &fakeDocxConverter{docx: docx}, bill, &out)
	if status != types.ConversionDone {
		t.Fatalf("status = %v, want converted", status)
	}

	htmlData, err := os.ReadFile(HTMLPath(bill.PDFPath))
	if err != nil {
		t.Fatalf("reading HTML output: %v", err)
	}
	got := string(htmlData)
	if !strings.Contains(got, "<s>old text</s>") {
		t.Errorf("HTML %q missing strike span", got)
	}
	if !strings.Contains(got, "<u>new text</u>") {
		t.Errorf("HTML %q missing underline span", got)
	}

	// The intermediate DOCX is kept next to the PDF.
	if _, err := os.Stat(DocxPath(bill.PDFPath)); err != nil {
		t.Errorf("intermediate DOCX missing: %v", err)
	}
}

func TestConvertBillNoPDF(t *testing.T) {
	var out bytes.Buffer
	status := ConvertBill(context.Background(), &fakeDocxConverter{}, types.Bill{Number: "H0009"}, &out)
	if status != types.ConversionFailed {
		t.Errorf("status = %v, want failed", status)
	}
}

func TestConvertBatch(t *testing.T) {
	good := setupBill(t)
	bad := types.Bill{Number: "H0002"} // collection failed, no PDF

	docx := buildDocx(t, para(run("", "text")))
	var out bytes.Buffer
	result := ConvertBatch(context.Background(), &fakeDocxConverter{docx: docx}, []types.Bill{good, bad}, &out)

	if result.Converted != 1 || result.Failed != 1 || result.Skipped != 0 {
		t.Errorf("result = %+v, want 1 converted, 1 failed", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false, want true")
	}
	if result.Total() != 2 {
		t.Errorf("Total = %d, want 2", result.Total())
	}
	if !strings.Contains(out.String(), "Batch summary: 1 converted, 0 skipped, 1 failed") {
		t.Errorf("missing batch summary, got %q", out.String())
	}
}
