// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmreed/billwatch/internal/httputil"
	"github.com/jmreed/billwatch/pkg/types"
)

func zeroPolicy() httputil.Policy {
	return httputil.Policy{MaxAttempts: 2}
}

// legislatureServer serves a fake listing, detail pages, and PDFs.
// failPDF marks bill numbers whose PDF endpoint returns 404.
func legislatureServer(t *testing.T, pages map[string]string, sponsors map[string]string, failPDF map[string]bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/legislation/", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		body, ok := pages[page]
		if !ok {
			body = listingPage()
		}
		w.Write([]byte(body))
	})

	mux.HandleFunc("/sessioninfo/2026/legislation/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimRight(r.URL.Path, "/"), "/")
		number := parts[len(parts)-1]
		sponsor, ok := sponsors[number]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<table class="bill-table"><tr><td>` + number + `</td><td>t</td><td>by ` + sponsor + `</td></tr></table>`))
	})

	mux.HandleFunc("/wp-content/uploads/sessioninfo/2026/legislation/", func(w http.ResponseWriter, r *http.Request) {
		base := filepath.Base(r.URL.Path)
		number := strings.TrimSuffix(base, ".pdf")
		if failPDF[number] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 fake " + number))
	})

	return httptest.NewServer(mux)
}

func testConfig(srv *httptest.Server, dataDir string) types.CollectConfig {
	return types.CollectConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "billwatch-test"},
		BaseURL:    srv.URL,
		ListingURL: srv.URL + "/legislation/",
		DataDir:    dataDir,
		MaxPages:   10,
	}
}

func TestCollect(t *testing.T) {
	pages := map[string]string{
		"1": listingPage(
			billTable("H0001", "Water rights", "Introduced"),
			billTable("S1042", "Taxation", "In committee"),
		),
		// Page 2 repeats page 1: pagination must stop.
		"2": listingPage(
			billTable("H0001", "Water rights", "Introduced"),
			billTable("S1042", "Taxation", "In committee"),
		),
	}
	sponsors := map[string]string{"H0001": "Jane Doe", "S1042": "John Roe"}

	srv := legislatureServer(t, pages, sponsors, map[string]bool{"S1042": true})
	defer srv.Close()

	dataDir := t.TempDir()
	var out bytes.Buffer

	result, err := Collect(context.Background(), srv.Client(), testConfig(srv, dataDir), zeroPolicy(), "01_15_2026", &out)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if result.Pages != 1 {
		t.Errorf("Pages = %d, want 1 (repeated page must terminate pagination)", result.Pages)
	}
	if len(result.Bills) != 2 {
		t.Fatalf("got %d bills, want 2", len(result.Bills))
	}

	// Bill numbers unique within the record set.
	seen := make(map[string]bool)
	for _, b := range result.Bills {
		if seen[b.Number] {
			t.Errorf("duplicate bill number %s", b.Number)
		}
		seen[b.Number] = true
	}

	h := result.Bills[0]
	if h.Sponsor != "Jane Doe" {
		t.Errorf("Sponsor = %q, want Jane Doe", h.Sponsor)
	}
	if h.PDFPath == "" {
		t.Error("H0001 PDFPath is empty, want downloaded path")
	}
	if _, err := os.Stat(h.PDFPath); err != nil {
		t.Errorf("downloaded PDF missing: %v", err)
	}

	// The failing PDF is recorded per-bill, and collection continued.
	if len(result.Failed) != 1 || result.Failed[0].BillNumber != "S1042" {
		t.Fatalf("Failed = %+v, want one entry for S1042", result.Failed)
	}
	if result.Bills[1].PDFPath != "" {
		t.Errorf("failed bill has PDFPath %q, want empty", result.Bills[1].PDFPath)
	}
}

func TestCollectDeduplicatesAcrossPages(t *testing.T) {
	pages := map[string]string{
		"1": listingPage(billTable("H0001", "Water rights", "Introduced")),
		"2": listingPage(
			billTable("H0001", "Water rights", "Introduced"),
			billTable("H0002", "Grazing permits", "Introduced"),
		),
		"3": listingPage(),
	}
	sponsors := map[string]string{"H0001": "A", "H0002": "B"}

	srv := legislatureServer(t, pages, sponsors, nil)
	defer srv.Close()

	var out bytes.Buffer
	result, err := Collect(context.Background(), srv.Client(), testConfig(srv, t.TempDir()), zeroPolicy(), "01_15_2026", &out)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if len(result.Bills) != 2 {
		t.Fatalf("got %d bills, want 2 (H0001 deduplicated)", len(result.Bills))
	}
	if result.Bills[0].Number != "H0001" || result.Bills[1].Number != "H0002" {
		t.Errorf("bills = %s, %s; want H0001, H0002", result.Bills[0].Number, result.Bills[1].Number)
	}
}

func TestCollectMissingSponsorTolerated(t *testing.T) {
	pages := map[string]string{
		"1": listingPage(billTable("H0001", "Water rights", "Introduced")),
	}
	// No sponsor registered: the detail endpoint 404s.
	srv := legislatureServer(t, pages, map[string]string{}, nil)
	defer srv.Close()

	var out bytes.Buffer
	result, err := Collect(context.Background(), srv.Client(), testConfig(srv, t.TempDir()), zeroPolicy(), "01_15_2026", &out)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(result.Bills) != 1 {
		t.Fatalf("got %d bills, want 1", len(result.Bills))
	}
	if result.Bills[0].Sponsor != "" {
		t.Errorf("Sponsor = %q, want empty sentinel", result.Bills[0].Sponsor)
	}
	if !strings.Contains(out.String(), "warning: sponsor fetch failed") {
		t.Error("expected a sponsor warning in output")
	}
}

func TestCollectUnreachableSourcePreservesRecords(t *testing.T) {
	dataDir := t.TempDir()
	runID := "01_15_2026"
	runDir := filepath.Join(dataDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatal(err)
	}

	// A prior successful run left a record table behind.
	existing := []types.Bill{{Number: "H0001", Title: "Water rights"}}
	recordsPath := RecordsPath(dataDir, runID)
	if err := WriteRecords(recordsPath, existing); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	before, err := os.ReadFile(recordsPath)
	if err != nil {
		t.Fatal(err)
	}

	// The source is now unreachable.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := srv.Client()
	cfg := testConfig(srv, dataDir)
	srv.Close()

	var out bytes.Buffer
	_, err = Collect(context.Background(), client, cfg, zeroPolicy(), runID, &out)
	if err == nil {
		t.Fatal("Collect succeeded against an unreachable source, want error")
	}

	after, err := os.ReadFile(recordsPath)
	if err != nil {
		t.Fatalf("record table gone after failed run: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("failed run modified the existing record table")
	}
}

func TestDownloadPDFSkipsExisting(t *testing.T) {
	srv := legislatureServer(t, nil, nil, nil)
	defer srv.Close()

	dir := t.TempDir()
	existing := filepath.Join(dir, "H0001.pdf")
	if err := os.WriteFile(existing, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cfg := testConfig(srv, dir)
	path, err := DownloadPDF(context.Background(), srv.Client(), cfg, zeroPolicy(),
		srv.URL+"/wp-content/uploads/sessioninfo/2026/legislation/H0001.pdf", dir, "H0001", &out)
	if err != nil {
		t.Fatalf("DownloadPDF: %v", err)
	}
	if path != existing {
		t.Errorf("path = %q, want %q", path, existing)
	}

	data, _ := os.ReadFile(existing)
	if string(data) != "original" {
		t.Error("existing PDF was overwritten")
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bills.csv")

	bills := []types.Bill{
		{Number: "H0001", Title: "Water, \"quoted\" title", Status: "Introduced", DetailLink: "/a/H0001", PDFURL: "https://x/H0001.pdf", Sponsor: "Jane Doe", PDFPath: "/tmp/H0001.pdf"},
		{Number: "S1042", Title: "Taxation", Status: "In committee", DetailLink: "/a/S1042", PDFURL: "https://x/S1042.pdf"},
	}

	if err := WriteRecords(path, bills); err != nil {
		t.Fatalf("WriteRecords: %v", err)
	}
	got, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0] != bills[0] {
		t.Errorf("first record = %+v, want %+v", got[0], bills[0])
	}
	if got[1].Sponsor != "" || got[1].PDFPath != "" {
		t.Errorf("missing fields must round-trip as empty, got %+v", got[1])
	}
}
