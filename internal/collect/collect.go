// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect scrapes the legislature bill listing, recovers sponsors
// from detail pages, downloads bill PDFs, and writes the primary record
// table for one run.
package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jmreed/billwatch/internal/httputil"
	"github.com/jmreed/billwatch/pkg/types"
)

// Result holds the outcome of a collection run.
type Result struct {
	Bills  []types.Bill
	Pages  int
	Failed []types.AnalysisFailure
}

// HasFailures reports whether any bills failed collection.
func (r Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// Collect scrapes the paginated listing, fetches sponsors, and downloads
// PDFs into the run directory. Individual bill failures are recorded and
// collection continues; only an unreachable listing is an error.
func Collect(ctx context.Context, client *http.Client, cfg types.CollectConfig, policy httputil.Policy, runID string, w io.Writer) (Result, error) {
	bills, pages, err := scrapeListing(ctx, client, cfg, policy, w)
	if err != nil {
		return Result{}, err
	}

	result := Result{Bills: bills, Pages: pages}

	dirPath := filepath.Join(cfg.DataDir, runID)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating run directory %s: %w", dirPath, err)
	}

	for i := range result.Bills {
		b := &result.Bills[i]

		cooldown(ctx, cfg.RequestDelay)
		sponsor, err := fetchSponsor(ctx, client, cfg, policy, b.DetailLink)
		if err != nil {
			fmt.Fprintf(w, "  warning: sponsor fetch failed for %s: %v\n", b.Number, err)
		}
		b.Sponsor = sponsor

		cooldown(ctx, cfg.RequestDelay)
		path, err := DownloadPDF(ctx, client, cfg, policy, b.PDFURL, dirPath, b.Number, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", b.Number, err)
			result.Failed = append(result.Failed, types.AnalysisFailure{
				BillNumber: b.Number,
				Reason:     err.Error(),
			})
			continue
		}
		b.PDFPath = path
	}

	fmt.Fprintf(w, "\nCollected %d bill(s) across %d page(s), %d failed\n",
		len(result.Bills), result.Pages, len(result.Failed))
	return result, nil
}

// scrapeListing walks listing pages until one yields no bills or repeats
// the previous page's bill set. Bill numbers are deduplicated across pages;
// the first occurrence wins.
func scrapeListing(ctx context.Context, client *http.Client, cfg types.CollectConfig, policy httputil.Policy, w io.Writer) ([]types.Bill, int, error) {
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = 50
	}

	seen := make(map[string]bool)
	var all []types.Bill
	var prev map[string]bool
	pages := 0

	for page := 1; page <= maxPages; page++ {
		if page > 1 {
			cooldown(ctx, cfg.RequestDelay)
		}

		pageBills, err := fetchListingPage(ctx, client, cfg, policy, page)
		if err != nil {
			if page == 1 {
				return nil, 0, fmt.Errorf("fetching listing page 1: %w", err)
			}
			fmt.Fprintf(w, "  warning: listing page %d failed, stopping pagination: %v\n", page, err)
			break
		}

		if len(pageBills) == 0 {
			break
		}

		current := make(map[string]bool, len(pageBills))
		for _, b := range pageBills {
			current[b.Number] = true
		}
		if sameBillSet(prev, current) {
			break
		}
		prev = current
		pages++

		for _, b := range pageBills {
			if seen[b.Number] {
				continue
			}
			seen[b.Number] = true
			all = append(all, b)
		}
		fmt.Fprintf(w, "page %d: %d bill(s)\n", page, len(pageBills))
	}

	return all, pages, nil
}

func fetchListingPage(ctx context.Context, client *http.Client, cfg types.CollectConfig, policy httputil.Policy, page int) ([]types.Bill, error) {
	url := cfg.ListingURL
	if page > 1 {
		url = fmt.Sprintf("%s?page=%d", cfg.ListingURL, page)
	}

	body, err := get(ctx, client, cfg.HTTPConfig, policy, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return ParseListing(body, cfg.BaseURL)
}

func fetchSponsor(ctx context.Context, client *http.Client, cfg types.CollectConfig, policy httputil.Policy, detailLink string) (string, error) {
	if detailLink == "" {
		return "", nil
	}

	body, err := get(ctx, client, cfg.HTTPConfig, policy, cfg.BaseURL+detailLink)
	if err != nil {
		return "", err
	}
	defer body.Close()

	return ParseDetail(body)
}

// DownloadPDF fetches a bill PDF into dirPath, named from the bill number.
// An already-present PDF is not fetched again, which keeps re-runs of the
// same run identifier from re-downloading everything.
func DownloadPDF(ctx context.Context, client *http.Client, cfg types.CollectConfig, policy httputil.Policy, url, dirPath, billNumber string, w io.Writer) (string, error) {
	destPath := filepath.Join(dirPath, billNumber+".pdf")

	if _, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(w, "skipped: %s (already exists)\n", billNumber)
		return destPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, client, req, policy)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(dirPath, ".collect-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}

	fmt.Fprintf(w, "downloaded: %s\n", billNumber)
	return destPath, nil
}

// get issues a GET under the retry policy and returns the body on 200.
func get(ctx context.Context, client *http.Client, cfg types.HTTPConfig, policy httputil.Policy, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, policy)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}

func sameBillSet(a, b map[string]bool) bool {
	if a == nil || len(a) != len(b) {
		return false
	}
	for k := range b {
		if !a[k] {
			return false
		}
	}
	return true
}

func cooldown(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
