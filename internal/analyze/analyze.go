// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze sends converted bill text to an AI backend and records
// the potential constitutional issues it flags. Each bill either joins the
// enriched record stream or the failure log, never both; one bill's failure
// never aborts the batch.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jmreed/billwatch/internal/collect"
	"github.com/jmreed/billwatch/internal/convert"
	"github.com/jmreed/billwatch/internal/httputil"
	"github.com/jmreed/billwatch/pkg/types"
)

// AIBackend abstracts the Generative AI API so tests can supply a mock.
// Each implementation reviews one bill's plain text and returns the raw
// structured response.
type AIBackend interface {
	Review(ctx context.Context, billText string) (AIResponse, error)
}

// AIResponse is the structured response from the AI backend for one bill.
type AIResponse struct {
	Issues []types.Issue `json:"issues"`
}

// BatchSummary holds counts from a batch analysis run.
type BatchSummary struct {
	Analyzed int
	Skipped  int
	Failed   int
}

// Total returns the number of bills processed.
func (s BatchSummary) Total() int {
	return s.Analyzed + s.Skipped + s.Failed
}

// HasFailures reports whether any bills failed analysis.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// structuralError marks failures that retrying cannot fix: malformed model
// output, empty responses, rejected requests.
type structuralError struct {
	err error
}

func (e *structuralError) Error() string { return e.err.Error() }
func (e *structuralError) Unwrap() error { return e.err }

// Structural wraps err so callWithRetry gives up immediately.
func Structural(err error) error {
	return &structuralError{err: err}
}

// IsStructural reports whether err came from Structural.
func IsStructural(err error) bool {
	var se *structuralError
	return errors.As(err, &se)
}

// AnalyzeAll reads the run's record table, reviews every bill with
// converted HTML, and writes the enriched stream plus the failure log.
// Bills without converted HTML are skipped (they already failed an earlier
// stage). The returned error covers setup problems only.
func AnalyzeAll(ctx context.Context, backend AIBackend, cfg types.AnalyzeConfig, policy httputil.Policy, runID string, w io.Writer) (BatchSummary, error) {
	bills, err := collect.ReadRecords(collect.RecordsPath(cfg.DataDir, runID))
	if err != nil {
		return BatchSummary{}, err
	}

	var summary BatchSummary
	var enriched []types.EnrichedBill
	var failures []types.AnalysisFailure

	for i, b := range bills {
		if b.PDFPath == "" {
			fmt.Fprintf(w, "skipped %s (no downloaded PDF)\n", b.Number)
			summary.Skipped++
			continue
		}

		htmlPath := convert.HTMLPath(b.PDFPath)
		htmlData, err := os.ReadFile(htmlPath)
		if err != nil {
			fmt.Fprintf(w, "skipped %s (no converted HTML)\n", b.Number)
			summary.Skipped++
			continue
		}

		text := HTMLText(string(htmlData))
		if strings.TrimSpace(text) == "" {
			fmt.Fprintf(w, "failed  %s: converted HTML has no text\n", b.Number)
			failures = append(failures, types.AnalysisFailure{BillNumber: b.Number, Reason: "converted HTML has no text"})
			summary.Failed++
			continue
		}

		if i > 0 {
			cooldown(ctx, cfg.RequestDelay)
		}

		resp, err := callWithRetry(ctx, backend, text, policy)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", b.Number, err)
			failures = append(failures, types.AnalysisFailure{BillNumber: b.Number, Reason: err.Error()})
			summary.Failed++
			continue
		}

		issues, verr := validateIssues(resp.Issues)
		if verr != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", b.Number, verr)
			failures = append(failures, types.AnalysisFailure{BillNumber: b.Number, Reason: verr.Error()})
			summary.Failed++
			continue
		}

		enriched = append(enriched, types.EnrichedBill{
			Bill:       b,
			HTMLPath:   htmlPath,
			Issues:     issues,
			IssueCount: len(issues),
		})
		fmt.Fprintf(w, "analyzed %s (%d issue(s))\n", b.Number, len(issues))
		summary.Analyzed++
	}

	if err := WriteEnriched(EnrichedPath(cfg.DataDir, runID), enriched); err != nil {
		return summary, fmt.Errorf("writing enriched stream: %w", err)
	}
	if err := WriteFailures(FailuresPath(cfg.DataDir, runID), failures); err != nil {
		return summary, fmt.Errorf("writing failure log: %w", err)
	}

	fmt.Fprintf(w, "\nBatch summary: %d analyzed, %d skipped, %d failed (total: %d)\n",
		summary.Analyzed, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// callWithRetry calls the AI backend under the policy. Structural errors
// are returned immediately; retrying will not fix a malformed response.
func callWithRetry(ctx context.Context, backend AIBackend, text string, policy httputil.Policy) (AIResponse, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := policy.Wait(ctx, attempt-1); err != nil {
				return AIResponse{}, err
			}
		}

		resp, err := backend.Review(ctx, text)
		if err == nil {
			return resp, nil
		}
		if IsStructural(err) {
			return AIResponse{}, err
		}
		lastErr = err
	}
	return AIResponse{}, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// validateIssues checks structural presence: every issue needs a non-empty
// summary. Content is otherwise opaque natural language.
func validateIssues(issues []types.Issue) ([]types.Issue, error) {
	for i, issue := range issues {
		if strings.TrimSpace(issue.Issue) == "" {
			return nil, Structural(fmt.Errorf("issue %d has an empty summary", i))
		}
	}
	return issues, nil
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
