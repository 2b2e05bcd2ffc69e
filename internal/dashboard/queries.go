// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"sort"
	"strings"

	"github.com/jmreed/billwatch/pkg/types"
)

// filterMinIssues keeps bills with at least min flagged issues. min <= 0
// keeps everything, including bills the model found clean.
func filterMinIssues(bills []types.EnrichedBill, min int) []types.EnrichedBill {
	if min <= 0 {
		return bills
	}
	var out []types.EnrichedBill
	for _, b := range bills {
		if b.IssueCount >= min {
			out = append(out, b)
		}
	}
	return out
}

// findBill returns the bill with the given number, or false.
func findBill(bills []types.EnrichedBill, number string) (types.EnrichedBill, bool) {
	for _, b := range bills {
		if b.Number == number {
			return b, true
		}
	}
	return types.EnrichedBill{}, false
}

// issueKey normalizes a free-text issue summary so close variants of the
// same constitutional concern ("Vagueness", "vagueness.") land in one
// histogram bucket. The model is not given a fixed taxonomy, so this stays
// deliberately coarse: lowercase, collapsed whitespace, trailing
// punctuation dropped.
func issueKey(summary string) string {
	s := strings.ToLower(strings.TrimSpace(summary))
	s = strings.TrimRight(s, ".,;:!")
	return strings.Join(strings.Fields(s), " ")
}

// histogramRow is one bucket of either histogram view.
type histogramRow struct {
	Label string
	Count int
}

// issueHistogram buckets every flagged issue by its normalized summary and
// drops buckets below minCount. The label shown is the first spelling seen
// for each bucket. Rows come back sorted by count descending, label
// ascending for ties.
func issueHistogram(bills []types.EnrichedBill, minCount int) []histogramRow {
	counts := make(map[string]int)
	labels := make(map[string]string)
	for _, b := range bills {
		for _, issue := range b.Issues {
			key := issueKey(issue.Issue)
			if key == "" {
				continue
			}
			counts[key]++
			if _, ok := labels[key]; !ok {
				labels[key] = strings.TrimSpace(issue.Issue)
			}
		}
	}
	return sortedRows(counts, labels, minCount)
}

// sponsorHistogram sums issue counts per sponsor and drops sponsors below
// minCount. Bills with no recorded sponsor group under "(unknown)".
func sponsorHistogram(bills []types.EnrichedBill, minCount int) []histogramRow {
	counts := make(map[string]int)
	labels := make(map[string]string)
	for _, b := range bills {
		sponsor := strings.TrimSpace(b.Sponsor)
		if sponsor == "" {
			sponsor = "(unknown)"
		}
		key := strings.ToLower(sponsor)
		counts[key] += b.IssueCount
		if _, ok := labels[key]; !ok {
			labels[key] = sponsor
		}
	}
	return sortedRows(counts, labels, minCount)
}

func sortedRows(counts map[string]int, labels map[string]string, minCount int) []histogramRow {
	var rows []histogramRow
	for key, n := range counts {
		if n < minCount {
			continue
		}
		rows = append(rows, histogramRow{Label: labels[key], Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}
