// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for archive queries.
type QueryOptions struct {
	// Query is an FTS5 full-text search over issue summaries, references
	// and explanations.
	Query string

	// Run restricts results to one run.
	Run string

	// Sponsor filters by exact sponsor name.
	Sponsor string

	// MinIssues keeps bills with at least this many flagged issues.
	MinIssues int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Run == "" && q.Sponsor == "" && q.MinIssues == 0
}

// QueryResult is one flagged issue joined with its bill's metadata.
type QueryResult struct {
	Run         string `json:"run"`
	BillNumber  string `json:"bill_number"`
	Title       string `json:"bill_title"`
	Status      string `json:"bill_status"`
	Sponsor     string `json:"sponsor"`
	IssueCount  int    `json:"issue_count"`
	Issue       string `json:"issue"`
	References  string `json:"references"`
	Explanation string `json:"explanation"`
}

// Retrieve queries the archive with optional full-text search and
// structured filters. Full-text queries come back ranked by relevance;
// structured-only queries sort by run, bill number, issue position.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT i.run, i.bill_number, b.title, b.status, b.sponsor,
				b.issue_count, i.issue, i.refs, i.explanation
			FROM issues_fts
			JOIN issues i ON i.rowid = issues_fts.rowid
			JOIN bills b ON b.run = i.run AND b.bill_number = i.bill_number
			WHERE issues_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT i.run, i.bill_number, b.title, b.status, b.sponsor,
				b.issue_count, i.issue, i.refs, i.explanation
			FROM issues i
			JOIN bills b ON b.run = i.run AND b.bill_number = i.bill_number
			WHERE 1=1`)
	}

	if opts.Run != "" {
		qb.WriteString(` AND i.run = ?`)
		args = append(args, opts.Run)
	}
	if opts.Sponsor != "" {
		qb.WriteString(` AND b.sponsor = ?`)
		args = append(args, opts.Sponsor)
	}
	if opts.MinIssues > 0 {
		qb.WriteString(` AND b.issue_count >= ?`)
		args = append(args, opts.MinIssues)
	}

	if useFTS {
		qb.WriteString(` ORDER BY issues_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY i.run, i.bill_number, i.position`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(
			&qr.Run, &qr.BillNumber, &qr.Title, &qr.Status, &qr.Sponsor,
			&qr.IssueCount, &qr.Issue, &qr.References, &qr.Explanation,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}
	return results, rows.Err()
}
