// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a cross-run SQLite archive of enriched bills.
// The archive is a query convenience layered over the per-run JSONL
// streams; no pipeline stage reads from it.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jmreed/billwatch/internal/analyze"
	"github.com/jmreed/billwatch/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "billwatch.db"
)

// Store manages the archive SQLite database at dataDir/index/billwatch.db.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the archive database, creating the schema if
// it does not exist.
func NewStore(cfg types.IndexConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS bills (
			run TEXT NOT NULL,
			bill_number TEXT NOT NULL,
			title TEXT,
			status TEXT,
			sponsor TEXT,
			detail_link TEXT,
			pdf_url TEXT,
			issue_count INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run, bill_number)
		)`,
		`CREATE TABLE IF NOT EXISTS issues (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run TEXT NOT NULL,
			bill_number TEXT NOT NULL,
			position INTEGER NOT NULL,
			issue TEXT NOT NULL,
			refs TEXT,
			explanation TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_issues_bill ON issues(run, bill_number)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_sponsor ON bills(sponsor)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			run TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='issues_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE issues_fts USING fts5(issue, refs, explanation, content=issues, content_rowid=rowid)`,
			`CREATE TRIGGER issues_ai AFTER INSERT ON issues BEGIN
				INSERT INTO issues_fts(rowid, issue, refs, explanation)
				VALUES (new.rowid, new.issue, new.refs, new.explanation);
			END`,
			`CREATE TRIGGER issues_ad AFTER DELETE ON issues BEGIN
				INSERT INTO issues_fts(issues_fts, rowid, issue, refs, explanation)
				VALUES('delete', old.rowid, old.issue, old.refs, old.explanation);
			END`,
			`CREATE TRIGGER issues_au AFTER UPDATE ON issues BEGIN
				INSERT INTO issues_fts(issues_fts, rowid, issue, refs, explanation)
				VALUES('delete', old.rowid, old.issue, old.refs, old.explanation);
				INSERT INTO issues_fts(rowid, issue, refs, explanation)
				VALUES (new.rowid, new.issue, new.refs, new.explanation);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an archive ingest.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of runs processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any run failed to ingest.
func (s IngestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Runs returns every run identifier under dataDir that has an enriched
// stream, in directory order.
func (s *Store) Runs() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory %s: %w", s.dataDir, err)
	}
	var runs []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == indexDir {
			continue
		}
		if _, err := os.Stat(analyze.EnrichedPath(s.dataDir, entry.Name())); err == nil {
			runs = append(runs, entry.Name())
		}
	}
	return runs, nil
}

// Ingest loads the enriched streams for the given runs into the archive.
// Runs whose stream has not changed since the last ingest are skipped by
// file modification time. A run that fails to parse is reported and
// counted, never fatal.
func (s *Store) Ingest(ctx context.Context, runs []string, w io.Writer) (IngestSummary, error) {
	var summary IngestSummary

	for _, runID := range runs {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path := analyze.EnrichedPath(s.dataDir, runID)
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", runID, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE run = ?`, runID,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", runID)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		bills, err := analyze.ReadEnriched(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", runID, err)
			summary.Failed++
			continue
		}

		if err := s.ingestRun(ctx, runID, bills, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", runID, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d bills)\n", runID, len(bills))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s (%d bills)\n", runID, len(bills))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestRun(ctx context.Context, runID string, bills []types.EnrichedBill, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-ingest replaces the run wholesale.
	if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE run = ?`, runID); err != nil {
		return fmt.Errorf("deleting old issues: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bills WHERE run = ?`, runID); err != nil {
		return fmt.Errorf("deleting old bills: %w", err)
	}

	billStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO bills (run, bill_number, title, status, sponsor, detail_link, pdf_url, issue_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing bill insert: %w", err)
	}
	defer billStmt.Close()

	issueStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO issues (run, bill_number, position, issue, refs, explanation)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing issue insert: %w", err)
	}
	defer issueStmt.Close()

	for _, b := range bills {
		if _, err := billStmt.ExecContext(ctx,
			runID, b.Number, b.Title, b.Status, b.Sponsor,
			b.DetailLink, b.PDFURL, b.IssueCount,
		); err != nil {
			return fmt.Errorf("inserting bill %s: %w", b.Number, err)
		}
		for i, issue := range b.Issues {
			if _, err := issueStmt.ExecContext(ctx,
				runID, b.Number, i, issue.Issue, issue.References, issue.Explanation,
			); err != nil {
				return fmt.Errorf("inserting issue %d of %s: %w", i, b.Number, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO indexing_status (run, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(run) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		runID, modTime,
	); err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
