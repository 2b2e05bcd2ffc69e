// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmreed/billwatch/internal/index"
	"github.com/jmreed/billwatch/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index [query]",
	Short: "Maintain and search the cross-run bill archive",
	Long: `Index ingests enriched runs into a SQLite archive and searches it.
With no query or filters it ingests only; runs whose enriched stream is
unchanged since the last ingest are skipped. A free-text query searches
issue summaries, references, and explanations; --sponsor, --min-issues,
and a pinned --run narrow the results.

The archive is a query convenience: pipeline stages never read from it.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().Bool("all", false, "ingest every run with an enriched stream")
	indexCmd.Flags().String("sponsor", "", "filter results by exact sponsor name")
	indexCmd.Flags().Int("min-issues", 0, "keep bills with at least this many issues")
	indexCmd.Flags().Int("max-results", 20, "maximum number of results to return")
	indexCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	dir := dataDir(cmd)

	store, err := index.NewStore(indexConfig(cmd, dir))
	if err != nil {
		return err
	}
	defer store.Close()

	all, _ := cmd.Flags().GetBool("all")
	runs, runFilter, err := runsToIngest(cmd, store, dir, all)
	if err != nil {
		return err
	}

	summary, err := store.Ingest(cmd.Context(), runs, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		fmt.Printf("%d run(s) failed ingest; their previous contents remain indexed\n", summary.Failed)
	}

	opts := queryOptsFromFlags(cmd, args)
	opts.Run = runFilter
	if opts.IsEmpty() {
		return nil
	}

	results, err := store.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatResults(results, jsonOutput)
}

// runsToIngest picks the runs to load: every discovered run with --all,
// otherwise the single resolved run. The second return is the run filter
// for the query that follows (empty with --all).
func runsToIngest(cmd *cobra.Command, store *index.Store, dir string, all bool) ([]string, string, error) {
	if all {
		runs, err := store.Runs()
		return runs, "", err
	}
	runID, err := resolveRun(cmd, dir)
	if err != nil {
		return nil, "", err
	}
	return []string{runID}, runID, nil
}

func indexConfig(cmd *cobra.Command, dir string) types.IndexConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.IndexConfig{DataDir: dir, MaxResults: maxResults}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) index.QueryOptions {
	sponsor, _ := cmd.Flags().GetString("sponsor")
	minIssues, _ := cmd.Flags().GetInt("min-issues")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return index.QueryOptions{
		Query:      strings.Join(args, " "),
		Sponsor:    sponsor,
		MinIssues:  minIssues,
		MaxResults: maxResults,
	}
}

func formatResults(results []index.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-8s  %-30s  %-20s  %s\n",
		"Run", "Bill", "Issue", "Sponsor", "References")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, r := range results {
		issue := r.Issue
		if len(issue) > 30 {
			issue = issue[:27] + "..."
		}
		sponsor := r.Sponsor
		if len(sponsor) > 20 {
			sponsor = sponsor[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-8s  %-30s  %-20s  %s\n",
			r.Run, r.BillNumber, issue, sponsor, r.References)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
