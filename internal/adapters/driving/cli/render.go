package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func verdictStyle(st *Styles, passed bool) string {
	if passed {
		return st.Pass.Render("PASSED")
	}
	return st.Fail.Render("FAILED")
}

func row(w io.Writer, st *Styles, label string, value any) {
	fmt.Fprintf(w, "  %s %v\n", st.Label.Render(label), value)
}

func renderMigration(w io.Writer, st *Styles, res *domain.MigrationResult) {
	title := "Migration"
	if res.DryRun {
		title = "Migration (dry run)"
	}
	fmt.Fprintln(w, st.Title.Render(title))
	row(w, st, "Run", res.RunID)
	row(w, st, "Duration", res.Duration.Round(time.Millisecond))
	fmt.Fprintln(w)

	fmt.Fprintln(w, st.Heading.Render("Steps"))
	for _, s := range res.Steps {
		status := string(s.Status)
		switch s.Status {
		case domain.StepOK:
			status = st.Pass.Render(status)
		case domain.StepFailed:
			status = st.Fail.Render(status)
		default:
			status = st.Muted.Render(status)
		}
		line := fmt.Sprintf("  %s %-7s %d", st.Label.Render(s.Name), status, s.Rows)
		if s.Error != "" {
			line += "  " + st.Muted.Render(s.Error)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, st.Heading.Render("Chunks"))
	row(w, st, "Extracted", res.Extracted)
	row(w, st, "Committed", len(res.Committed))
	row(w, st, "Indexed", len(res.Indexed))
	row(w, st, "Batches", res.Batches)
	if len(res.Failed) > 0 {
		row(w, st, "Failed", st.Fail.Render(strings.Join(res.Failed, ", ")))
	}
	for _, q := range res.Quality {
		fmt.Fprintf(w, "  %s %s\n", st.Warn.Render("!"), q)
	}
}

func renderReconciliation(w io.Writer, st *Styles, rep *domain.ReconciliationReport) {
	fmt.Fprintln(w, st.Title.Render("Reconciliation")+"  "+verdictStyle(st, rep.Passed))
	row(w, st, "Relational chunks", rep.RelationalCount)
	row(w, st, "Vectors", rep.VectorCount)
	row(w, st, "Dimension", fmt.Sprintf("%d (expected %d)", rep.ActualDimension, rep.ExpectedDimension))
	if rep.SimilarityFunction != "" {
		row(w, st, "Similarity", rep.SimilarityFunction)
	}
	if rep.SampledVectorIDs {
		row(w, st, "Vector ids", st.Muted.Render("sampled"))
	}

	if len(rep.TableCounts) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Heading.Render("Tables"))
		for _, name := range sortedKeys(rep.TableCounts) {
			row(w, st, name, rep.TableCounts[name])
		}
	}

	if len(rep.TypeDistribution) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Heading.Render("Chunk types"))
		types := make(map[string]int, len(rep.TypeDistribution))
		for k, v := range rep.TypeDistribution {
			types[string(k)] = v
		}
		for _, name := range sortedKeys(types) {
			row(w, st, name, types[name])
		}
	}

	fmt.Fprintln(w)
	if len(rep.Issues) == 0 {
		fmt.Fprintln(w, st.Pass.Render("No issues found."))
		return
	}
	fmt.Fprintln(w, st.Heading.Render(fmt.Sprintf("Issues (%d)", len(rep.Issues))))
	for _, issue := range rep.Issues {
		fmt.Fprintf(w, "  %s %s\n", st.Warn.Render("["+string(issue.Category)+"]"), issue.Message)
	}
}

func renderHarness(w io.Writer, st *Styles, rep *domain.HarnessReport) {
	sum := rep.Summary
	fmt.Fprintln(w, st.Title.Render("Retrieval quality")+"  "+verdictStyle(st, rep.Passed))
	row(w, st, "Verdict", rep.Verdict)
	row(w, st, "Queries", sum.TotalQueries)
	row(w, st, "Success rate", fmt.Sprintf("%.1f%%", sum.SuccessRate*100))
	row(w, st, "Relevance rate", fmt.Sprintf("%.1f%%", sum.RelevanceRate*100))
	row(w, st, "Avg relevance score", fmt.Sprintf("%.3f", sum.AvgRelevanceScore))
	row(w, st, "Avg latency", fmt.Sprintf("%.1f ms", sum.AvgLatencyMS))

	fmt.Fprintln(w)
	fmt.Fprintln(w, st.Heading.Render("Queries"))
	for _, q := range rep.Queries {
		quality := string(q.Quality)
		switch q.Quality {
		case domain.QualityExcellent, domain.QualityGood:
			quality = st.Pass.Render(quality)
		case domain.QualityPoor:
			quality = st.Fail.Render(quality)
		default:
			quality = st.Warn.Render(quality)
		}
		line := fmt.Sprintf("  %-10s %s  %d/%d relevant  top %.3f",
			q.QueryID, quality, q.RelevantResults, q.ResultsCount, q.TopScore)
		if q.Error != "" {
			line += "  " + st.Muted.Render(q.Error)
		}
		fmt.Fprintln(w, line)
	}

	if rep.Filters != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Heading.Render("Metadata filters")+"  "+verdictStyle(st, rep.Filters.Passed))
		for _, f := range rep.Filters.Tests {
			fmt.Fprintf(w, "  %s %d/%d matching (%.0f%%)\n",
				st.Label.Render(f.Name), f.Matching, f.Returned, f.Accuracy*100)
		}
	}

	if c := rep.Concurrency; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Heading.Render("Concurrency"))
		row(w, st, "Workers", c.Workers)
		row(w, st, "Throughput", fmt.Sprintf("%.2f q/s", c.Throughput))
		row(w, st, "Failed", c.Failed)
	}

	if len(rep.BestCategories) > 0 {
		fmt.Fprintln(w)
		row(w, st, "Best categories", strings.Join(rep.BestCategories, ", "))
	}

	if len(rep.Recommendations) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, st.Heading.Render("Recommendations"))
		for _, r := range rep.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func renderSearchResults(w io.Writer, st *Styles, results []domain.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintln(w, st.Title.Render("Results:"))
	fmt.Fprintln(w)
	for i := range results {
		r := results[i]
		title := domain.MetadataString(r.Metadata["title"])
		if title == "" {
			title = r.VectorID
		}
		fmt.Fprintf(w, "  [%d] %s (%.2f)\n", i+1, title, r.Score)
		if t := r.ChunkType(); t != "" {
			fmt.Fprintf(w, "      %s\n", st.Muted.Render(string(t)+" · "+r.VectorID))
		}
		if r.Content != "" {
			fmt.Fprintf(w, "      %s\n", snippet(r.Content, 160))
		}
		fmt.Fprintln(w)
	}
}

// snippet shortens s to at most n runes on a word boundary.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "..."
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
