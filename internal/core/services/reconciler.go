package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// Ensure Reconciler implements the interface.
var _ driving.ReconcileService = (*Reconciler)(nil)

// Reconciler audits the relational and vector stores for drift.
// It only reads; findings are returned as data.
type Reconciler struct {
	relational driven.RelationalStore
	vectors    driven.VectorStore
}

// NewReconciler creates a new reconciler.
func NewReconciler(relational driven.RelationalStore, vectors driven.VectorStore) *Reconciler {
	return &Reconciler{relational: relational, vectors: vectors}
}

// Reconcile compares id sets, field completeness, dimension and counts.
// It returns an error only when a store cannot be reached.
func (r *Reconciler) Reconcile(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconciliationReport, error) {
	expectedDim := opts.ExpectedDimension
	if expectedDim <= 0 {
		expectedDim = domain.DefaultExpectedDimension
	}

	logger.Section("Reconciliation")

	if err := r.relational.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: relational: %w", domain.ErrStoreUnavailable, err)
	}
	info, err := r.vectors.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", domain.ErrStoreUnavailable, err)
	}

	report := &domain.ReconciliationReport{
		ExpectedDimension:   expectedDim,
		ActualDimension:     info.Dimension,
		VectorCount:         info.VectorCount,
		SimilarityFunction:  info.SimilarityFunction,
		MissingInVector:     []string{},
		MissingInRelational: []string{},
		Passed:              true,
	}

	relIDs, err := r.relational.ListChunkIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list chunk ids: %w", domain.ErrStoreUnavailable, err)
	}
	report.RelationalCount = len(relIDs)

	vecIDs, sampled, err := r.vectorIDs(ctx, opts, len(relIDs))
	if err != nil {
		return nil, fmt.Errorf("%w: list vector ids: %w", domain.ErrStoreUnavailable, err)
	}
	report.SampledVectorIDs = sampled

	r.checkIDs(report, relIDs, vecIDs)
	r.checkFields(ctx, report)
	r.checkIndex(report, info, expectedDim)
	if opts.Document != nil {
		r.checkRowCounts(ctx, report, opts.Document)
	}
	r.checkChunks(ctx, report)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	logger.Info("Reconciliation: %d relational, %d vectors, %d issues", report.RelationalCount, report.VectorCount, len(report.Issues))
	return report, nil
}

// vectorIDs lists every vector id when the store supports it; otherwise it
// samples ids through a broad query, widened to at least the relational count.
func (r *Reconciler) vectorIDs(ctx context.Context, opts domain.ReconcileOptions, relCount int) ([]string, bool, error) {
	if lister, ok := r.vectors.(driven.VectorLister); ok {
		ids, err := lister.ListIDs(ctx)
		return ids, false, err
	}

	query := opts.SampleQuery
	if query == "" {
		query = domain.DefaultSampleQuery
	}
	topK := opts.SampleTopK
	if topK <= 0 {
		topK = domain.DefaultSampleTopK
	}
	topK = max(topK, relCount)

	hits, err := r.vectors.Query(ctx, domain.VectorQuery{Text: query, TopK: topK})
	if err != nil {
		return nil, true, err
	}
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	logger.Debug("Sampled %d vector ids with top_k %d", len(ids), topK)
	return ids, true, nil
}

func (r *Reconciler) checkIDs(report *domain.ReconciliationReport, relIDs, vecIDs []string) {
	report.MissingInVector = difference(relIDs, vecIDs)
	report.MissingInRelational = difference(vecIDs, relIDs)

	suffix := ""
	if report.SampledVectorIDs {
		suffix = " (vector ids sampled)"
	}
	if n := len(report.MissingInVector); n > 0 {
		report.AddIssue(domain.IssueIDDrift, fmt.Sprintf("%d chunks missing in vector store%s", n, suffix))
	}
	if n := len(report.MissingInRelational); n > 0 {
		report.AddIssue(domain.IssueIDDrift, fmt.Sprintf("%d vectors missing in relational store%s", n, suffix))
	}
}

func (r *Reconciler) checkFields(ctx context.Context, report *domain.ReconciliationReport) {
	for _, check := range domain.RequiredFields {
		n, err := r.relational.CountEmpty(ctx, check)
		if err != nil {
			report.AddIssue(domain.IssueFieldNull, fmt.Sprintf("%s.%s: could not check: %v", check.Table, check.Field, err))
			continue
		}
		report.Fields = append(report.Fields, domain.FieldCount{FieldCheck: check, Empty: n})
		if n > 0 {
			report.AddIssue(domain.IssueFieldNull, fmt.Sprintf("%s.%s has %d null or empty values", check.Table, check.Field, n))
		}
	}
}

func (r *Reconciler) checkIndex(report *domain.ReconciliationReport, info domain.VectorInfo, expectedDim int) {
	if info.Dimension != expectedDim {
		report.AddIssue(domain.IssueDimension, fmt.Sprintf("vector dimension %d, expected %d", info.Dimension, expectedDim))
	}
	if info.VectorCount != report.RelationalCount {
		report.AddIssue(domain.IssueCount,
			fmt.Sprintf("vector count %d does not match %d relational chunks", info.VectorCount, report.RelationalCount))
	}
}

// checkRowCounts compares table sizes with the source document.
func (r *Reconciler) checkRowCounts(ctx context.Context, report *domain.ReconciliationReport, doc *domain.ProfileDocument) {
	expected := []struct {
		table string
		want  int
		exact bool
	}{
		{"professionals", 1, true},
		{"experiences", len(doc.Experience), true},
		{"projects", len(doc.Projects), true},
		{"education", len(doc.Education), true},
		{"skills", 1, false},
		{"content_chunks", 1, false},
	}

	report.TableCounts = make(map[string]int, len(expected))
	for _, e := range expected {
		n, err := r.relational.CountRows(ctx, e.table)
		if err != nil {
			report.AddIssue(domain.IssueRowCount, fmt.Sprintf("%s: could not count: %v", e.table, err))
			continue
		}
		report.TableCounts[e.table] = n
		switch {
		case e.exact && n != e.want:
			report.AddIssue(domain.IssueRowCount, fmt.Sprintf("%s has %d rows, expected %d", e.table, n, e.want))
		case !e.exact && n < e.want:
			report.AddIssue(domain.IssueRowCount, fmt.Sprintf("%s is empty", e.table))
		}
	}
}

// checkChunks records type and importance distributions and flags short content.
func (r *Reconciler) checkChunks(ctx context.Context, report *domain.ReconciliationReport) {
	chunks, err := r.relational.ListChunks(ctx)
	if err != nil {
		report.AddIssue(domain.IssueContent, fmt.Sprintf("could not read chunks: %v", err))
		return
	}

	report.TypeDistribution = make(map[domain.ChunkType]int)
	report.ImportanceDistribution = make(map[domain.Importance]int)
	for _, c := range chunks {
		report.TypeDistribution[c.Type]++
		report.ImportanceDistribution[c.Importance]++
		if c.ContentLength() < domain.MinContentLength {
			report.ShortContent = append(report.ShortContent, c.ID)
		}
	}
	if n := len(report.ShortContent); n > 0 {
		report.AddIssue(domain.IssueContent,
			fmt.Sprintf("%d chunks shorter than %d characters", n, domain.MinContentLength))
	}
}

// difference returns the sorted elements of a not present in b.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	out := []string{}
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
