package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// Ensure RetrievalHarness implements the interface.
var _ driving.HarnessService = (*RetrievalHarness)(nil)

// Recommendation messages.
const (
	RecommendLatency   = "Consider optimizing vector search performance - average latency is high"
	RecommendChunking  = "Review content chunking strategy - too many poor quality results"
	RecommendKeywords  = "Improve keyword coverage in content chunks"
	RecommendMetadata  = "Review metadata filtering and content categorization"
	RecommendNoChanges = "RAG system is performing well - no major improvements needed"
)

// RetrievalHarness issues the validation suite against the vector store,
// resolves hits from the relational store and scores them.
type RetrievalHarness struct {
	vectors  driven.VectorStore
	resolver *ContentResolver
}

// NewRetrievalHarness creates a new harness.
func NewRetrievalHarness(vectors driven.VectorStore, resolver *ContentResolver) *RetrievalHarness {
	return &RetrievalHarness{vectors: vectors, resolver: resolver}
}

// Run executes every query, then the filter and concurrency modes unless
// skipped, and aggregates the report. A failing query is recorded, not
// returned; only an unreachable vector store or cancellation is an error.
func (h *RetrievalHarness) Run(ctx context.Context, opts domain.HarnessOptions) (*domain.HarnessReport, error) {
	queries := opts.Queries
	if len(queries) == 0 {
		queries = DefaultQueries()
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	info, err := h.vectors.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", domain.ErrStoreUnavailable, err)
	}
	logger.Section("Retrieval harness")
	logger.Info("Testing %d queries against %d vectors", len(queries), info.VectorCount)

	report := &domain.HarnessReport{
		Results: make(map[string][]domain.SearchResult, len(queries)),
	}

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			h.aggregate(report, queries)
			return report, err
		}
		metrics, results := h.RunQuery(ctx, q, topK)
		report.Queries = append(report.Queries, metrics)
		report.Results[q.ID] = results
		logger.Info("%s: %s quality, %d/%d relevant, %.1fms",
			q.ID, metrics.Quality, metrics.RelevantResults, metrics.ResultsCount, metrics.LatencyMS)
	}

	if !opts.SkipFilters {
		tests := opts.FilterTests
		if len(tests) == 0 {
			tests = DefaultFilterTests()
		}
		filters := h.RunFilterTests(ctx, tests)
		report.Filters = &filters
	}

	if !opts.SkipConcurrency {
		workers := opts.Workers
		if workers <= 0 {
			workers = DefaultConcurrencyWorkers
		}
		concurrency := h.RunConcurrent(ctx, queries, workers, topK)
		report.Concurrency = &concurrency
	}

	h.aggregate(report, queries)
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// RunQuery executes a single query and scores its results. A failed search
// yields an empty, poor result set with Error set.
func (h *RetrievalHarness) RunQuery(ctx context.Context, q domain.SearchQuery, topK int) (domain.QueryMetrics, []domain.SearchResult) {
	start := time.Now()
	hits, err := h.vectors.Query(ctx, domain.VectorQuery{
		Text:            q.Query,
		TopK:            topK,
		IncludeMetadata: true,
	})
	latency := time.Since(start)
	if err != nil {
		logger.Warn("Search query failed for %s: %v", q.ID, err)
		m := ComputeMetrics(q, nil, latency)
		m.Error = err.Error()
		return m, nil
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		meta := hit.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		r := domain.SearchResult{
			VectorID: hit.ID,
			Content:  h.resolver.Resolve(ctx, hit),
			Score:    hit.Score,
			Metadata: meta,
		}
		AssessResult(q, &r)
		results = append(results, r)
	}
	return ComputeMetrics(q, results, latency), results
}

// RunFilterTests checks that equality filters are honoured by the vector store.
func (h *RetrievalHarness) RunFilterTests(ctx context.Context, tests []domain.FilterTest) domain.FilterSuiteResult {
	suite := domain.FilterSuiteResult{Tests: make([]domain.FilterTestResult, 0, len(tests))}
	passed := 0

	for _, test := range tests {
		filter := test.Filter
		result := domain.FilterTestResult{Name: test.Name, Query: test.Query, Filter: filter}

		hits, err := h.vectors.Query(ctx, domain.VectorQuery{
			Text:            test.Query,
			TopK:            FilterTopK,
			Filter:          &filter,
			IncludeMetadata: true,
		})
		if err != nil {
			result.Error = err.Error()
			logger.Warn("%s failed: %v", test.Name, err)
			suite.Tests = append(suite.Tests, result)
			continue
		}

		result.Returned = len(hits)
		for _, hit := range hits {
			if filter.Matches(hit.Metadata) {
				result.Matching++
			}
		}
		if result.Returned > 0 {
			result.Accuracy = float64(result.Matching) / float64(result.Returned)
		} else {
			logger.Warn("%s: no results returned", test.Name)
		}
		result.Passed = result.Returned > 0 && result.Accuracy >= FilterPassAccuracy
		if result.Passed {
			passed++
		}
		logger.Debug("%s: %.1f%% accuracy", test.Name, result.Accuracy*100)
		suite.Tests = append(suite.Tests, result)
	}

	if len(tests) > 0 {
		suite.SuccessRate = float64(passed) / float64(len(tests))
	}
	suite.Passed = len(tests) > 0 && suite.SuccessRate >= FilterSuitePassRate
	return suite
}

// RunConcurrent issues the first workers queries in parallel on a bounded
// pool. A failed query contributes a zero-latency record.
func (h *RetrievalHarness) RunConcurrent(
	ctx context.Context,
	queries []domain.SearchQuery,
	workers, topK int,
) domain.ConcurrencyMetrics {
	if workers > len(queries) {
		workers = len(queries)
	}
	subset := queries[:workers]
	latencies := make([]float64, len(subset))
	failed := make([]bool, len(subset))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))

	start := time.Now()
	for i, q := range subset {
		g.Go(func() error {
			m, _ := h.RunQuery(ctx, q, topK)
			if m.Error != "" {
				failed[i] = true
				return nil
			}
			latencies[i] = m.LatencyMS
			return nil
		})
	}
	_ = g.Wait()
	total := time.Since(start)

	metrics := domain.ConcurrencyMetrics{
		Workers:     workers,
		Queries:     len(subset),
		TotalTimeS:  total.Seconds(),
		LatenciesMS: latencies,
	}
	for i, l := range latencies {
		if failed[i] {
			metrics.Failed++
		}
		if i == 0 || l > metrics.MaxLatencyMS {
			metrics.MaxLatencyMS = l
		}
		if i == 0 || l < metrics.MinLatencyMS {
			metrics.MinLatencyMS = l
		}
		metrics.AvgLatencyMS += l
	}
	if len(latencies) > 0 {
		metrics.AvgLatencyMS /= float64(len(latencies))
	}
	if metrics.TotalTimeS > 0 {
		metrics.Throughput = float64(len(subset)) / metrics.TotalTimeS
	}

	logger.Info("Concurrent performance: %.2fs total, %.1fms avg, %.1f queries/sec",
		metrics.TotalTimeS, metrics.AvgLatencyMS, metrics.Throughput)
	return metrics
}

func (h *RetrievalHarness) aggregate(report *domain.HarnessReport, queries []domain.SearchQuery) {
	metrics := report.Queries
	summary := domain.HarnessSummary{
		TotalQueries:        len(metrics),
		QualityDistribution: make(map[domain.Quality]int),
	}

	categoryOf := make(map[string]string, len(queries))
	for _, q := range queries {
		categoryOf[q.ID] = q.Category
	}

	report.Categories = make(map[string]domain.CategoryStats)
	goodCount := 0
	for _, m := range metrics {
		summary.AvgLatencyMS += m.LatencyMS
		summary.AvgRelevanceScore += m.AvgScore
		summary.TotalRelevantResults += m.RelevantResults
		summary.TotalResults += m.ResultsCount
		summary.QualityDistribution[m.Quality]++

		category := m.Category
		if category == "" {
			category = categoryOf[m.QueryID]
		}
		stats := report.Categories[category]
		stats.TotalQueries++
		switch m.Quality {
		case domain.QualityExcellent:
			stats.ExcellentCount++
			summary.ExcellentQueries++
			goodCount++
		case domain.QualityGood:
			stats.GoodCount++
			goodCount++
		}
		stats.SuccessRate = float64(stats.ExcellentCount+stats.GoodCount) / float64(stats.TotalQueries)
		report.Categories[category] = stats
	}

	if n := len(metrics); n > 0 {
		summary.AvgLatencyMS /= float64(n)
		summary.AvgRelevanceScore /= float64(n)
		summary.SuccessRate = float64(goodCount) / float64(n)
	}
	if summary.TotalResults > 0 {
		summary.RelevanceRate = float64(summary.TotalRelevantResults) / float64(summary.TotalResults)
	}

	report.Summary = summary
	report.BestCategories = bestCategories(report.Categories, 3)
	report.Recommendations = Recommend(metrics)
	report.Verdict = VerdictFor(summary.SuccessRate)
	report.Passed = len(metrics) > 0 && summary.SuccessRate >= HarnessPassRate
}

// Recommend derives improvement hints from per-query metrics.
func Recommend(metrics []domain.QueryMetrics) []string {
	n := float64(len(metrics))
	var avgLatency float64
	poor, noKeywords, lowMetadata := 0, 0, 0
	for _, m := range metrics {
		avgLatency += m.LatencyMS
		if m.Quality == domain.QualityPoor {
			poor++
		}
		if m.KeywordMatches == 0 {
			noKeywords++
		}
		if m.MetadataAccuracy < 0.5 {
			lowMetadata++
		}
	}
	if n > 0 {
		avgLatency /= n
	}

	var recs []string
	if avgLatency > 1000 {
		recs = append(recs, RecommendLatency)
	}
	if float64(poor) > n*0.2 {
		recs = append(recs, RecommendChunking)
	}
	if float64(noKeywords) > n*0.3 {
		recs = append(recs, RecommendKeywords)
	}
	if float64(lowMetadata) > n*0.2 {
		recs = append(recs, RecommendMetadata)
	}
	if len(recs) == 0 {
		recs = append(recs, RecommendNoChanges)
	}
	return recs
}

// VerdictFor maps the share of excellent and good queries to a verdict.
func VerdictFor(successRate float64) domain.Verdict {
	switch {
	case successRate >= 0.8:
		return domain.VerdictExcellent
	case successRate >= HarnessPassRate:
		return domain.VerdictGood
	case successRate >= 0.4:
		return domain.VerdictNeedsImprovement
	default:
		return domain.VerdictFailed
	}
}

func bestCategories(stats map[string]domain.CategoryStats, n int) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := stats[names[i]].SuccessRate, stats[names[j]].SuccessRate
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
