package domain

import "time"

// Quality is the overall quality tag of one query's results.
type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityPoor      Quality = "poor"
)

// QueryMetrics aggregates the results of a single harness query.
type QueryMetrics struct {
	QueryID          string  `json:"query_id"`
	QueryText        string  `json:"query_text"`
	Category         string  `json:"category"`
	LatencyMS        float64 `json:"latency_ms"`
	ResultsCount     int     `json:"results_count"`
	AvgScore         float64 `json:"avg_score"`
	TopScore         float64 `json:"top_score"`
	RelevantResults  int     `json:"relevant_results"`
	KeywordMatches   int     `json:"keyword_matches"`
	MetadataAccuracy float64 `json:"metadata_accuracy"`
	Quality          Quality `json:"overall_quality"`

	// Error is set when the search call itself failed.
	Error string `json:"error,omitempty"`
}

// FilterTestResult is the outcome of one metadata-filter probe.
type FilterTestResult struct {
	Name     string       `json:"name"`
	Query    string       `json:"query"`
	Filter   VectorFilter `json:"filter"`
	Returned int          `json:"returned"`
	Matching int          `json:"matching"`
	Accuracy float64      `json:"accuracy"`
	Passed   bool         `json:"passed"`
	Error    string       `json:"error,omitempty"`
}

// FilterSuiteResult summarises all metadata-filter probes.
type FilterSuiteResult struct {
	Tests       []FilterTestResult `json:"tests"`
	SuccessRate float64            `json:"success_rate"`
	Passed      bool               `json:"passed"`
}

// ConcurrencyMetrics describes a parallel burst of harness queries.
type ConcurrencyMetrics struct {
	Workers      int       `json:"workers"`
	Queries      int       `json:"queries"`
	TotalTimeS   float64   `json:"total_time"`
	AvgLatencyMS float64   `json:"avg_latency"`
	MaxLatencyMS float64   `json:"max_latency"`
	MinLatencyMS float64   `json:"min_latency"`
	Throughput   float64   `json:"throughput"`
	LatenciesMS  []float64 `json:"latencies_ms"`
	Failed       int       `json:"failed"`
}

// CategoryStats is the per-category share of excellent and good queries.
type CategoryStats struct {
	TotalQueries   int     `json:"total_queries"`
	ExcellentCount int     `json:"excellent_count"`
	GoodCount      int     `json:"good_count"`
	SuccessRate    float64 `json:"success_rate"`
}

// Verdict is the overall harness judgement.
type Verdict string

const (
	VerdictExcellent        Verdict = "excellent"
	VerdictGood             Verdict = "good"
	VerdictNeedsImprovement Verdict = "needs_improvement"
	VerdictFailed           Verdict = "failed"
)

// HarnessSummary carries the aggregate retrieval metrics.
type HarnessSummary struct {
	TotalQueries         int             `json:"total_queries"`
	AvgLatencyMS         float64         `json:"avg_latency_ms"`
	AvgRelevanceScore    float64         `json:"avg_relevance_score"`
	TotalRelevantResults int             `json:"total_relevant_results"`
	TotalResults         int             `json:"total_results"`
	RelevanceRate        float64         `json:"relevance_rate"`
	QualityDistribution  map[Quality]int `json:"quality_distribution"`
	SuccessRate          float64         `json:"success_rate"`
	ExcellentQueries     int             `json:"excellent_queries"`
}

// HarnessReport is the full output of a retrieval quality run.
type HarnessReport struct {
	Summary         HarnessSummary            `json:"test_summary"`
	Filters         *FilterSuiteResult        `json:"filter_tests,omitempty"`
	Concurrency     *ConcurrencyMetrics       `json:"concurrent_performance,omitempty"`
	Categories      map[string]CategoryStats  `json:"category_analysis"`
	BestCategories  []string                  `json:"best_categories"`
	Queries         []QueryMetrics            `json:"detailed_results"`
	Results         map[string][]SearchResult `json:"-"`
	Recommendations []string                  `json:"recommendations"`
	Verdict         Verdict                   `json:"verdict"`
	Passed          bool                      `json:"passed"`
}

// IssueCategory groups reconciliation findings.
type IssueCategory string

const (
	IssueIDDrift      IssueCategory = "id_drift"
	IssueFieldNull    IssueCategory = "field_completeness"
	IssueDimension    IssueCategory = "dimension"
	IssueCount        IssueCategory = "vector_count"
	IssueRowCount     IssueCategory = "row_count"
	IssueContent      IssueCategory = "content_quality"
	IssueConnectivity IssueCategory = "connectivity"
)

// Issue is one itemised finding.
type Issue struct {
	Category IssueCategory `json:"category"`
	Message  string        `json:"message"`
}

// FieldCheck identifies a required (table, field) pair.
type FieldCheck struct {
	Table string `json:"table"`
	Field string `json:"field"`
}

// FieldCount is the number of null or empty values found for a FieldCheck.
type FieldCount struct {
	FieldCheck
	Empty int `json:"empty"`
}

// ReconciliationReport is the result of a cross-store audit.
// Drift is represented here, never raised as an error.
type ReconciliationReport struct {
	RelationalCount    int    `json:"relational_count"`
	VectorCount        int    `json:"vector_count"`
	ExpectedDimension  int    `json:"expected_dimension"`
	ActualDimension    int    `json:"actual_dimension"`
	SimilarityFunction string `json:"similarity_function,omitempty"`

	MissingInVector     []string `json:"missing_in_vector"`
	MissingInRelational []string `json:"missing_in_relational"`

	// SampledVectorIDs is true when vector ids came from a broad query
	// rather than a full listing; the id diff is then best effort.
	SampledVectorIDs bool `json:"sampled_vector_ids"`

	Fields                 []FieldCount       `json:"field_completeness"`
	TableCounts            map[string]int     `json:"table_counts,omitempty"`
	TypeDistribution       map[ChunkType]int  `json:"type_distribution,omitempty"`
	ImportanceDistribution map[Importance]int `json:"importance_distribution,omitempty"`
	ShortContent           []string           `json:"short_content,omitempty"`

	Issues []Issue `json:"issues"`
	Passed bool    `json:"passed"`
}

// AddIssue records a finding and marks the report as failed.
func (r *ReconciliationReport) AddIssue(category IssueCategory, message string) {
	r.Issues = append(r.Issues, Issue{Category: category, Message: message})
	r.Passed = false
}

// ValidationReport is the persisted output of reconcile and evaluate runs.
type ValidationReport struct {
	RunID          string                `json:"run_id"`
	Timestamp      time.Time             `json:"timestamp"`
	Reconciliation *ReconciliationReport `json:"reconciliation,omitempty"`
	Harness        *HarnessReport        `json:"harness,omitempty"`
}

// Passed reports whether every included check passed.
func (v ValidationReport) Passed() bool {
	if v.Reconciliation != nil && !v.Reconciliation.Passed {
		return false
	}
	if v.Harness != nil && !v.Harness.Passed {
		return false
	}
	return true
}
