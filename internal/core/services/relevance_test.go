package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func TestClassifyRelevance_Table(t *testing.T) {
	tests := []struct {
		typeMatch, keywordMatch, scoreMatch bool
		want                                domain.Relevance
	}{
		{true, true, true, domain.RelevanceHigh},
		{true, true, false, domain.RelevanceRelated},
		{true, false, true, domain.RelevanceRelated},
		{true, false, false, domain.RelevanceNone},
		{false, true, false, domain.RelevancePartial},
		{false, false, true, domain.RelevancePartial},
		{false, true, true, domain.RelevancePartial},
		{false, false, false, domain.RelevanceNone},
	}

	for _, tt := range tests {
		got := ClassifyRelevance(tt.typeMatch, tt.keywordMatch, tt.scoreMatch)
		assert.Equal(t, tt.want, got, "type=%v keyword=%v score=%v", tt.typeMatch, tt.keywordMatch, tt.scoreMatch)
		assert.Equal(t, got, ClassifyRelevance(tt.typeMatch, tt.keywordMatch, tt.scoreMatch))
	}
}

func TestMatchKeywords(t *testing.T) {
	content := "Built Spring Boot microservices for ING banking"

	found := MatchKeywords(content, []string{"banking", "spring boot", "Kafka", "ing", ""})

	assert.Equal(t, []string{"banking", "spring boot", "ing"}, found)
	assert.Nil(t, MatchKeywords(content, nil))
}

func TestAssessResult(t *testing.T) {
	q := domain.SearchQuery{
		ExpectedContentTypes: []domain.ChunkType{domain.ChunkTypeExperience},
		ExpectedKeywords:     []string{"Acme"},
		MinRelevanceScore:    0.5,
	}

	r := domain.SearchResult{
		Content:  "Engineer at Acme Corp: built things",
		Score:    0.5,
		Metadata: map[string]any{"chunk_type": "experience"},
	}
	AssessResult(q, &r)
	assert.Equal(t, domain.RelevanceHigh, r.Relevance)
	assert.Equal(t, []string{"Acme"}, r.MatchedKeywords)

	missingType := domain.SearchResult{Content: "nothing relevant", Score: 0.1}
	AssessResult(q, &missingType)
	assert.Equal(t, domain.RelevanceNone, missingType.Relevance)
}

func TestClassifyQuality_Boundaries(t *testing.T) {
	assert.Equal(t, domain.QualityExcellent, ClassifyQuality(0.8, 0.75))
	assert.Equal(t, domain.QualityGood, ClassifyQuality(0.79, 0.99))
	assert.Equal(t, domain.QualityGood, ClassifyQuality(0.8, 0.74))
	assert.Equal(t, domain.QualityGood, ClassifyQuality(0.6, 0.65))
	assert.Equal(t, domain.QualityFair, ClassifyQuality(0.4, 0.55))
	assert.Equal(t, domain.QualityPoor, ClassifyQuality(0.39, 0.9))
	assert.Equal(t, domain.QualityPoor, ClassifyQuality(1.0, 0.54))
}

func TestComputeMetrics_ExcellentAtBoundary(t *testing.T) {
	q := domain.SearchQuery{
		ID:                   "q1",
		Category:             "experience",
		ExpectedContentTypes: []domain.ChunkType{domain.ChunkTypeExperience, domain.ChunkTypeProject},
	}
	results := make([]domain.SearchResult, 5)
	for i := range results {
		results[i] = domain.SearchResult{
			Score:           0.75,
			Relevance:       domain.RelevanceRelated,
			Metadata:        map[string]any{"chunk_type": "experience"},
			MatchedKeywords: []string{"a"},
		}
	}
	results[4].Relevance = domain.RelevancePartial

	m := ComputeMetrics(q, results, 20*time.Millisecond)

	assert.Equal(t, 5, m.ResultsCount)
	assert.Equal(t, 4, m.RelevantResults)
	assert.Equal(t, 0.75, m.AvgScore)
	assert.Equal(t, 0.75, m.TopScore)
	assert.Equal(t, 5, m.KeywordMatches)
	assert.Equal(t, 0.5, m.MetadataAccuracy)
	assert.Equal(t, 20.0, m.LatencyMS)
	assert.Equal(t, domain.QualityExcellent, m.Quality)
	assert.Equal(t, "experience", m.Category)
}

func TestComputeMetrics_BelowExcellent(t *testing.T) {
	q := domain.SearchQuery{ID: "q1"}
	results := make([]domain.SearchResult, 100)
	for i := range results {
		results[i] = domain.SearchResult{Score: 0.95}
		if i < 79 {
			results[i].Relevance = domain.RelevanceHigh
		}
	}

	m := ComputeMetrics(q, results, time.Millisecond)

	assert.NotEqual(t, domain.QualityExcellent, m.Quality)
	assert.Equal(t, domain.QualityGood, m.Quality)
}

func TestComputeMetrics_ZeroResults(t *testing.T) {
	q := domain.SearchQuery{ID: "q1", ExpectedContentTypes: []domain.ChunkType{domain.ChunkTypeExperience}}

	m := ComputeMetrics(q, nil, 3*time.Millisecond)

	assert.Greater(t, m.LatencyMS, 0.0)
	assert.Equal(t, 0, m.ResultsCount)
	assert.Equal(t, 0.0, m.AvgScore)
	assert.Equal(t, 0.0, m.TopScore)
	assert.Equal(t, 0.0, m.MetadataAccuracy)
	assert.Equal(t, domain.QualityPoor, m.Quality)
}

func TestComputeMetrics_UnknownTypeCounted(t *testing.T) {
	q := domain.SearchQuery{ExpectedContentTypes: []domain.ChunkType{"unknown"}}
	m := ComputeMetrics(q, []domain.SearchResult{{Score: 0.1}}, time.Millisecond)
	assert.Equal(t, 1.0, m.MetadataAccuracy)
}
