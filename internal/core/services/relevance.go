package services

import (
	"strings"
	"time"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// unknownChunkType stands in for hits without chunk_type metadata.
const unknownChunkType = domain.ChunkType("unknown")

// ClassifyRelevance combines the three relevance signals:
//
//	type, keyword, score       -> highly_relevant
//	type and (keyword or score) -> relevant
//	keyword or score            -> partially_relevant
//	none                        -> not_relevant
func ClassifyRelevance(typeMatch, keywordMatch, scoreMatch bool) domain.Relevance {
	switch {
	case typeMatch && keywordMatch && scoreMatch:
		return domain.RelevanceHigh
	case typeMatch && (keywordMatch || scoreMatch):
		return domain.RelevanceRelated
	case keywordMatch || scoreMatch:
		return domain.RelevancePartial
	default:
		return domain.RelevanceNone
	}
}

// MatchKeywords returns the keywords found in content, case-insensitively,
// in the order given.
func MatchKeywords(content string, keywords []string) []string {
	lower := strings.ToLower(content)
	var found []string
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

// AssessResult fills the relevance fields of a resolved result.
func AssessResult(q domain.SearchQuery, r *domain.SearchResult) {
	r.MatchedKeywords = MatchKeywords(r.Content, q.ExpectedKeywords)

	resultType := r.ChunkType()
	if resultType == "" {
		resultType = unknownChunkType
	}
	typeMatch := false
	for _, t := range q.ExpectedContentTypes {
		if t == resultType {
			typeMatch = true
			break
		}
	}

	r.Relevance = ClassifyRelevance(typeMatch, len(r.MatchedKeywords) > 0, r.Score >= q.MinRelevanceScore)
}

// ClassifyQuality tags a query from its relevant-result ratio and mean score.
func ClassifyQuality(relevantRatio, avgScore float64) domain.Quality {
	switch {
	case relevantRatio >= 0.8 && avgScore >= 0.75:
		return domain.QualityExcellent
	case relevantRatio >= 0.6 && avgScore >= 0.65:
		return domain.QualityGood
	case relevantRatio >= 0.4 && avgScore >= 0.55:
		return domain.QualityFair
	default:
		return domain.QualityPoor
	}
}

// ComputeMetrics aggregates assessed results for one query. Zero results
// always yields poor quality with zeroed scores; latency is kept.
func ComputeMetrics(q domain.SearchQuery, results []domain.SearchResult, latency time.Duration) domain.QueryMetrics {
	m := domain.QueryMetrics{
		QueryID:      q.ID,
		QueryText:    q.Query,
		Category:     q.Category,
		LatencyMS:    float64(latency) / float64(time.Millisecond),
		ResultsCount: len(results),
		Quality:      domain.QualityPoor,
	}
	if len(results) == 0 {
		return m
	}

	var sum float64
	found := make(map[domain.ChunkType]bool)
	for i, r := range results {
		sum += r.Score
		if i == 0 || r.Score > m.TopScore {
			m.TopScore = r.Score
		}
		if r.Relevance.Counts() {
			m.RelevantResults++
		}
		m.KeywordMatches += len(r.MatchedKeywords)

		t := r.ChunkType()
		if t == "" {
			t = unknownChunkType
		}
		found[t] = true
	}
	m.AvgScore = sum / float64(len(results))

	expected := make(map[domain.ChunkType]bool, len(q.ExpectedContentTypes))
	for _, t := range q.ExpectedContentTypes {
		expected[t] = true
	}
	if len(expected) > 0 {
		overlap := 0
		for t := range expected {
			if found[t] {
				overlap++
			}
		}
		m.MetadataAccuracy = float64(overlap) / float64(len(expected))
	}

	m.Quality = ClassifyQuality(float64(m.RelevantResults)/float64(len(results)), m.AvgScore)
	return m
}
