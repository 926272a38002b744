package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DefaultTopK is the number of nearest items requested per harness query.
const DefaultTopK = 10

// VectorFilter is an equality predicate over a vector metadata field.
type VectorFilter struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

var filterFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Validate reports whether the filter renders as a single equality
// predicate: an identifier field and a value that fits in one quoted literal.
func (f VectorFilter) Validate() error {
	if !filterFieldPattern.MatchString(f.Field) {
		return &ValidationError{Field: "filter", Reason: fmt.Sprintf("invalid field name %q", f.Field)}
	}
	if f.Value == "" {
		return &ValidationError{Field: "filter", Reason: "empty value"}
	}
	if strings.Contains(f.Value, "'") && strings.Contains(f.Value, `"`) {
		return &ValidationError{Field: "filter", Reason: "value mixes single and double quotes"}
	}
	if strings.ContainsFunc(f.Value, func(r rune) bool { return r == '\\' || unicode.IsControl(r) }) {
		return &ValidationError{Field: "filter", Reason: "value contains a backslash or control character"}
	}
	return nil
}

// Expression renders the filter in the vector service's SQL-like syntax,
// e.g. chunk_type = 'experience'. Values holding a single quote are
// double-quoted. Only valid filters render faithfully.
func (f VectorFilter) Expression() string {
	quote := "'"
	if strings.Contains(f.Value, "'") {
		quote = `"`
	}
	return f.Field + " = " + quote + f.Value + quote
}

// Matches reports whether the metadata satisfies the filter.
func (f VectorFilter) Matches(meta map[string]any) bool {
	v, ok := meta[f.Field]
	if !ok {
		return false
	}
	return MetadataString(v) == f.Value
}

// VectorQuery is a query-by-text request to the vector service.
type VectorQuery struct {
	Text            string
	TopK            int
	Filter          *VectorFilter
	IncludeMetadata bool
}

// VectorHit is one ranked result returned by the vector service.
// Adapters validate the wire response once and hand back this shape.
type VectorHit struct {
	ID       string
	Score    float64
	Metadata map[string]any
}

// MetaString returns the named metadata value as a string, or "".
func (h VectorHit) MetaString(key string) string {
	v, ok := h.Metadata[key]
	if !ok {
		return ""
	}
	return MetadataString(v)
}

// VectorInfo is the global configuration reported by the vector service.
type VectorInfo struct {
	Dimension          int    `json:"dimension"`
	VectorCount        int    `json:"vector_count"`
	SimilarityFunction string `json:"similarity_function"`
}

// MetadataString formats a scalar metadata value for comparison.
func MetadataString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// SearchOptions configures an ad-hoc search.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Filter restricts results to matching metadata.
	Filter *VectorFilter
}

// SearchQuery is a fixed validation query with its expected relevance profile.
type SearchQuery struct {
	ID                   string      `json:"id"`
	Query                string      `json:"query"`
	Category             string      `json:"category"`
	ExpectedContentTypes []ChunkType `json:"expected_content_types"`
	ExpectedKeywords     []string    `json:"expected_keywords"`
	MinRelevanceScore    float64     `json:"min_relevance_score"`
}

// Relevance is the categorical judgement of a single hit.
type Relevance string

const (
	RelevanceHigh    Relevance = "highly_relevant"
	RelevanceRelated Relevance = "relevant"
	RelevancePartial Relevance = "partially_relevant"
	RelevanceNone    Relevance = "not_relevant"
)

// Counts reports whether the assessment counts as a relevant result.
func (r Relevance) Counts() bool {
	return r == RelevanceHigh || r == RelevanceRelated
}

// SearchResult is one ranked hit with content resolved from the relational store.
type SearchResult struct {
	VectorID  string         `json:"vector_id"`
	Content   string         `json:"content"`
	Score     float64        `json:"score"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Relevance Relevance      `json:"relevance_assessment,omitempty"`

	// MatchedKeywords are the expected keywords found in Content.
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// ChunkType returns the result's chunk_type metadata.
func (r SearchResult) ChunkType() ChunkType {
	return ChunkType(MetadataString(r.Metadata["chunk_type"]))
}

// FilterTest is a metadata-filter probe: a query constrained by Filter whose
// results should all satisfy it.
type FilterTest struct {
	Name   string       `json:"name"`
	Query  string       `json:"query"`
	Filter VectorFilter `json:"filter"`
}

// HarnessOptions configures a retrieval quality run.
type HarnessOptions struct {
	// Queries is the validation suite. Empty uses the default suite.
	Queries []SearchQuery

	// FilterTests are the metadata-filter probes. Empty uses the defaults.
	FilterTests []FilterTest

	// TopK is the number of hits requested per query. Zero uses DefaultTopK.
	TopK int

	// Workers is the concurrency-mode pool size and subset size.
	Workers int

	SkipFilters     bool
	SkipConcurrency bool
}
