package domain

import "unicode/utf8"

// ChunkType tags what a chunk was derived from.
type ChunkType string

const (
	ChunkTypeExperience   ChunkType = "experience"
	ChunkTypeProject      ChunkType = "project"
	ChunkTypeSkills       ChunkType = "skills"
	ChunkTypeEducation    ChunkType = "education"
	ChunkTypeSummary      ChunkType = "summary"
	ChunkTypePersonalInfo ChunkType = "personal_info"
)

// Importance is an ordinal weighting used by relevance ranking.
type Importance string

const (
	ImportanceCritical Importance = "critical"
	ImportanceHigh     Importance = "high"
	ImportanceMedium   Importance = "medium"
	ImportanceLow      Importance = "low"
)

const (
	// DefaultSearchWeight is the mid-range search weight.
	DefaultSearchWeight = 5

	// MinContentLength is the shortest content that still carries semantic signal.
	MinContentLength = 50

	// UnknownDateRange is written to vector metadata when a chunk has no date range.
	UnknownDateRange = "unknown"
)

// ContentChunk is the atomic retrieval unit written to both stores.
// Chunks are never mutated after extraction; a re-run recomputes the same ID.
type ContentChunk struct {
	ID           string         `json:"id"`
	Content      string         `json:"content"`
	Type         ChunkType      `json:"chunk_type"`
	Title        string         `json:"title"`
	Metadata     map[string]any `json:"metadata"`
	Importance   Importance     `json:"importance"`
	DateRange    string         `json:"date_range,omitempty"`
	SearchWeight int            `json:"search_weight"`
}

// ContentLength returns the content length in characters.
func (c ContentChunk) ContentLength() int {
	return utf8.RuneCountInString(c.Content)
}

// IndexedVector is the vector-store projection of a ContentChunk.
// Data is raw text; the vector service computes the embedding.
type IndexedVector struct {
	ID       string
	Data     string
	Metadata map[string]any
}

// NewIndexedVector projects a chunk into its vector-store form. The metadata
// is the chunk metadata plus the persisted chunk fields and content_length.
func NewIndexedVector(c ContentChunk) IndexedVector {
	meta := make(map[string]any, len(c.Metadata)+6)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta["chunk_type"] = string(c.Type)
	meta["title"] = c.Title
	meta["importance"] = string(c.Importance)
	meta["search_weight"] = c.SearchWeight
	dateRange := c.DateRange
	if dateRange == "" {
		dateRange = UnknownDateRange
	}
	meta["date_range"] = dateRange
	meta["content_length"] = c.ContentLength()

	return IndexedVector{ID: c.ID, Data: c.Content, Metadata: meta}
}

// StoredChunk is a chunk row read back from the relational store.
type StoredChunk struct {
	ContentChunk
	VectorID string
}

// ResolvedText returns "title: content" when both are set, otherwise whichever is present.
func (s StoredChunk) ResolvedText() string {
	switch {
	case s.Title != "" && s.Content != "":
		return s.Title + ": " + s.Content
	case s.Content != "":
		return s.Content
	default:
		return s.Title
	}
}
