package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
)

// Ensure VectorStore implements the interfaces.
var (
	_ driven.VectorStore    = (*VectorStore)(nil)
	_ driven.VectorLister   = (*VectorStore)(nil)
	_ driven.VectorResetter = (*VectorStore)(nil)
)

type vectorEntry struct {
	data     string
	terms    map[string]float64
	norm     float64
	metadata map[string]any
}

// VectorStore is an in-memory text-in vector store for tests and dry runs.
// Similarity is the cosine of term-frequency vectors, so identical wording
// scores 1 and disjoint wording scores 0.
type VectorStore struct {
	mu        sync.RWMutex
	dimension int
	entries   map[string]vectorEntry
}

// NewVectorStore creates a store that reports the given dimension from Info.
func NewVectorStore(dimension int) *VectorStore {
	if dimension <= 0 {
		dimension = domain.DefaultExpectedDimension
	}
	return &VectorStore{
		dimension: dimension,
		entries:   make(map[string]vectorEntry),
	}
}

// Upsert inserts or replaces vectors by ID.
func (s *VectorStore) Upsert(_ context.Context, vectors []domain.IndexedVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		terms, norm := termVector(v.Data)
		meta := make(map[string]any, len(v.Metadata))
		for k, val := range v.Metadata {
			meta[k] = val
		}
		s.entries[v.ID] = vectorEntry{data: v.Data, terms: terms, norm: norm, metadata: meta}
	}
	return nil
}

// Query ranks stored entries against the query text.
func (s *VectorStore) Query(ctx context.Context, q domain.VectorQuery) ([]domain.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms, norm := termVector(q.Text)

	s.mu.RLock()
	hits := make([]domain.VectorHit, 0, len(s.entries))
	for id, e := range s.entries {
		if q.Filter != nil && !q.Filter.Matches(e.metadata) {
			continue
		}
		hit := domain.VectorHit{ID: id, Score: cosine(terms, norm, e.terms, e.norm)}
		if q.IncludeMetadata {
			hit.Metadata = make(map[string]any, len(e.metadata))
			for k, v := range e.metadata {
				hit.Metadata[k] = v
			}
		}
		hits = append(hits, hit)
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	topK := q.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Info reports the configured dimension and current count.
func (s *VectorStore) Info(_ context.Context) (domain.VectorInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.VectorInfo{
		Dimension:          s.dimension,
		VectorCount:        len(s.entries),
		SimilarityFunction: "COSINE",
	}, nil
}

// ListIDs returns every stored ID, sorted.
func (s *VectorStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Reset removes every vector.
func (s *VectorStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]vectorEntry)
	return nil
}

// Delete removes a single vector. Used to simulate drift.
func (s *VectorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func termVector(text string) (map[string]float64, float64) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make(map[string]float64, len(words))
	for _, w := range words {
		terms[w]++
	}
	var sum float64
	for _, f := range terms {
		sum += f * f
	}
	return terms, math.Sqrt(sum)
}

func cosine(a map[string]float64, normA float64, b map[string]float64, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, fa := range a {
		dot += fa * b[term]
	}
	return dot / (normA * normB)
}
