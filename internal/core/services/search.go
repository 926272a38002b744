package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService runs ad-hoc semantic queries and resolves their content.
type SearchService struct {
	vectors  driven.VectorStore
	resolver *ContentResolver
}

// NewSearchService creates a new search service.
func NewSearchService(vectors driven.VectorStore, resolver *ContentResolver) *SearchService {
	return &SearchService{vectors: vectors, resolver: resolver}
}

// Search queries the vector store and resolves each hit.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &domain.ValidationError{Field: "query", Reason: "empty query"}
	}
	if opts.Filter != nil {
		if err := opts.Filter.Validate(); err != nil {
			return nil, err
		}
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	hits, err := s.vectors.Query(ctx, domain.VectorQuery{
		Text:            query,
		TopK:            limit,
		Filter:          opts.Filter,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, domain.SearchResult{
			VectorID: hit.ID,
			Content:  s.resolver.Resolve(ctx, hit),
			Score:    hit.Score,
			Metadata: hit.Metadata,
		})
	}
	return results, nil
}
