package driving

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// SearchService provides ad-hoc semantic search with resolved content.
type SearchService interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
