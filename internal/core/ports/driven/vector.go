package driven

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// VectorStore is a text-in similarity service. It embeds the raw text it is
// given; twinsync never computes vectors itself.
type VectorStore interface {
	// Upsert inserts or replaces vectors by ID. The whole batch fails or succeeds.
	Upsert(ctx context.Context, vectors []domain.IndexedVector) error

	// Query returns up to TopK hits ranked by similarity, honouring Filter.
	Query(ctx context.Context, q domain.VectorQuery) ([]domain.VectorHit, error)

	// Info reports the index configuration and total vector count.
	// It doubles as the connectivity check.
	Info(ctx context.Context) (domain.VectorInfo, error)
}

// VectorLister is implemented by vector stores that can enumerate every ID.
type VectorLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// VectorResetter is implemented by vector stores that can drop all vectors.
type VectorResetter interface {
	Reset(ctx context.Context) error
}
