package mcp

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
)

// ChunkReader reads chunk rows for the chunk resources.
type ChunkReader interface {
	GetChunk(ctx context.Context, id string) (*domain.StoredChunk, error)
	ListChunks(ctx context.Context) ([]domain.StoredChunk, error)
}

// Ports aggregates the services the MCP server exposes.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search provides semantic search over the profile.
	Search driving.SearchService

	// Reconcile audits the stores. Optional.
	Reconcile driving.ReconcileService

	// Chunks backs the chunk resources. Optional.
	Chunks ChunkReader
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
