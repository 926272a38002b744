package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// ContentResolver maps vector hits back to authoritative relational content.
// Resolution never fails; it degrades to the metadata title and then to the ID.
type ContentResolver struct {
	chunks driven.ChunkStore
	cache  driven.ContentCache
}

// NewContentResolver creates a resolver. cache may be nil.
func NewContentResolver(chunks driven.ChunkStore, cache driven.ContentCache) *ContentResolver {
	return &ContentResolver{chunks: chunks, cache: cache}
}

// Resolve returns the text for a hit.
func (r *ContentResolver) Resolve(ctx context.Context, hit domain.VectorHit) string {
	if hit.ID == "" {
		return "Vector ID: unknown"
	}

	if r.cache != nil {
		text, err := r.cache.Get(ctx, hit.ID)
		if err == nil && text != "" {
			return text
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Content cache read for %s failed: %v", hit.ID, err)
		}
	}

	if r.chunks != nil {
		row, err := r.chunks.GetChunk(ctx, hit.ID)
		switch {
		case err == nil:
			if text := row.ResolvedText(); text != "" {
				r.remember(ctx, hit.ID, text)
				return text
			}
		case errors.Is(err, domain.ErrNotFound):
			logger.Debug("No relational row for vector %s", hit.ID)
		default:
			logger.Warn("Resolving %s: %v", hit.ID, err)
		}
	}

	if title := hit.MetaString("title"); title != "" {
		return title
	}
	return "Vector ID: " + hit.ID
}

func (r *ContentResolver) remember(ctx context.Context, id, text string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, id, text); err != nil {
		logger.Debug("Content cache write for %s failed: %v", id, err)
	}
}
