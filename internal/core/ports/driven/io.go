package driven

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// ProfileLoader reads the source profile document.
type ProfileLoader interface {
	Load(ctx context.Context, path string) (*domain.ProfileDocument, error)
}

// ContentCache caches resolved chunk text by chunk ID.
type ContentCache interface {
	// Get returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, id string) (string, error)
	Set(ctx context.Context, id, content string) error

	// Delete drops the entries for ids. Unknown IDs are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Clear drops every entry.
	Clear(ctx context.Context) error
}

// ReportWriter persists a validation report and returns where it was written.
type ReportWriter interface {
	Write(ctx context.Context, report domain.ValidationReport) (string, error)
}
