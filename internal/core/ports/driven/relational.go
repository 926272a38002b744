package driven

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// ProfileStore persists the structured sections of a profile.
// Each Save method returns the number of rows written.
type ProfileStore interface {
	// SaveProfessional upserts the identity row and returns its ID.
	SaveProfessional(ctx context.Context, info domain.PersonalInfo) (int64, error)

	SaveExperiences(ctx context.Context, professionalID int64, entries []domain.ExperienceEntry) (int, error)
	SaveSkills(ctx context.Context, professionalID int64, skills domain.SkillSet) (int, error)
	SaveProjects(ctx context.Context, professionalID int64, entries []domain.ProjectEntry) (int, error)
	SaveEducation(ctx context.Context, professionalID int64, entries []domain.EducationEntry) (int, error)

	// SaveDocument stores the raw source document.
	SaveDocument(ctx context.Context, professionalID int64, raw []byte, version string) error
}

// ChunkStore persists content chunks keyed by their ID.
type ChunkStore interface {
	// SaveChunk upserts a chunk row with vector_id equal to the chunk ID.
	SaveChunk(ctx context.Context, chunk domain.ContentChunk) error

	// GetChunk returns domain.ErrNotFound when no row exists.
	GetChunk(ctx context.Context, id string) (*domain.StoredChunk, error)

	// ListChunkIDs returns all chunk IDs, sorted.
	ListChunkIDs(ctx context.Context) ([]string, error)

	// ListChunks returns all chunk rows, sorted by ID.
	ListChunks(ctx context.Context) ([]domain.StoredChunk, error)
}

// AuditStore answers the integrity questions asked during reconciliation.
type AuditStore interface {
	// CountRows returns the row count of a known table.
	CountRows(ctx context.Context, table string) (int, error)

	// CountEmpty returns rows where field is NULL or blank.
	CountEmpty(ctx context.Context, check domain.FieldCheck) (int, error)
}

// RelationalStore is the full relational side of the dual write.
type RelationalStore interface {
	ProfileStore
	ChunkStore
	AuditStore

	// Ping verifies the connection.
	Ping(ctx context.Context) error

	// EnsureSchema applies migrations. Reset drops the portfolio tables first.
	EnsureSchema(ctx context.Context, reset bool) error

	// Close releases resources.
	Close() error
}
