package driving

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// Extractor turns a profile document into retrieval chunks.
type Extractor interface {
	// Extract is pure; the same document always yields the same chunk IDs.
	Extract(doc *domain.ProfileDocument) ([]domain.ContentChunk, error)

	// QualityIssues lists chunks whose content is too short to carry signal.
	QualityIssues(chunks []domain.ContentChunk) []string
}

// MigrationService writes a profile into both stores.
type MigrationService interface {
	Migrate(ctx context.Context, doc *domain.ProfileDocument, opts domain.MigrationOptions) (*domain.MigrationResult, error)
}

// ReconcileService audits the two stores for drift.
type ReconcileService interface {
	// Reconcile returns an error only for connectivity failures.
	Reconcile(ctx context.Context, opts domain.ReconcileOptions) (*domain.ReconciliationReport, error)
}

// HarnessService runs the retrieval quality suite.
type HarnessService interface {
	Run(ctx context.Context, opts domain.HarnessOptions) (*domain.HarnessReport, error)
}
