package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// Ensure MigrationCoordinator implements the interface.
var _ driving.MigrationService = (*MigrationCoordinator)(nil)

// Step names recorded in a MigrationResult.
const (
	StepSchema        = "schema"
	StepResetVectors  = "reset_vectors"
	StepProfessional  = "professional"
	StepExperiences   = "experiences"
	StepSkills        = "skills"
	StepProjects      = "projects"
	StepEducation     = "education"
	StepDocument      = "json_content"
	StepExtract       = "extract_chunks"
	StepContentChunks = "content_chunks"
	StepVectorIndex   = "vector_index"
	StepSmokeSearch   = "smoke_search"
)

// MigrationCoordinator writes a profile to the relational store and the
// vector store under shared chunk IDs.
//
// For every chunk the relational row is written before its vector upsert is
// attempted, so a later audit can always tell a pending upsert from an orphan.
// There is no cross-store transaction and nothing is rolled back.
type MigrationCoordinator struct {
	relational driven.RelationalStore
	vectors    driven.VectorStore
	extractor  driving.Extractor
	cache      driven.ContentCache
}

// NewMigrationCoordinator creates a new migration coordinator.
// A nil extractor uses ChunkExtractor.
func NewMigrationCoordinator(
	relational driven.RelationalStore,
	vectors driven.VectorStore,
	extractor driving.Extractor,
) *MigrationCoordinator {
	if extractor == nil {
		extractor = NewChunkExtractor()
	}
	return &MigrationCoordinator{
		relational: relational,
		vectors:    vectors,
		extractor:  extractor,
	}
}

// WithCache sets the content cache to invalidate as chunk rows change.
// cache may be nil.
func (m *MigrationCoordinator) WithCache(cache driven.ContentCache) *MigrationCoordinator {
	m.cache = cache
	return m
}

// Migrate runs one migration pass and returns its result. The result is
// returned even when err is non-nil so callers can report partial progress.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (m *MigrationCoordinator) Migrate(
	ctx context.Context,
	doc *domain.ProfileDocument,
	opts domain.MigrationOptions,
) (*domain.MigrationResult, error) {
	res := &domain.MigrationResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    opts.DryRun,
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	logger.Section("Migration " + res.RunID)

	// 1. Validate required sections
	if doc == nil {
		return res, &domain.ValidationError{Field: "document", Reason: "no document", Err: domain.ErrMissingSection}
	}
	if missing := doc.MissingSections(); len(missing) > 0 {
		return res, &domain.ValidationError{
			Field:  strings.Join(missing, ", "),
			Reason: "required section missing",
			Err:    domain.ErrMissingSection,
		}
	}

	if opts.DryRun {
		return m.dryRun(doc, opts, res), nil
	}

	// 2. Connectivity
	if err := m.ping(ctx); err != nil {
		return res, err
	}

	// 3. Schema
	if err := m.relational.EnsureSchema(ctx, opts.Reset); err != nil {
		res.AddStep(StepSchema, 0, err)
		return res, fmt.Errorf("ensure schema: %w", err)
	}
	res.AddStep(StepSchema, 0, nil)

	if opts.Reset {
		m.clearCache(ctx)
		if resetter, ok := m.vectors.(driven.VectorResetter); ok {
			err := resetter.Reset(ctx)
			res.AddStep(StepResetVectors, 0, err)
			if err != nil {
				return res, fmt.Errorf("reset vectors: %w", err)
			}
		}
	}

	// 4. Structured records
	m.persistRecords(ctx, doc, res)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// 5. Chunks
	chunks, err := m.extractor.Extract(doc)
	res.AddStep(StepExtract, len(chunks), err)
	if err != nil {
		logger.Warn("Extraction failed: %v", err)
		return res, nil
	}
	res.Extracted = len(chunks)
	res.Quality = m.extractor.QualityIssues(chunks)
	for _, id := range res.Quality {
		logger.Warn("Chunk %s is shorter than %d characters", id, domain.MinContentLength)
	}

	committed, err := m.writeChunks(ctx, chunks, res)
	if err != nil {
		return res, err
	}

	// 6. Vector phase
	if err := m.indexChunks(ctx, committed, opts, res); err != nil {
		return res, err
	}

	// 7. Smoke search
	if opts.Smoke {
		m.smoke(ctx, res)
	}

	logger.Info("Migration %s: %d committed, %d failed, %d indexed in %d batches",
		res.RunID, len(res.Committed), len(res.Failed), len(res.Indexed), res.Batches)
	return res, nil
}

func (m *MigrationCoordinator) ping(ctx context.Context) error {
	if err := m.relational.Ping(ctx); err != nil {
		return fmt.Errorf("%w: relational: %w", domain.ErrStoreUnavailable, err)
	}
	info, err := m.vectors.Info(ctx)
	if err != nil {
		return fmt.Errorf("%w: vector: %w", domain.ErrStoreUnavailable, err)
	}
	logger.Debug("Vector store reachable: %d vectors, dimension %d", info.VectorCount, info.Dimension)
	return nil
}

// persistRecords writes the structured sections. Every step runs regardless
// of earlier failures; sections that need the professional row are skipped
// when it could not be written.
func (m *MigrationCoordinator) persistRecords(ctx context.Context, doc *domain.ProfileDocument, res *domain.MigrationResult) {
	pid, err := m.relational.SaveProfessional(ctx, *doc.PersonalInfo)
	res.AddStep(StepProfessional, boolRows(err == nil), err)
	if err != nil {
		logger.Warn("Failed to save professional: %v", err)
		for _, name := range []string{StepExperiences, StepSkills, StepProjects, StepEducation, StepDocument} {
			res.SkipStep(name)
		}
		return
	}

	steps := []struct {
		name string
		run  func() (int, error)
	}{
		{StepExperiences, func() (int, error) { return m.relational.SaveExperiences(ctx, pid, doc.Experience) }},
		{StepSkills, func() (int, error) { return m.relational.SaveSkills(ctx, pid, *doc.Skills) }},
		{StepProjects, func() (int, error) { return m.relational.SaveProjects(ctx, pid, doc.Projects) }},
		{StepEducation, func() (int, error) { return m.relational.SaveEducation(ctx, pid, doc.Education) }},
		{StepDocument, func() (int, error) {
			if len(doc.Raw) == 0 {
				return 0, nil
			}
			err := m.relational.SaveDocument(ctx, pid, doc.Raw, doc.Version())
			return boolRows(err == nil), err
		}},
	}

	for _, step := range steps {
		if ctx.Err() != nil {
			res.SkipStep(step.name)
			continue
		}
		n, err := step.run()
		res.AddStep(step.name, n, err)
		if err != nil {
			logger.Warn("Failed to save %s: %v", step.name, err)
			continue
		}
		logger.Debug("Saved %d %s rows", n, step.name)
	}
}

// writeChunks inserts one relational row per chunk. A failed row is recorded
// and its chunk is withheld from the vector phase.
func (m *MigrationCoordinator) writeChunks(
	ctx context.Context,
	chunks []domain.ContentChunk,
	res *domain.MigrationResult,
) ([]domain.ContentChunk, error) {
	committed := make([]domain.ContentChunk, 0, len(chunks))
	var errs []error

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			res.AddStep(StepContentChunks, len(committed), err)
			return committed, err
		}

		err := m.saveChunk(ctx, chunk)
		if err != nil {
			logger.Warn("Failed to save chunk %s: %v", chunk.ID, err)
			res.Failed = append(res.Failed, chunk.ID)
			errs = append(errs, fmt.Errorf("%s: %w", chunk.ID, err))
			continue
		}
		m.invalidate(ctx, chunk.ID)
		committed = append(committed, chunk)
		res.Committed = append(res.Committed, chunk.ID)
	}

	res.AddStep(StepContentChunks, len(committed), errors.Join(errs...))
	return committed, nil
}

// invalidate drops cached content for a rewritten row. A failure is logged
// and the entry expires with its TTL.
func (m *MigrationCoordinator) invalidate(ctx context.Context, id string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Delete(ctx, id); err != nil {
		logger.Warn("Content cache invalidation for %s failed: %v", id, err)
	}
}

func (m *MigrationCoordinator) clearCache(ctx context.Context) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Clear(ctx); err != nil {
		logger.Warn("Clearing content cache failed: %v", err)
	}
}

func (m *MigrationCoordinator) saveChunk(ctx context.Context, chunk domain.ContentChunk) error {
	if strings.TrimSpace(chunk.Content) == "" {
		return &domain.ValidationError{Field: "content", Reason: "empty content", Err: domain.ErrEmptyContent}
	}
	return m.relational.SaveChunk(ctx, chunk)
}

// indexChunks upserts committed chunks in fixed-size batches, in order,
// with a fixed pause between batches. A failed batch is fatal.
func (m *MigrationCoordinator) indexChunks(
	ctx context.Context,
	chunks []domain.ContentChunk,
	opts domain.MigrationOptions,
	res *domain.MigrationResult,
) error {
	size := opts.BatchSize
	if size <= 0 {
		size = domain.DefaultBatchSize
	}
	limiter := newBatchLimiter(opts.BatchPause)

	for start := 0; start < len(chunks); start += size {
		end := min(start+size, len(chunks))
		batch := chunks[start:end]

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				err = waitError(ctx, err)
				res.AddStep(StepVectorIndex, len(res.Indexed), err)
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			res.AddStep(StepVectorIndex, len(res.Indexed), err)
			return err
		}

		vectors := make([]domain.IndexedVector, len(batch))
		for i, c := range batch {
			vectors[i] = domain.NewIndexedVector(c)
		}

		logger.Debug("Upserting batch %d (%d vectors)", res.Batches+1, len(vectors))
		if err := m.vectors.Upsert(ctx, vectors); err != nil {
			res.AddStep(StepVectorIndex, len(res.Indexed), err)
			return fmt.Errorf("%w: batch %d: %w", domain.ErrVectorBatchFailed, res.Batches+1, err)
		}

		res.Batches++
		for _, c := range batch {
			res.Indexed = append(res.Indexed, c.ID)
		}
	}

	res.AddStep(StepVectorIndex, len(res.Indexed), nil)
	return nil
}

// waitError maps a limiter failure to the context error. Wait refuses early
// when the pause would outlast the deadline, before ctx reports it.
func waitError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if _, ok := ctx.Deadline(); ok {
		return context.DeadlineExceeded
	}
	return err
}

// newBatchLimiter paces batches: the first proceeds at once, each later one
// waits pause after the previous. A negative pause disables pacing.
func newBatchLimiter(pause time.Duration) *rate.Limiter {
	if pause < 0 {
		return nil
	}
	if pause == 0 {
		pause = domain.DefaultBatchPause
	}
	return rate.NewLimiter(rate.Every(pause), 1)
}

func (m *MigrationCoordinator) smoke(ctx context.Context, res *domain.MigrationResult) {
	hits, err := m.vectors.Query(ctx, domain.VectorQuery{
		Text:            domain.SmokeQuery,
		TopK:            domain.SmokeTopK,
		IncludeMetadata: true,
	})
	if err == nil && len(hits) == 0 {
		err = errors.New("smoke search returned no results")
	}
	res.AddStep(StepSmokeSearch, len(hits), err)
	if err != nil {
		logger.Warn("Smoke search failed: %v", err)
		return
	}
	for _, h := range hits {
		logger.Debug("Smoke hit %s (%.3f)", h.ID, h.Score)
	}
}

func (m *MigrationCoordinator) dryRun(
	doc *domain.ProfileDocument,
	opts domain.MigrationOptions,
	res *domain.MigrationResult,
) *domain.MigrationResult {
	for _, name := range []string{StepSchema, StepProfessional, StepExperiences, StepSkills, StepProjects, StepEducation, StepDocument} {
		res.SkipStep(name)
	}

	chunks, err := m.extractor.Extract(doc)
	res.AddStep(StepExtract, len(chunks), err)
	if err != nil {
		return res
	}
	res.Extracted = len(chunks)
	res.Quality = m.extractor.QualityIssues(chunks)

	size := opts.BatchSize
	if size <= 0 {
		size = domain.DefaultBatchSize
	}
	res.Batches = (len(chunks) + size - 1) / size
	res.SkipStep(StepContentChunks)
	res.SkipStep(StepVectorIndex)

	logger.Info("Dry run: would write %d chunks in %d batches", len(chunks), res.Batches)
	return res
}

func boolRows(ok bool) int {
	if ok {
		return 1
	}
	return 0
}
