package mcp

import (
	"context"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error

	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockReconcileService is a mock implementation of driving.ReconcileService.
type mockReconcileService struct {
	report *domain.ReconciliationReport
	err    error

	lastOpts domain.ReconcileOptions
}

func (m *mockReconcileService) Reconcile(
	_ context.Context,
	opts domain.ReconcileOptions,
) (*domain.ReconciliationReport, error) {
	m.lastOpts = opts
	return m.report, m.err
}

// mockChunkReader is a mock implementation of ChunkReader.
type mockChunkReader struct {
	chunks []domain.StoredChunk
	err    error
}

func (m *mockChunkReader) GetChunk(_ context.Context, id string) (*domain.StoredChunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.chunks {
		if m.chunks[i].ID == id {
			return &m.chunks[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockChunkReader) ListChunks(_ context.Context) ([]domain.StoredChunk, error) {
	return m.chunks, m.err
}
