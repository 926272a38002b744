package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// ==================== Chunk Store ====================

const chunkColumns = `chunk_id, content, chunk_type, title, metadata, importance, date_range, search_weight, vector_id`

// SaveChunk upserts a chunk row keyed by chunk_id, with vector_id equal to the chunk ID.
func (s *Store) SaveChunk(ctx context.Context, chunk domain.ContentChunk) error {
	metadata := "{}"
	if len(chunk.Metadata) > 0 {
		data, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		metadata = string(data)
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO content_chunks (`+chunkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			content = excluded.content,
			chunk_type = excluded.chunk_type,
			title = excluded.title,
			metadata = excluded.metadata,
			importance = excluded.importance,
			date_range = excluded.date_range,
			search_weight = excluded.search_weight,
			vector_id = excluded.vector_id
	`), chunk.ID, chunk.Content, string(chunk.Type), nullString(chunk.Title), metadata,
		string(chunk.Importance), nullString(chunk.DateRange), chunk.SearchWeight, chunk.ID)
	if err != nil {
		return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.StoredChunk, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT "+chunkColumns+" FROM content_chunks WHERE chunk_id = ?"), id)

	chunk, err := scanChunk(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return chunk, nil
}

// ListChunkIDs returns all chunk IDs, sorted.
func (s *Store) ListChunkIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT chunk_id FROM content_chunks ORDER BY chunk_id")
	if err != nil {
		return nil, fmt.Errorf("querying chunk ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunk ids: %w", err)
	}
	return ids, nil
}

// ListChunks returns all chunk rows, sorted by ID.
func (s *Store) ListChunks(ctx context.Context) ([]domain.StoredChunk, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+chunkColumns+" FROM content_chunks ORDER BY chunk_id")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.StoredChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.StoredChunk, error) {
	var (
		c                          domain.StoredChunk
		chunkType, importance      string
		title, dateRange, vectorID sql.NullString
		metadata                   []byte
	)
	err := row.Scan(&c.ID, &c.Content, &chunkType, &title, &metadata, &importance,
		&dateRange, &c.SearchWeight, &vectorID)
	if err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	c.Type = domain.ChunkType(chunkType)
	c.Importance = domain.Importance(importance)
	c.Title = title.String
	c.DateRange = dateRange.String
	c.VectorID = vectorID.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for %s: %w", c.ID, err)
		}
	}
	return &c, nil
}
