package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func TestExtractChunkID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid chunk URI",
			uri:      "twinsync://chunks/exp_000_acme_corp",
			expected: "exp_000_acme_corp",
		},
		{
			name:     "invalid prefix",
			uri:      "file://chunks/exp_000_acme_corp",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "twinsync://chunks/a/b",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractChunkID(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func sampleChunks() []domain.StoredChunk {
	return []domain.StoredChunk{
		{
			ContentChunk: domain.ContentChunk{
				ID:         "exp_000_acme_corp",
				Type:       domain.ChunkTypeExperience,
				Title:      "Senior Engineer at Acme Corp",
				Content:    "At Acme Corp I built the billing platform.",
				Importance: domain.ImportanceHigh,
			},
			VectorID: "exp_000_acme_corp",
		},
	}
}

func TestServer_handleChunksResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil chunk reader returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		_, err = server.handleChunksResource(ctx, makeReadResourceRequest("twinsync://chunks"))
		require.Error(t, err)
	})

	t.Run("lists chunks", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{chunks: sampleChunks()}})
		require.NoError(t, err)

		result, err := server.handleChunksResource(ctx, makeReadResourceRequest("twinsync://chunks"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		text := result.Contents[0].Text
		assert.Contains(t, text, `"id": "exp_000_acme_corp"`)
		assert.Contains(t, text, `"type": "experience"`)
		assert.Contains(t, text, `"uri": "twinsync://chunks/exp_000_acme_corp"`)
		assert.NotContains(t, text, "billing platform")
	})

	t.Run("empty store returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{chunks: []domain.StoredChunk{}}})
		require.NoError(t, err)

		result, err := server.handleChunksResource(ctx, makeReadResourceRequest("twinsync://chunks"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{err: errors.New("database error")}})
		require.NoError(t, err)

		_, err = server.handleChunksResource(ctx, makeReadResourceRequest("twinsync://chunks"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing chunks")
	})
}

func TestServer_handleChunkContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns resolved text", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{chunks: sampleChunks()}})
		require.NoError(t, err)

		result, err := server.handleChunkContentResource(ctx, makeReadResourceRequest("twinsync://chunks/exp_000_acme_corp"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Senior Engineer at Acme Corp: At Acme Corp I built the billing platform.", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("unknown chunk returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{chunks: sampleChunks()}})
		require.NoError(t, err)

		_, err = server.handleChunkContentResource(ctx, makeReadResourceRequest("twinsync://chunks/missing"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{}})
		require.NoError(t, err)

		_, err = server.handleChunkContentResource(ctx, makeReadResourceRequest("twinsync://invalid/uri"))
		require.Error(t, err)
	})

	t.Run("returns error on read failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}, Chunks: &mockChunkReader{err: errors.New("storage error")}})
		require.NoError(t, err)

		_, err = server.handleChunkContentResource(ctx, makeReadResourceRequest("twinsync://chunks/exp_000_acme_corp"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "getting chunk")
	})
}
