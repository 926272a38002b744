package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for twinsync resources.
	uriScheme = "twinsync://"
)

// registerResources registers the chunk resources when a chunk reader is wired.
func (s *Server) registerResources() {
	if s.ports.Chunks == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "chunks",
		Name:        "chunks",
		Description: "All content chunks stored for the profile",
		MIMEType:    "application/json",
	}, s.handleChunksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "chunks/{chunkId}",
		Name:        "chunk-content",
		Description: "Text of a single content chunk",
		MIMEType:    "text/plain",
	}, s.handleChunkContentResource)
}

// handleChunksResource lists every chunk without its content.
func (s *Server) handleChunksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunks, err := s.ports.Chunks.ListChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}

	type chunkInfo struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Title      string `json:"title"`
		Importance string `json:"importance"`
		URI        string `json:"uri"`
	}

	infos := make([]chunkInfo, len(chunks))
	for i := range chunks {
		infos[i] = chunkInfo{
			ID:         chunks[i].ID,
			Type:       string(chunks[i].Type),
			Title:      chunks[i].Title,
			Importance: string(chunks[i].Importance),
			URI:        uriScheme + "chunks/" + chunks[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling chunks: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleChunkContentResource returns the resolved text of one chunk.
func (s *Server) handleChunkContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Chunks == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractChunkID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	chunk, err := s.ports.Chunks.GetChunk(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting chunk: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     chunk.ResolvedText(),
		}},
	}, nil
}

// extractChunkID extracts the chunk ID from a URI like twinsync://chunks/{chunkId}.
func extractChunkID(uri string) string {
	const prefix = uriScheme + "chunks/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
