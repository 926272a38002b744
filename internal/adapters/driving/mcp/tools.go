package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

// defaultSearchLimit applies when the caller omits a limit.
const defaultSearchLimit = 10

// SearchInput is the input schema for the search_profile tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"natural language question about the professional profile"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	ChunkType  string `json:"chunk_type,omitempty" jsonschema:"only return this chunk type, e.g. experience, project, skills, education"`
	Importance string `json:"importance,omitempty" jsonschema:"only return this importance: critical, high, medium or low"`
}

// SearchOutput is the output schema for the search_profile tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	Title      string  `json:"title"`
	ChunkType  string  `json:"chunk_type,omitempty"`
	Importance string  `json:"importance,omitempty"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// ReconcileInput is the input schema for the reconcile_stores tool.
type ReconcileInput struct {
	ExpectedDimension int `json:"expected_dimension,omitempty" jsonschema:"embedding dimension the vector index must report (default 1024)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_profile",
		Description: "Semantic search over the professional profile: experience, projects, skills and education",
	}, s.handleSearch)

	if s.ports.Reconcile != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "reconcile_stores",
			Description: "Audit the relational and vector stores for drift and report any issues",
		}, s.handleReconcile)
	}
}

// handleSearch handles the search_profile tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	opts := domain.SearchOptions{Limit: limit}
	switch {
	case input.ChunkType != "" && input.Importance != "":
		return nil, SearchOutput{}, errors.New("chunk_type and importance cannot be combined")
	case input.ChunkType != "":
		opts.Filter = &domain.VectorFilter{Field: "chunk_type", Value: input.ChunkType}
	case input.Importance != "":
		opts.Filter = &domain.VectorFilter{Field: "importance", Value: input.Importance}
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:    results[i].VectorID,
			Title:      domain.MetadataString(results[i].Metadata["title"]),
			ChunkType:  string(results[i].ChunkType()),
			Importance: domain.MetadataString(results[i].Metadata["importance"]),
			Score:      results[i].Score,
			Content:    results[i].Content,
		}
	}

	return nil, output, nil
}

// handleReconcile handles the reconcile_stores tool invocation.
func (s *Server) handleReconcile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReconcileInput,
) (*mcp.CallToolResult, domain.ReconciliationReport, error) {
	report, err := s.ports.Reconcile.Reconcile(ctx, domain.ReconcileOptions{
		ExpectedDimension: input.ExpectedDimension,
	})
	if err != nil {
		return nil, domain.ReconciliationReport{}, err
	}
	return nil, *report, nil
}
