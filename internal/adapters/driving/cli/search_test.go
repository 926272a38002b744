package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	_, err := execute(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "experience", "at", "Acme")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Senior Engineer at Acme Corp (0.87)")
	assert.Contains(t, out, "experience · exp_000_acme_corp")
	assert.Equal(t, []string{"experience at Acme"}, ts.search.queries)
	assert.Equal(t, 10, ts.search.opts[0].Limit)
	assert.Nil(t, ts.search.opts[0].Filter)
}

func TestSearchCmd_TypeFilter(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "--type", "project", "-n", "3", "widgets")

	require.NoError(t, err)
	require.Len(t, ts.search.opts, 1)
	assert.Equal(t, 3, ts.search.opts[0].Limit)
	assert.Equal(t, &domain.VectorFilter{Field: "chunk_type", Value: "project"}, ts.search.opts[0].Filter)
}

func TestSearchCmd_ImportanceFilter(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "--importance", "critical", "skills")

	require.NoError(t, err)
	assert.Equal(t, &domain.VectorFilter{Field: "importance", Value: "critical"}, ts.search.opts[0].Filter)
}

func TestSearchCmd_CombinedFiltersRejected(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search", "--type", "project", "--importance", "high", "q")

	require.Error(t, err)
	assert.Empty(t, ts.search.queries)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "--json", "test query")

	require.NoError(t, err)
	assert.Contains(t, out, `"vector_id": "exp_000_acme_corp"`)
	assert.Contains(t, out, `"score": 0.87`)
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "search", "test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.search.err = errors.New("vector store down")

	_, err := execute(t, "search", "test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestRenderSearchResults_Empty(t *testing.T) {
	buf := new(bytes.Buffer)
	renderSearchResults(buf, NewStyles(nil, true), []domain.SearchResult{})
	assert.Contains(t, buf.String(), "No results found")
}

func TestRenderSearchResults_WithoutTitle(t *testing.T) {
	buf := new(bytes.Buffer)
	renderSearchResults(buf, NewStyles(nil, true), []domain.SearchResult{{VectorID: "proj_000", Score: 0.75}})

	assert.Contains(t, buf.String(), "[1] proj_000 (0.75)")
}

func TestSearchFilter(t *testing.T) {
	f, err := searchFilter("", "")
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = searchFilter("project", "high")
	assert.Error(t, err)
}
