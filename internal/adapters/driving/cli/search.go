package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

var (
	searchLimit      int
	searchType       string
	searchImportance string
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the profile semantically",
	Long: `Runs a semantic query against the vector store and resolves each hit's
content from the relational store.

Results can be restricted to one chunk type or importance level.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "only this chunk type (e.g. experience, project, skills)")
	searchCmd.Flags().StringVar(&searchImportance, "importance", "", "only this importance (critical, high, medium, low)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	svc, err := requireServices("search", func(s *Services) bool { return s.Search != nil })
	if err != nil {
		return err
	}

	filter, err := searchFilter(searchType, searchImportance)
	if err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Limit:  searchLimit,
		Filter: filter,
	}

	results, err := svc.Search.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return writeJSON(cmd.OutOrStdout(), results)
	}

	renderSearchResults(cmd.OutOrStdout(), stylesFor(cmd.OutOrStdout()), results)
	return nil
}

// searchFilter builds the metadata filter. The vector store accepts a single
// equality predicate, so --type and --importance are mutually exclusive.
func searchFilter(chunkType, importance string) (*domain.VectorFilter, error) {
	switch {
	case chunkType != "" && importance != "":
		return nil, errors.New("--type and --importance cannot be combined")
	case chunkType != "":
		return &domain.VectorFilter{Field: "chunk_type", Value: chunkType}, nil
	case importance != "":
		return &domain.VectorFilter{Field: "importance", Value: importance}, nil
	default:
		return nil, nil
	}
}
