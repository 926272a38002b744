package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

var (
	migrateProfile   string
	migrateBatchSize int
	migrateDryRun    bool
	migrateReset     bool
	migrateSmoke     bool
	migrateJSON      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Write the profile into both stores",
	Long: `Loads the profile document, extracts retrieval chunks and writes them
into the relational store and the vector store.

Each chunk's relational row is committed before its vector is upserted, so
an interrupted run leaves at most pending upserts behind. Run reconcile to
find them.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateProfile, "profile", "p", "", "profile JSON file (default from config)")
	migrateCmd.Flags().IntVar(&migrateBatchSize, "batch-size", 0, "vectors per upsert (default from config)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "report what would be written without writing")
	migrateCmd.Flags().BoolVar(&migrateReset, "reset", false, "clear both stores before writing")
	migrateCmd.Flags().BoolVar(&migrateSmoke, "smoke", false, "run a search against the vector store afterwards")
	migrateCmd.Flags().BoolVar(&migrateJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("migration", func(s *Services) bool {
		return s.Migration != nil && s.Loader != nil
	})
	if err != nil {
		return err
	}

	path := firstNonEmpty(migrateProfile, svc.Defaults.ProfilePath)
	doc, err := svc.Loader.Load(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	opts := domain.MigrationOptions{
		BatchSize:  firstPositive(migrateBatchSize, svc.Defaults.BatchSize),
		BatchPause: svc.Defaults.BatchPause,
		DryRun:     migrateDryRun,
		Reset:      migrateReset,
		Smoke:      migrateSmoke,
	}

	res, migErr := svc.Migration.Migrate(cmd.Context(), doc, opts)
	if res != nil {
		if migrateJSON {
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
		} else {
			renderMigration(cmd.OutOrStdout(), stylesFor(cmd.OutOrStdout()), res)
		}
	}
	if migErr != nil {
		return fmt.Errorf("migration failed: %w", migErr)
	}
	if res != nil && len(res.FailedSteps()) > 0 {
		return fmt.Errorf("migration finished with failed steps: %v", res.FailedSteps())
	}
	return nil
}
