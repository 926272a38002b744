package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/logger"
)

var (
	reconcileProfile   string
	reconcileNoProfile bool
	reconcileJSON      bool
	reconcileSave      bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Audit the two stores for drift",
	Long: `Compares the relational store with the vector store: chunk id sets,
vector count, embedding dimension and required field completeness. When the
profile is available, row counts are checked against it as well.

Drift is reported, never repaired. The command exits non-zero when any check
fails.`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileProfile, "profile", "p", "", "profile JSON file for row-count checks (default from config)")
	reconcileCmd.Flags().BoolVar(&reconcileNoProfile, "no-profile", false, "skip row-count checks against the profile")
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "output the report as JSON")
	reconcileCmd.Flags().BoolVar(&reconcileSave, "save", false, "write the report to the report directory")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("reconcile", func(s *Services) bool { return s.Reconcile != nil })
	if err != nil {
		return err
	}

	opts := domain.ReconcileOptions{ExpectedDimension: svc.Defaults.ExpectedDimension}
	if !reconcileNoProfile && svc.Loader != nil {
		path := firstNonEmpty(reconcileProfile, svc.Defaults.ProfilePath)
		doc, err := svc.Loader.Load(cmd.Context(), path)
		if err != nil {
			logger.Warn("Row-count checks skipped: %v", err)
		} else {
			opts.Document = doc
		}
	}

	rep, err := svc.Reconcile.Reconcile(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if reconcileJSON {
		if err := writeJSON(out, rep); err != nil {
			return err
		}
	} else {
		renderReconciliation(out, stylesFor(out), rep)
	}

	if reconcileSave {
		if err := saveReport(cmd, domain.ValidationReport{Reconciliation: rep}); err != nil {
			return err
		}
	}

	if !rep.Passed {
		return errChecksFailed
	}
	return nil
}

// saveReport stamps the report and hands it to the configured writer.
func saveReport(cmd *cobra.Command, report domain.ValidationReport) error {
	if services == nil || services.Reports == nil {
		return fmt.Errorf("report writer not configured")
	}
	report.RunID = uuid.NewString()
	report.Timestamp = time.Now().UTC()

	// An interrupted run still saves what it collected.
	path, err := services.Reports.Write(context.WithoutCancel(cmd.Context()), report)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	cmd.PrintErrf("Report saved to %s\n", path)
	return nil
}
