package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/twinsync/internal/core/domain"
)

var (
	evaluateTopK            int
	evaluateWorkers         int
	evaluateSkipFilters     bool
	evaluateSkipConcurrency bool
	evaluateReconcile       bool
	evaluateJSON            bool
	evaluateSave            bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Measure semantic search quality",
	Long: `Runs the fixed validation query suite against the vector store, judges
each hit's relevance, probes metadata filters and measures behaviour under
concurrent load.

With --reconcile the store audit runs first and both results are combined
into one validation report.`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().IntVarP(&evaluateTopK, "top-k", "k", 0, "hits requested per query (default from config)")
	evaluateCmd.Flags().IntVar(&evaluateWorkers, "workers", 0, "concurrency-mode pool size (default from config)")
	evaluateCmd.Flags().BoolVar(&evaluateSkipFilters, "skip-filters", false, "skip metadata filter probes")
	evaluateCmd.Flags().BoolVar(&evaluateSkipConcurrency, "skip-concurrency", false, "skip the concurrent burst")
	evaluateCmd.Flags().BoolVar(&evaluateReconcile, "reconcile", false, "audit the stores first")
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "output the report as JSON")
	evaluateCmd.Flags().BoolVar(&evaluateSave, "save", false, "write the report to the report directory")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("harness", func(s *Services) bool { return s.Harness != nil })
	if err != nil {
		return err
	}

	var report domain.ValidationReport

	if evaluateReconcile {
		if svc.Reconcile == nil {
			return fmt.Errorf("reconcile service not configured")
		}
		rep, err := svc.Reconcile.Reconcile(cmd.Context(), domain.ReconcileOptions{
			ExpectedDimension: svc.Defaults.ExpectedDimension,
		})
		if err != nil {
			return fmt.Errorf("reconcile failed: %w", err)
		}
		report.Reconciliation = rep
	}

	// On interrupt the harness returns a partial report along with the error.
	harness, runErr := svc.Harness.Run(cmd.Context(), domain.HarnessOptions{
		TopK:            firstPositive(evaluateTopK, svc.Defaults.TopK),
		Workers:         firstPositive(evaluateWorkers, svc.Defaults.Workers),
		SkipFilters:     evaluateSkipFilters,
		SkipConcurrency: evaluateSkipConcurrency,
	})
	if harness == nil {
		if runErr == nil {
			runErr = fmt.Errorf("no report returned")
		}
		return fmt.Errorf("evaluation failed: %w", runErr)
	}
	report.Harness = harness

	out := cmd.OutOrStdout()
	if evaluateJSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		st := stylesFor(out)
		if report.Reconciliation != nil {
			renderReconciliation(out, st, report.Reconciliation)
			fmt.Fprintln(out)
		}
		renderHarness(out, st, harness)
	}
	if runErr != nil {
		cmd.PrintErrf("Evaluation stopped after %d queries; the report is partial\n", len(harness.Queries))
	}

	if evaluateSave {
		if err := saveReport(cmd, report); err != nil {
			return err
		}
	}

	if runErr != nil {
		return fmt.Errorf("evaluation interrupted: %w", runErr)
	}

	if !report.Passed() {
		return errChecksFailed
	}
	return nil
}
