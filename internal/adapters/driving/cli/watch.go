package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 500 * time.Millisecond

var watchProfile string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-sync whenever the profile changes",
	Long: `Runs migrate and reconcile once, then again every time the profile file
is written. Stop with Ctrl+C; a cycle in progress is cancelled and any
pending upserts are left for the next reconcile.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchProfile, "profile", "p", "", "profile JSON file (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	svc, err := requireServices("migration", func(s *Services) bool {
		return s.Migration != nil && s.Loader != nil
	})
	if err != nil {
		return err
	}
	path := firstNonEmpty(watchProfile, svc.Defaults.ProfilePath)

	cycle := func(ctx context.Context) error {
		return syncCycle(ctx, cmd, svc, path)
	}

	if err := cycle(cmd.Context()); err != nil {
		logger.Error("Sync failed: %v", err)
	}
	cmd.Printf("Watching %s for changes...\n", path)

	return watchFile(cmd.Context(), path, watchDebounce, cycle)
}

// syncCycle migrates the profile and, when a reconciler is wired, audits the result.
func syncCycle(ctx context.Context, cmd *cobra.Command, svc *Services, path string) error {
	doc, err := svc.Loader.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("loading profile: %w", err)
	}

	out := cmd.OutOrStdout()
	st := stylesFor(out)

	res, err := svc.Migration.Migrate(ctx, doc, domain.MigrationOptions{
		BatchSize:  svc.Defaults.BatchSize,
		BatchPause: svc.Defaults.BatchPause,
	})
	if res != nil {
		renderMigration(out, st, res)
		fmt.Fprintln(out)
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if svc.Reconcile == nil {
		return nil
	}
	rep, err := svc.Reconcile.Reconcile(ctx, domain.ReconcileOptions{
		Document:          doc,
		ExpectedDimension: svc.Defaults.ExpectedDimension,
	})
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	renderReconciliation(out, st, rep)
	fmt.Fprintln(out)
	return nil
}

// watchFile calls onChange after path is written or recreated, once per
// burst of events within debounce. The parent directory is watched so
// editors that save by renaming a temp file over path are still seen.
// It returns nil when ctx is cancelled.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context) error) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			logger.Debug("Profile event: %s", ev.Op)
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			if err := onChange(ctx); err != nil {
				logger.Error("Sync failed: %v", err)
			}
		}
	}
}
