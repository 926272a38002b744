// Package cli provides the cobra command tree for twinsync.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/core/ports/driving"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Command annotations that limit wiring.
const (
	// annotationNoServices marks commands that run without wired services.
	annotationNoServices = "twinsync/no-services"

	// annotationConfigOnly marks commands that need configuration but no stores.
	annotationConfigOnly = "twinsync/config-only"
)

// Defaults are the configured values commands fall back to when a flag is unset.
type Defaults struct {
	ProfilePath       string
	BatchSize         int
	BatchPause        time.Duration
	TopK              int
	Workers           int
	ExpectedDimension int
	ReportDir         string
}

// Services holds everything the commands need. Optional fields may be nil.
type Services struct {
	Loader    driven.ProfileLoader
	Extractor driving.Extractor
	Migration driving.MigrationService
	Reconcile driving.ReconcileService
	Harness   driving.HarnessService
	Search    driving.SearchService
	Reports   driven.ReportWriter
	Config    driven.ConfigStore
	Chunks    driven.ChunkStore

	Defaults Defaults

	// Settings are the effective configuration rows, secrets masked.
	Settings [][2]string

	// Describe is a one-line summary of the active stores, printed in verbose mode.
	Describe string
}

// Bootstrap builds the services from the configuration directory. With
// configOnly set only Config, Settings and Defaults are needed and no store
// is opened. The returned cleanup func releases store handles.
type Bootstrap func(ctx context.Context, configDir string, configOnly bool) (*Services, func(), error)

var (
	services  *Services
	bootstrap Bootstrap
	cleanup   func()

	verbose    bool
	timestamps bool
	configDir  string
)

var rootCmd = &cobra.Command{
	Use:   "twinsync",
	Short: "Keep a profile's relational and vector stores in sync",
	Long: `twinsync migrates a structured professional profile into a relational
store and a vector-similarity store, audits the two for drift, and measures
how well semantic search over the profile performs.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		release()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress to stderr")
	rootCmd.PersistentFlags().BoolVar(&timestamps, "timestamps", false, "prefix log lines with the time")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.twinsync)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices injects ready-made services, bypassing Bootstrap.
func SetServices(s *Services) {
	services = s
}

// SetBootstrap sets the function used to wire services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	logger.SetTimestamps(timestamps)

	if cmd.Annotations[annotationNoServices] == "true" || services != nil || bootstrap == nil {
		return nil
	}

	configOnly := cmd.Annotations[annotationConfigOnly] == "true"
	svc, done, err := bootstrap(cmd.Context(), configDir, configOnly)
	if err != nil {
		return err
	}
	services = svc
	cleanup = done
	if svc.Describe != "" {
		logger.Info("Using %s", svc.Describe)
	}
	return nil
}

func release() {
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
}

// requireServices returns the wired services or an error naming what is missing.
func requireServices(name string, present func(*Services) bool) (*Services, error) {
	if services == nil || !present(services) {
		return nil, errors.New(name + " service not configured")
	}
	return services, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
