package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/twinsync/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/config/file"
	profilejson "github.com/custodia-labs/twinsync/internal/adapters/driven/profile/jsonfile"
	reportjson "github.com/custodia-labs/twinsync/internal/adapters/driven/report/jsonfile"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/twinsync/internal/adapters/driven/vector/upstash"
	"github.com/custodia-labs/twinsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/twinsync/internal/core/domain"
	"github.com/custodia-labs/twinsync/internal/core/ports/driven"
	"github.com/custodia-labs/twinsync/internal/core/services"
	"github.com/custodia-labs/twinsync/internal/logger"
)

// bootstrap resolves configuration and builds the service graph.
func bootstrap(ctx context.Context, configDir string, configOnly bool) (*cli.Services, func(), error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, nil, fmt.Errorf("resolving config directory: %w", err)
		}
		configDir = dir
	}

	// The working directory's env files win over the config directory's.
	for _, dir := range []string{".", configDir} {
		if err := file.LoadEnvFiles(dir); err != nil {
			return nil, nil, fmt.Errorf("loading env files from %s: %w", dir, err)
		}
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settings := file.Resolve(store, os.Getenv)

	svc := &cli.Services{
		Config:   store,
		Settings: settings.Describe(),
		Defaults: defaultsFrom(settings),
	}
	if configOnly {
		return svc, func() {}, nil
	}

	relational, err := openRelational(ctx, settings, configDir)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{relational.Close}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("Closing store: %v", err)
			}
		}
	}

	vectors, err := openVectors(settings, configDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var cache driven.ContentCache
	if settings.RedisAddr != "" {
		c, err := redis.New(ctx, redis.Config{Addr: settings.RedisAddr})
		if err != nil {
			logger.Warn("Content cache disabled: %v", err)
		} else {
			cache = c
			closers = append(closers, c.Close)
		}
	}

	extractor := services.NewChunkExtractor()
	resolver := services.NewContentResolver(relational, cache)

	svc.Loader = profilejson.NewLoader()
	svc.Extractor = extractor
	svc.Migration = services.NewMigrationCoordinator(relational, vectors, extractor).WithCache(cache)
	svc.Reconcile = services.NewReconciler(relational, vectors)
	svc.Harness = services.NewRetrievalHarness(vectors, resolver)
	svc.Search = services.NewSearchService(vectors, resolver)
	svc.Reports = reportjson.NewWriter(settings.ReportDir)
	svc.Chunks = relational
	svc.Describe = fmt.Sprintf("%s relational store, %s vector store", settings.RelationalDriver, settings.VectorProvider)

	return svc, cleanup, nil
}

func defaultsFrom(s file.Settings) cli.Defaults {
	pause := s.BatchPause
	if pause == 0 {
		// An explicit zero in the config file disables pacing.
		pause = -1
	}
	return cli.Defaults{
		ProfilePath:       s.ProfilePath,
		BatchSize:         s.BatchSize,
		BatchPause:        pause,
		TopK:              s.HarnessTopK,
		Workers:           s.HarnessWorkers,
		ExpectedDimension: s.VectorDimension,
		ReportDir:         s.ReportDir,
	}
}

func openRelational(ctx context.Context, s file.Settings, configDir string) (driven.RelationalStore, error) {
	switch s.RelationalDriver {
	case file.DriverSQLite:
		dataDir := s.RelationalDataDir
		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w: %w", domain.ErrStoreUnavailable, err)
		}
		return store, nil
	case file.DriverPostgres:
		if s.RelationalDSN == "" {
			return nil, errors.New("postgres driver requires relational.dsn or DATABASE_URL")
		}
		store, err := postgres.NewStore(ctx, s.RelationalDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store %s: %w: %w",
				postgres.RedactDSN(s.RelationalDSN), domain.ErrStoreUnavailable, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("relational driver %q: %w", s.RelationalDriver, domain.ErrUnsupportedProvider)
	}
}

func openVectors(s file.Settings, configDir string) (driven.VectorStore, error) {
	switch s.VectorProvider {
	case file.ProviderUpstash:
		client, err := upstash.NewClient(upstash.Config{URL: s.VectorURL, Token: s.VectorToken})
		if err != nil {
			return nil, fmt.Errorf("configuring upstash: %w", err)
		}
		return client, nil
	case file.ProviderChromem:
		path := s.VectorChromemPath
		if path == "" {
			path = filepath.Join(configDir, "vectors")
		}
		store, err := chromem.NewStore(chromem.Config{
			Path:        path,
			Dimension:   s.VectorDimension,
			Embedder:    s.VectorEmbedder,
			OllamaModel: s.VectorOllamaModel,
			OllamaURL:   s.VectorOllamaURL,
		})
		if err != nil {
			return nil, fmt.Errorf("opening chromem store: %w", err)
		}
		return store, nil
	case file.ProviderMemory:
		logger.Warn("Memory vector store selected: vectors are lost on exit")
		return memory.NewVectorStore(s.VectorDimension), nil
	default:
		return nil, fmt.Errorf("vector provider %q: %w", s.VectorProvider, domain.ErrUnsupportedProvider)
	}
}
