// Package main provides the catalog daemon: it keeps a fresh catalog snapshot
// published, persists every new snapshot, and restores the latest stored one
// when the upstream sources are unreachable at startup.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/catalog"
	"github.com/cory-johannsen/pogodata/internal/config"
	"github.com/cory-johannsen/pogodata/internal/fetch"
	"github.com/cory-johannsen/pogodata/internal/observability"
	"github.com/cory-johannsen/pogodata/internal/server"
	"github.com/cory-johannsen/pogodata/internal/source"
	"github.com/cory-johannsen/pogodata/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and POGODATA_* variables")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before configuration")
	noDB := flag.Bool("no-db", false, "run without snapshot persistence")
	checkEvery := flag.Duration("check", time.Minute, "staleness check interval")
	startupTimeout := flag.Duration("startup-timeout", 10*time.Minute, "bound on the first build before falling back to the stored snapshot")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && *envFile != ".env" {
		log.Fatalf("loading %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "catalogd")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	provider, err := observability.NewProvider("catalogd")
	if err != nil {
		logger.Fatal("creating meter provider", zap.Error(err))
	}
	provider.InstallGlobal()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	metrics, err := observability.NewMetrics(provider)
	if err != nil {
		logger.Fatal("creating metrics", zap.Error(err))
	}

	ctx := context.Background()

	var snapshots *postgres.SnapshotRepository
	if !*noDB {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		snapshots = postgres.NewSnapshotRepository(pool.DB())
	}

	client := fetch.New(cfg.Fetch, fetch.WithLogger(logger), fetch.WithMetrics(metrics))
	loader := source.NewLoader(client, cfg.Sources, logger)

	persist := newPersister(snapshots, cfg.Database.KeepSnapshots, logger)
	cat := catalog.New(loader,
		catalog.WithLogger(logger),
		catalog.WithMetrics(metrics),
		catalog.WithInterval(cfg.Catalog.RefreshInterval),
		catalog.WithBuildTimeout(cfg.Catalog.BuildTimeout),
		catalog.WithOnBuild(persist.offer),
	)

	if err := initialLoad(ctx, cat, snapshots, *startupTimeout, logger); err != nil {
		logger.Fatal("no catalog available", zap.Error(err))
	}

	lc := server.NewLifecycle(logger)
	lc.Add("snapshot-store", persist)
	lc.Add("catalog-watch", server.ServiceFunc(func(ctx context.Context) error {
		return cat.Watch(ctx, *checkEvery)
	}))
	if cfg.Metrics.Addr != "" {
		lc.Add("metrics-http", server.ServiceFunc(func(ctx context.Context) error {
			return provider.Serve(ctx, cfg.Metrics.Addr, logger)
		}))
	}

	logger.Info("catalogd ready",
		zap.String("snapshot", cat.Current().ID.String()),
		zap.Bool("persistence", snapshots != nil),
		zap.Duration("startup", time.Since(start)),
	)
	if err := lc.Run(ctx); err != nil {
		logger.Fatal("catalogd stopped with errors", zap.Error(err))
	}
}

// initialLoad builds the first snapshot from upstream, falling back to the
// newest stored snapshot when upstream cannot be reached in time.
func initialLoad(ctx context.Context, cat *catalog.Catalog, snapshots *postgres.SnapshotRepository, timeout time.Duration, logger *zap.Logger) error {
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := cat.Load(loadCtx)
	if err == nil {
		return nil
	}
	if snapshots == nil {
		return err
	}
	logger.Warn("upstream build failed, restoring stored snapshot", zap.Error(err))

	stored, lerr := snapshots.Latest(ctx)
	if lerr != nil {
		if errors.Is(lerr, postgres.ErrSnapshotNotFound) {
			return err
		}
		return errors.Join(err, lerr)
	}
	if _, rerr := cat.Restore(ctx, stored.Data); rerr != nil {
		return errors.Join(err, rerr)
	}
	logger.Info("restored stored snapshot",
		zap.String("stored_id", stored.ID.String()),
		zap.Time("built_at", stored.BuiltAt),
	)
	return nil
}
