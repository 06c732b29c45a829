// Package app wires configuration into the concrete store, cache and
// report writer used by the API server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/seller-analytics/internal/analytics"
	"github.com/dvloznov/seller-analytics/internal/cache"
	"github.com/dvloznov/seller-analytics/internal/config"
	infraBQ "github.com/dvloznov/seller-analytics/internal/infra/bigquery"
	"github.com/dvloznov/seller-analytics/internal/infra/memory"
	"github.com/dvloznov/seller-analytics/internal/logger"
	"github.com/dvloznov/seller-analytics/internal/reports"
	"github.com/dvloznov/seller-analytics/internal/store"
)

const cachePrefix = "seller-analytics:"

// App holds the long-lived dependencies built from a Config.
type App struct {
	Store   store.Store
	Cache   cache.Cache
	Writer  reports.Writer
	Service *analytics.Service

	closers []func() error
}

// New opens every dependency named by cfg. Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.FromContext(ctx)
	a := &App{}

	st, err := a.openStore(ctx, cfg)
	if err != nil {
		return nil, a.fail(err)
	}
	a.Store = st

	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cachePrefix)
		if err != nil {
			return nil, a.fail(fmt.Errorf("New: %w", err))
		}
		a.closers = append(a.closers, rc.Close)
		a.Cache = rc
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis result cache")
	} else {
		a.Cache = cache.NewMemoryCache()
	}

	if cfg.ReportBucket != "" {
		gw, err := reports.NewGCSWriter(ctx, cfg.ReportBucket)
		if err != nil {
			return nil, a.fail(fmt.Errorf("New: %w", err))
		}
		a.closers = append(a.closers, gw.Close)
		a.Writer = gw
	} else {
		log.Warn().Str("dir", cfg.ReportDir).Msg("No report bucket configured - reports are written locally")
		a.Writer = reports.NewDirWriter(cfg.ReportDir)
	}

	a.Service = analytics.NewService(a.Store,
		analytics.WithCache(a.Cache, cfg.CacheTTL),
		analytics.WithFinder(analytics.NewBestPeriodFinder(cfg.MaxBestPeriodTransactions)),
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendBigQuery:
		repo, err := infraBQ.NewRepository(ctx, cfg.ProjectID, cfg.DatasetID)
		if err != nil {
			return nil, fmt.Errorf("openStore: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return repo, nil
	case config.BackendMemory:
		if cfg.SeedFile == "" {
			return memory.NewStore(), nil
		}
		st, err := memory.LoadFile(cfg.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("openStore: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("openStore: unknown backend %q", cfg.StoreBackend)
	}
}

func (a *App) fail(err error) error {
	return errors.Join(err, a.Close())
}

// Close releases dependencies in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
