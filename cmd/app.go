package cmd

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/govtwool/govtwool-backend/core/config"
	"github.com/govtwool/govtwool-backend/core/database"
	domainCache "github.com/govtwool/govtwool-backend/domains/cache"
	domainGovernance "github.com/govtwool/govtwool-backend/domains/governance"
	domainHealth "github.com/govtwool/govtwool-backend/domains/health"
	domainParticipation "github.com/govtwool/govtwool-backend/domains/participation"
	"github.com/govtwool/govtwool-backend/infrastructure/valkey"
	"github.com/govtwool/govtwool-backend/infrastructure/yacistore"
	"github.com/govtwool/govtwool-backend/pkg/metrics"
	"github.com/govtwool/govtwool-backend/providers"
	"github.com/govtwool/govtwool-backend/repository"
	"github.com/govtwool/govtwool-backend/usecase"
)

// application is everything a server command needs, built once from cfg.
type application struct {
	cfg      *config.Config
	registry *prometheus.Registry
	router   *providers.CachedProviderRouter

	governanceUsecase    domainGovernance.IGovernanceUsecase
	participationUsecase domainParticipation.IParticipationUsecase
	cacheUsecase         domainCache.ICacheUsecase
	healthUsecase        domainHealth.IHealthUsecase
	warmer               *usecase.Warmer

	closers []func()
}

func newApplication(cfg *config.Config) (*application, error) {
	a := &application{cfg: cfg, registry: prometheus.NewRegistry()}

	db, err := database.NewDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
	}
	provider := yacistore.NewProvider(db, yacistore.Options{GovActionLifetime: cfg.Database.GovActionLifetime})

	store, err := a.newCacheStore()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewPrometheus(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.router, err = providers.NewCachedProviderRouter(provider, providers.Options{
		Enabled:      cfg.Cache.Enabled,
		Store:        store,
		TTL:          cfg.Cache.TTL,
		FetchTimeout: cfg.Cache.FetchTimeout,
		Recorder:     recorder,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.governanceUsecase = usecase.NewGovernanceService(a.router)
	a.participationUsecase = usecase.NewParticipationService(a.router)
	a.cacheUsecase = usecase.NewCacheService(a.router)
	a.healthUsecase = usecase.NewHealthService(a.router)

	if cfg.Warmup.Enabled && cfg.Cache.Enabled {
		a.warmer = usecase.NewWarmer(a.router, usecase.WarmupOptions{
			Interval: cfg.Warmup.Interval,
			Workers:  cfg.Warmup.Workers,
		})
	}
	return a, nil
}

// newCacheStore picks the shared Valkey tier when configured, else a
// process-local LRU. A nil store is returned when caching is off.
func (a *application) newCacheStore() (domainCache.Store, error) {
	if !a.cfg.Cache.Enabled {
		logrus.Warn("[CACHE] caching disabled, every request reaches the database")
		return nil, nil
	}

	if a.cfg.Valkey.Enabled {
		client, err := valkey.NewClient(valkey.Config{
			Address:   a.cfg.Valkey.Address,
			Password:  a.cfg.Valkey.Password,
			DB:        a.cfg.Valkey.DB,
			KeyPrefix: a.cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("valkey cache: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		logrus.Infof("[CACHE] using valkey at %s", a.cfg.Valkey.Address)
		return repository.NewValkeyCacheStore(client, a.cfg.Cache.StaleRetention), nil
	}

	store, err := repository.NewMemoryCacheStore(a.cfg.Cache.MaxEntries)
	if err != nil {
		return nil, err
	}
	logrus.Infof("[CACHE] using in-memory store (max %d entries)", a.cfg.Cache.MaxEntries)
	return store, nil
}

// Close stops background work and releases connections in reverse order
// of creation.
func (a *application) Close() {
	logrus.Info("[APP] stopping application...")
	if a.warmer != nil {
		a.warmer.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	logrus.Info("[APP] application stopped cleanly")
}
