package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prop-projection/external/nhlstats"
	"github.com/riskibarqy/prop-projection/internal/config"
	"github.com/riskibarqy/prop-projection/internal/domain/gamelog"
	"github.com/riskibarqy/prop-projection/internal/domain/projection"
	"github.com/riskibarqy/prop-projection/internal/domain/seasonstats"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/model"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/recordsource"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prop-projection/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prop-projection/internal/interfaces/httpapi"
	"github.com/riskibarqy/prop-projection/internal/platform/logging"
	"github.com/riskibarqy/prop-projection/internal/platform/resilience"
	"github.com/riskibarqy/prop-projection/internal/usecase"
	"github.com/sourcegraph/conc/pool"
)

// NewHTTPServer loads the record set and both models, wires the services and
// returns the API server with a cleanup func for resources it opened.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	deps, err := loadDependencies(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	projectionSvc := usecase.NewProjectionService(deps.repo, deps.models, usecase.ProjectionConfig{
		DefaultLine: cfg.DefaultHitRateLine,
		MaxWorkers:  cfg.SeasonReportMaxWorkers,
	}, logger)

	seasonStatsSvc := usecase.NewSeasonStatsService(newStatsProvider(cfg, logger), deps.repo, usecase.SeasonStatsConfig{
		DefaultSeason: cfg.DefaultSeason,
		LocalFallback: cfg.SeasonStatsLocalFallback,
		CacheTTL:      cfg.SeasonStatsCacheTTL,
	}, logger)

	handler := httpapi.NewHandler(projectionSvc, seasonStatsSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return server, deps.close, nil
}

type dependencies struct {
	repo   gamelog.Repository
	models projection.Models
	db     *sqlx.DB
}

func (d *dependencies) close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

// loadDependencies reads the record source and both model artifacts concurrently.
// The first failure cancels the other loads.
func loadDependencies(ctx context.Context, cfg config.Config, logger *logging.Logger) (*dependencies, error) {
	deps := &dependencies{}
	policy := TOIPolicy(cfg)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		repo, db, err := openRecordRepository(ctx, cfg, policy, logger)
		if err != nil {
			return err
		}
		deps.repo = repo
		deps.db = db
		return nil
	})
	p.Go(func(context.Context) error {
		m, err := model.LoadLinear(cfg.ShotsModelPath, projection.StatisticShots)
		if err != nil {
			return fmt.Errorf("load shots model: %w", err)
		}
		deps.models.Shots = m
		return nil
	})
	p.Go(func(context.Context) error {
		m, err := model.LoadLinear(cfg.GoalsModelPath, projection.StatisticGoals)
		if err != nil {
			return fmt.Errorf("load goals model: %w", err)
		}
		deps.models.Goals = m
		return nil
	})

	if err := p.Wait(); err != nil {
		_ = deps.close()
		return nil, err
	}

	count, err := deps.repo.Count(ctx)
	if err != nil {
		_ = deps.close()
		return nil, fmt.Errorf("count loaded records: %w", err)
	}
	logger.InfoContext(ctx, "projection dependencies loaded",
		"records_source", cfg.RecordsSource,
		"records", count,
		"shots_model", cfg.ShotsModelPath,
		"goals_model", cfg.GoalsModelPath,
	)

	return deps, nil
}

func openRecordRepository(ctx context.Context, cfg config.Config, policy gamelog.TOIPolicy, logger *logging.Logger) (gamelog.Repository, *sqlx.DB, error) {
	switch cfg.RecordsSource {
	case config.RecordsSourcePostgres:
		db, err := OpenDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		var repo gamelog.Repository = postgres.NewGamelogRepository(db, policy)
		if cfg.CacheEnabled {
			repo = cache.NewGamelogRepository(repo, cfg.CacheTTL)
		}
		return repo, db, nil
	default:
		records, _, err := recordsource.Load(ctx, recordsource.Options{
			Path:   cfg.RecordsPath,
			Sheet:  cfg.RecordsSheet,
			Policy: policy,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("load records: %w", err)
		}
		return memory.NewGamelogRepository(records), nil, nil
	}
}

// newStatsProvider returns nil when remote lookups are disabled.
func newStatsProvider(cfg config.Config, logger *logging.Logger) seasonstats.Provider {
	if !cfg.NHLStatsEnabled {
		logger.Info("nhl stats lookup disabled", "reason", "NHL_STATS_ENABLED=false")
		return nil
	}

	return nhlstats.NewClient(nhlstats.ClientConfig{
		SearchBaseURL: cfg.NHLSearchBaseURL,
		StatsBaseURL:  cfg.NHLStatsBaseURL,
		Timeout:       cfg.NHLStatsTimeout,
		MaxRetries:    cfg.NHLStatsMaxRetries,
		Logger:        logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.NHLCircuitEnabled,
			FailureThreshold: cfg.NHLCircuitFailureCount,
			OpenTimeout:      cfg.NHLCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.NHLCircuitHalfOpenMaxReq,
		},
	})
}

// TOIPolicy maps TOI_FALLBACK_MINUTES onto the parser policy.
func TOIPolicy(cfg config.Config) gamelog.TOIPolicy {
	if cfg.TOIFallbackMinutes == nil {
		return gamelog.DefaultTOIPolicy()
	}
	return gamelog.FixedTOIFallback(*cfg.TOIFallbackMinutes)
}
