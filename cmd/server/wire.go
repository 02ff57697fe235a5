package main

import (
	"context"
	"database/sql"
	"fmt"

	httpadapter "job-copilot/internal/adapter/http"
	repo "job-copilot/internal/adapter/repository"
	"job-copilot/internal/config"
	"job-copilot/internal/infrastructure/migration"
	"job-copilot/internal/usecase"
	infra "job-copilot/pkg/infrastructure"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

type application struct {
	handler   *httpadapter.Handler
	processor *usecase.Processor
	closers   []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type stores struct {
	profiles    usecase.ProfileRepo
	workflows   usecase.WorkflowRepo
	submissions usecase.ApplicationLog
}

// openStores selects the backends named by store.backend. The file backend
// keeps workflows in memory; workflows are transient either way.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger, a *application) (stores, error) {
	switch cfg.Store.Backend {
	case "file":
		p, err := repo.NewFileProfiles(cfg.Store.Dir)
		if err != nil {
			return stores{}, err
		}
		return stores{profiles: p, workflows: repo.NewMemoryWorkflows(), submissions: repo.NewMemorySubmissions()}, nil

	case "sqlite":
		db, err := infra.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := repo.InitSQLite(ctx, db); err != nil {
			return stores{}, err
		}
		return sqliteStores(db), nil

	case "postgres":
		pool, err := infra.NewPool(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		if err := migration.RunMigrations(ctx, pool, logger.Named("migration")); err != nil {
			return stores{}, err
		}
		return postgresStores(pool), nil

	default:
		return stores{profiles: repo.NewMemoryProfiles(), workflows: repo.NewMemoryWorkflows(), submissions: repo.NewMemorySubmissions()}, nil
	}
}

func sqliteStores(db *sql.DB) stores {
	return stores{
		profiles:    repo.NewSQLiteProfiles(db),
		workflows:   repo.NewMemoryWorkflows(),
		submissions: repo.NewSQLiteSubmissions(db),
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		profiles:    repo.NewPostgresProfiles(pool),
		workflows:   repo.NewPostgresWorkflows(pool),
		submissions: repo.NewPostgresSubmissions(pool),
	}
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*application, error) {
	a := &application{}

	st, err := openStores(ctx, cfg, logger, a)
	if err != nil {
		a.close()
		return nil, err
	}

	catalog := usecase.DefaultCatalog()
	if cfg.Catalog.File != "" {
		if catalog, err = usecase.LoadCatalog(cfg.Catalog.File); err != nil {
			a.close()
			return nil, err
		}
		logger.Info("catalog loaded", zap.String("file", cfg.Catalog.File), zap.Int("jobs", catalog.Len()))
	}

	profiles := usecase.NewProfiles(st.profiles, cfg.Store.Timeout, logger.Named("profiles"))
	orch := usecase.NewOrchestrator(profiles, usecase.NewMatcher(catalog),
		usecase.OrchestratorConfig{EagerPreview: cfg.Workflow.EagerPreview}, logger.Named("orchestrator"))
	a.processor = usecase.NewProcessor(orch, st.workflows, usecase.ProcessorConfig{
		Workers:       cfg.Workflow.Workers,
		QueueSize:     cfg.Workflow.QueueSize,
		RunTimeout:    cfg.Workflow.RunTimeout,
		StoreTimeout:  cfg.Store.Timeout,
		TTL:           cfg.Workflow.TTL,
		SweepInterval: cfg.Workflow.SweepInterval,
		EagerPreview:  cfg.Workflow.EagerPreview,
	}, logger.Named("processor"))

	a.handler = httpadapter.NewHandler(httpadapter.Deps{
		Profiles:     profiles,
		Orchestrator: orch,
		Processor:    a.processor,
		Applier:      usecase.NewApplier(catalog, st.submissions, cfg.Store.Timeout, logger.Named("applier")),
		Renderer:     infra.NewChromedpRenderer(cfg.Renderer.ChromePath, cfg.Renderer.Timeout),
		Logger:       logger.Named("http"),
	})
	return a, nil
}
