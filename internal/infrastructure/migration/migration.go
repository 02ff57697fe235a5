package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

// Migrations lists the schema changes in the order they are applied. Every
// statement is idempotent so the list can run on each start.
var Migrations = []Migration{
	{
		Name: "create_user_profiles",
		SQL: `
		CREATE TABLE IF NOT EXISTS user_profiles (
			user_id            TEXT PRIMARY KEY,
			cv_text            TEXT NOT NULL DEFAULT '',
			transcript_text    TEXT NOT NULL DEFAULT '',
			structured_profile JSONB,
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "create_workflows",
		SQL: `
		CREATE TABLE IF NOT EXISTS workflows (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			message      TEXT NOT NULL DEFAULT '',
			language     TEXT NOT NULL DEFAULT 'en',
			status       TEXT NOT NULL,
			result       JSONB,
			error        TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL,
			started_at   TIMESTAMPTZ,
			completed_at TIMESTAMPTZ
		);`,
	},
	{
		Name: "create_workflow_tasks",
		SQL: `
		CREATE TABLE IF NOT EXISTS workflow_tasks (
			seq         BIGSERIAL PRIMARY KEY,
			id          TEXT NOT NULL UNIQUE,
			workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
			task_type   TEXT NOT NULL,
			output      JSONB,
			created_at  TIMESTAMPTZ NOT NULL
		);`,
	},
	{
		Name: "create_submissions",
		SQL: `
		CREATE TABLE IF NOT EXISTS submissions (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			job_id     TEXT NOT NULL,
			provider   TEXT NOT NULL,
			host_label TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
	},
	{
		Name: "index_workflows_sweep",
		SQL:  `CREATE INDEX IF NOT EXISTS workflows_status_updated_idx ON workflows (status, updated_at);`,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting database migrations", zap.Int("count", len(Migrations)))

	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			logger.Error("migration failed", zap.String("name", m.Name), zap.Error(err))
			return err
		}
		logger.Debug("migration completed", zap.String("name", m.Name))
	}

	logger.Info("all migrations completed")
	return nil
}
