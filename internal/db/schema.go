package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS deployments (
		id TEXT PRIMARY KEY,
		release_version TEXT NOT NULL,
		environment TEXT NOT NULL CHECK (environment IN ('dev','staging','production')),
		work_item_ids INTEGER[] NOT NULL DEFAULT '{}',
		deployed_by TEXT NOT NULL,
		deployed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		notes TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_deployments_environment_deployed_at ON deployments(environment, deployed_at DESC)`,
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
