package permsource

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order; each statement is idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id TEXT NOT NULL,
		role    TEXT NOT NULL,
		UNIQUE (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS user_permissions (
		user_id  TEXT NOT NULL,
		resource TEXT NOT NULL,
		action   TEXT NOT NULL,
		UNIQUE (user_id, resource, action)
	)`,
	`CREATE TABLE IF NOT EXISTS route_requirements (
		path_prefix TEXT NOT NULL,
		resource    TEXT NOT NULL,
		action      TEXT NOT NULL,
		UNIQUE (path_prefix, resource, action)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_permissions_user ON user_permissions (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_roles_user ON user_roles (user_id)`,
}

// Migrate creates the permission schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
