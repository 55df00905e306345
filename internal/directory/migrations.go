package directory

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateTables creates all tables for the directory service. The composite
// primary key on user_groups comes from the model's pk tags; it is
// load-bearing, turning a racing duplicate membership insert into a
// constraint violation.
func CreateTables(ctx context.Context, db *bun.DB) error {
	models := []interface{}{
		(*User)(nil),
		(*Group)(nil),
		(*UserGroup)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// directoryIndexes holds the index DDL the table builder does not emit
var directoryIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE INDEX IF NOT EXISTS idx_users_enabled ON users (enabled)`,
}

// CreateIndexes creates all indexes for the directory service
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	for _, ddl := range directoryIndexes {
		_, err := db.ExecContext(ctx, ddl)
		if err != nil {
			return fmt.Errorf("failed to apply DDL %q: %w", ddl, err)
		}
	}

	return nil
}

// SeedGroups inserts groups that do not exist yet. Existing rows are left
// untouched, so seeding is safe to run on every boot.
func SeedGroups(ctx context.Context, db *bun.DB, groups []*Group) error {
	if len(groups) == 0 {
		return nil
	}

	_, err := db.NewInsert().
		Model(&groups).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed groups: %w", err)
	}

	return nil
}
