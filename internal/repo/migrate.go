package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/pkordes/taximeter/migrations"
)

// Migrate applies all pending migrations from migrations.FS.
// goose needs a database/sql handle; open it with the "pgx" driver from
// github.com/jackc/pgx/v5/stdlib.
func Migrate(ctx context.Context, sqlDB *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("repo.Migrate: up: %w", err)
	}
	return nil
}
