package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/meridian-shop/meridian/migrations"
)

// Migrate applies pending schema migrations using the embedded scripts.
// Goose needs a database/sql handle, so it opens its own short-lived
// connection via the pgx stdlib driver.
func Migrate(ctx context.Context, dsn string) error {
	handle, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("platform/db: open for migrate: %w", err)
	}
	defer func() {
		_ = handle.Close()
	}()

	goose.SetBaseFS(migrations.Files)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("platform/db: set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, handle, "."); err != nil {
		return fmt.Errorf("platform/db: migrate up: %w", err)
	}

	return nil
}
