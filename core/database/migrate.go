package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"classtime/core/logger"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrate runs a goose command (up, down, status, redo, version, ...) against
// the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...any) {
	logger.Error("Database:Migrate:Fatal", "detail", fmt.Sprintf(format, v...))
}

func (gooseLogger) Printf(format string, v ...any) {
	logger.Info("Database:Migrate", "detail", fmt.Sprintf(format, v...))
}
