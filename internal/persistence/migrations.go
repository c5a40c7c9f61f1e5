package persistence

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies the embedded goose migrations to the pool's database.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(zapGooseLogger{logger: logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	logger.Info("migrations applied", zap.Int64("version", version))
	return nil
}

// MigrationStatus logs the applied state of every migration.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(zapGooseLogger{logger: logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.StatusContext(ctx, db, migrationsDir)
}

type zapGooseLogger struct {
	logger *zap.SugaredLogger
}

func (l zapGooseLogger) Fatalf(format string, v ...interface{}) { l.logger.Fatalf(format, v...) }
func (l zapGooseLogger) Printf(format string, v ...interface{})  { l.logger.Infof(format, v...) }
