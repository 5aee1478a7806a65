package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/push-fanout/internal/config"
)

// Connect creates the pgxpool shared by the repositories and the
// recipient source, and verifies connectivity before returning it.
// Pool sizing and connection lifetime come from config; recycling
// connections matters here because fan-out COPYs and drain deletes
// hold them for comparatively long bursts.
func Connect(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.MinConns = cfg.DBMinConns
	poolCfg.MaxConnLifetime = cfg.DBConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Migrate applies all pending up-migrations from cfg.MigrationsDir:
// the directory tables the recipient source reads, then the
// notifications table, then the queue. It is idempotent; already
// applied migrations are skipped.
func Migrate(cfg *config.Config) error {
	m, err := migrate.New("file://"+cfg.MigrationsDir, migrationURL(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// migrationURL rewrites a postgres connection string to the "pgx5://"
// scheme golang-migrate's pgx/v5 driver expects.
func migrationURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + databaseURL[len(scheme):]
		}
	}
	return "pgx5://" + databaseURL
}
