package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-handover/pkg/timeutils"
)

const (
	maxConns          = 10
	healthCheckPeriod = 30 * time.Second
)

type Config struct {
	ConnectionString   string
	RetryAttemptDelays []time.Duration
}

type PgxDatabaseFactory struct {
	cfg Config
}

func NewPgxDatabaseFactory(cfg Config) *PgxDatabaseFactory {
	return &PgxDatabaseFactory{
		cfg: cfg,
	}
}

// Create migrates the schema and opens a pool. Both steps are retried with
// the configured delays while the database is still starting up.
func (f *PgxDatabaseFactory) Create() (*pgxpool.Pool, error) {
	ctx := context.Background()
	_, err := timeutils.Retry(ctx, f.cfg.RetryAttemptDelays, func(context.Context) (struct{}, error) {
		return struct{}{}, runMigrations(f.cfg.ConnectionString)
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to run DB migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(f.cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolCfg.MaxConns = maxConns
	poolCfg.HealthCheckPeriod = healthCheckPeriod

	pool, err := timeutils.Retry(ctx, f.cfg.RetryAttemptDelays, func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return pool, nil
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create a connection pool: %w", err)
	}
	return pool, nil
}

//go:embed migrations/*.sql
var migrationsDir embed.FS

func runMigrations(dsn string) error {
	d, err := iofs.New(migrationsDir, "migrations")
	if err != nil {
		return fmt.Errorf("failed to return an iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, dsn)
	if err != nil {
		return fmt.Errorf("failed to get a new migrate instance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations to the DB: %w", err)
		}
	}
	return nil
}
