package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"

	"github.com/hurou927/db-tree/internal/catalog"
	"github.com/hurou927/db-tree/internal/config"
)

// Open connects with the configured driver and returns a catalog bound to
// the configured scope. The caller closes it.
func Open(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	dialect, err := catalog.Lookup(cfg.Connection.Driver)
	if err != nil {
		return nil, err
	}

	if cfg.Connection.Driver == config.DriverPostgres {
		pool, err := NewPool(ctx, &cfg.Connection)
		if err != nil {
			return nil, err
		}
		q := catalog.NewPoolQuerier(pool)
		cat := catalog.New(q, dialect, cfg.Scope())
		cat.OnClose(q.Close)
		return cat, nil
	}

	sqlDB, err := sql.Open(cfg.Connection.Driver, cfg.Connection.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Connection.Driver, err)
	}
	if cfg.Connection.Driver == config.DriverSQLite {
		// Queries are sequential; one connection keeps :memory: databases intact.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	q := catalog.NewSQLQuerier(sqlDB)
	cat := catalog.New(q, dialect, cfg.Scope())
	cat.OnClose(q.Close)
	return cat, nil
}

// NewPool creates a new pgx connection pool from config.
func NewPool(ctx context.Context, cfg *config.Connection) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
