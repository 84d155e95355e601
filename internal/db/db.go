// Package db provides database utilities and connection handling for AfriChain.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	// maxOpenConns caps concurrent connections to the database.
	maxOpenConns = 25
	// maxIdleConns keeps a small pool warm between bursts of product lookups.
	maxIdleConns = 5
	// connMaxLifetime recycles connections so load balancer failovers are picked up.
	connMaxLifetime = 5 * time.Minute
	// pingTimeout bounds the startup connectivity check.
	pingTimeout = 5 * time.Second
)

// Connect opens a PostgreSQL connection pool and verifies connectivity.
// The returned *sql.DB is safe for concurrent use and should be closed
// by the caller on shutdown.
func Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool.SetMaxOpenConns(maxOpenConns)
	pool.SetMaxIdleConns(maxIdleConns)
	pool.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the products table if it does not exist. It is
// idempotent and runs at startup so a fresh database is usable without
// a separate migration step.
func EnsureSchema(ctx context.Context, pool *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS products (
    id              TEXT PRIMARY KEY,
    name            TEXT NOT NULL,
    price           DOUBLE PRECISION NOT NULL,
    seller_verified BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_products_registered_at ON products (registered_at DESC);
`
	if _, err := pool.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure products schema: %w", err)
	}
	return nil
}
