package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// dbCheckTimeout bounds how long a readiness probe may hold a connection.
// The product registry shares its pool with request handlers, so a hung
// probe must not starve them.
const dbCheckTimeout = 2 * time.Second

// DBChecker reports whether the product registry database is reachable.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker creates a health checker for the product registry database.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck pings the database with a bounded timeout.
func (d *DBChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dbCheckTimeout)
	defer cancel()

	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("product registry database unreachable: %w", err)
	}
	return nil
}
