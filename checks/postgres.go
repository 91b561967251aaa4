package checks

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonwraymond/healthkit/health"
)

// Pinger is satisfied by *pgxpool.Pool, *pgx.Conn and pgxmock pools.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PostgresChecker pings a PostgreSQL connection pool.
type PostgresChecker struct {
	db Pinger
}

// Postgres checks db with Ping.
func Postgres(db Pinger) *PostgresChecker {
	return &PostgresChecker{db: db}
}

// Check pings the database.
func (p *PostgresChecker) Check(ctx context.Context) error {
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// NewPostgresPool parses dsn and creates a pool. Connections are opened
// lazily, so an unreachable server surfaces as a failing check rather than
// a construction error.
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.MaxConns = 2
	return pgxpool.NewWithConfig(ctx, cfg)
}

var (
	_ health.Checker = (*PostgresChecker)(nil)
	_ Pinger         = (*pgxpool.Pool)(nil)
)
