package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/queendomzy/swiftstay-api/pkg/config"
)

// Connect builds the single process-wide pool. The pool is the only shared
// mutable resource in the system; it is created at startup, injected into
// every repo and closed by main on shutdown.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	pc.MinConns = int32(cfg.MinConns)
	pc.MaxConns = int32(cfg.MaxConns)
	pc.MaxConnLifetime = cfg.MaxLifetime
	return pgxpool.NewWithConfig(ctx, pc)
}
