package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

// NewPgxPool connects a pgx pool with a bounded connect timeout.
func NewPgxPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pgxpool.ConnectConfig(ctx, cfg)
}

// EnsureSchema creates the two tables this service owns. Idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS payments (
  id             TEXT PRIMARY KEY,
  merchant_id    BIGINT NOT NULL,
  amount         NUMERIC(12,2) NOT NULL,
  description    TEXT NOT NULL,
  status         TEXT NOT NULL,
  created_at     TIMESTAMPTZ NOT NULL,
  expires_at     TIMESTAMPTZ NOT NULL,
  ref_id         TEXT NOT NULL DEFAULT '',
  failure_reason TEXT NOT NULL DEFAULT '',
  completed_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS payments_merchant_idx ON payments (merchant_id);

CREATE TABLE IF NOT EXISTS businesses (
  merchant_id   BIGINT PRIMARY KEY,
  id            TEXT NOT NULL,
  name          TEXT NOT NULL,
  phone         TEXT NOT NULL,
  registered_at TIMESTAMPTZ NOT NULL,
  total_sales   NUMERIC(14,2) NOT NULL DEFAULT 0,
  today_sales   NUMERIC(14,2) NOT NULL DEFAULT 0,
  tx_count      BIGINT NOT NULL DEFAULT 0
);`
	_, err := pool.Exec(ctx, ddl)
	return err
}
