package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// advisory lock key guarding concurrent schema setup across instances
const schemaLockID int64 = 727151119

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS activation_codes (
	code       VARCHAR(20) PRIMARY KEY,
	is_used    BOOLEAN     NOT NULL DEFAULT FALSE,
	used_at    TIMESTAMPTZ,
	used_by    VARCHAR(255),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_activation_codes_is_used ON activation_codes (is_used)`,
	`CREATE INDEX IF NOT EXISTS idx_activation_codes_used_at ON activation_codes (used_at DESC) WHERE used_at IS NOT NULL`,
}

// EnsureSchema creates the activation_codes table and its indexes if missing.
// Safe to run from every instance at startup; DDL is serialized behind an
// advisory lock.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}
	defer func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, schemaLockID)
	}()

	for _, stmt := range schemaStatements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
