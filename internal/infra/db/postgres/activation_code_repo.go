package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"activation-code-service/internal/domain"
	"activation-code-service/internal/domain/model"
	"activation-code-service/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

// FindByCode is a point read by primary key, used to disambiguate a failed
// conditional update into not-found vs already-used.
func (r *activationCodeRepo) FindByCode(ctx context.Context, code string) (*model.ActivationCode, error) {
	const q = `
SELECT code, is_used, used_by, used_at, created_at
  FROM activation_codes
 WHERE code = $1;
`
	var ac model.ActivationCode
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&ac.Code, &ac.IsUsed, &ac.UsedBy, &ac.UsedAt, &ac.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("find code: %w", err)
	}
	return &ac, nil
}

// TryRedeem performs the single atomic state transition. The WHERE predicate
// on is_used and the write execute as one statement, so at most one caller
// ever sees a row affected regardless of concurrency.
func (r *activationCodeRepo) TryRedeem(ctx context.Context, code, requester string) (*model.ActivationCode, error) {
	const q = `
UPDATE activation_codes
   SET is_used = TRUE, used_at = NOW(), used_by = $2
 WHERE code = $1 AND is_used = FALSE
RETURNING code, is_used, used_by, used_at, created_at;
`
	var ac model.ActivationCode
	err := r.pool.QueryRow(ctx, q, code, requester).Scan(
		&ac.Code, &ac.IsUsed, &ac.UsedBy, &ac.UsedAt, &ac.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoRowsUpdated
		}
		return nil, fmt.Errorf("redeem code: %w", err)
	}
	return &ac, nil
}

// InsertBatch bulk-inserts codes in the available state. ON CONFLICT DO
// NOTHING keeps re-imports idempotent.
func (r *activationCodeRepo) InsertBatch(ctx context.Context, codes []string) (int64, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	const q = `
INSERT INTO activation_codes (code)
SELECT UNNEST($1::VARCHAR[])
ON CONFLICT (code) DO NOTHING;
`
	tag, err := r.pool.Exec(ctx, q, codes)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *activationCodeRepo) Stats(ctx context.Context) (model.CodeStats, error) {
	const q = `
SELECT COUNT(*)                                   AS total,
       COUNT(CASE WHEN is_used THEN 1 END)        AS used,
       COUNT(CASE WHEN NOT is_used THEN 1 END)    AS available
  FROM activation_codes;
`
	var s model.CodeStats
	if err := r.pool.QueryRow(ctx, q).Scan(&s.Total, &s.Used, &s.Available); err != nil {
		return model.CodeStats{}, fmt.Errorf("code stats: %w", err)
	}
	return s, nil
}

func (r *activationCodeRepo) RecentRedemptions(ctx context.Context, limit int) ([]*model.ActivationCode, error) {
	const q = `
SELECT code, is_used, used_by, used_at, created_at
  FROM activation_codes
 WHERE used_at IS NOT NULL
 ORDER BY used_at DESC
 LIMIT $1;
`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recent redemptions: %w", err)
	}
	defer rows.Close()

	var out []*model.ActivationCode
	for rows.Next() {
		var ac model.ActivationCode
		if err := rows.Scan(&ac.Code, &ac.IsUsed, &ac.UsedBy, &ac.UsedAt, &ac.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		out = append(out, &ac)
	}
	return out, rows.Err()
}

func (r *activationCodeRepo) Ping(ctx context.Context) error {
	var one int
	return r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one)
}
