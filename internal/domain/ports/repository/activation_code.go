package repository

import (
	"context"

	"activation-code-service/internal/domain/model"
)

// ActivationCodeRepository is the port for the durable code store.
type ActivationCodeRepository interface {
	// FindByCode is a point read by primary key.
	// Returns domain.ErrCodeNotFound when no such code exists.
	FindByCode(ctx context.Context, code string) (*model.ActivationCode, error)

	// TryRedeem atomically marks the code as used by requester, but only if it
	// is still unused. The predicate check and the write are a single
	// statement; no read-modify-write gap exists. Returns the updated row, or
	// domain.ErrNoRowsUpdated when the code is absent or already redeemed.
	TryRedeem(ctx context.Context, code, requester string) (*model.ActivationCode, error)

	// InsertBatch inserts codes in the available state, ignoring duplicates,
	// and reports how many rows were actually inserted.
	InsertBatch(ctx context.Context, codes []string) (int64, error)

	// Stats returns total/used/available counts.
	Stats(ctx context.Context) (model.CodeStats, error)

	// RecentRedemptions lists the most recently redeemed codes, newest first.
	RecentRedemptions(ctx context.Context, limit int) ([]*model.ActivationCode, error)

	// Ping verifies store connectivity.
	Ping(ctx context.Context) error
}
