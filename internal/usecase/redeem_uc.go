package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"activation-code-service/internal/domain"
	"activation-code-service/internal/domain/model"
	"activation-code-service/internal/domain/ports/repository"
)

// Compile-time check
var _ RedeemUseCase = (*redeemUC)(nil)

// RedeemUseCase is the redemption engine: it owns the one-way transition of a
// code from available to used.
type RedeemUseCase interface {
	// Redeem consumes rawCode on behalf of requester. Exactly one concurrent
	// caller per code ever succeeds; the rest receive
	// domain.ErrCodeNotFound or an AlreadyUsedError carrying the winning row.
	Redeem(ctx context.Context, rawCode, requester string) (*model.ActivationCode, error)
}

// AlreadyUsedError carries the original redemption for caller auditing.
type AlreadyUsedError struct {
	Prior *model.ActivationCode
}

func (e *AlreadyUsedError) Error() string { return domain.ErrCodeAlreadyUsed.Error() }

func (e *AlreadyUsedError) Unwrap() error { return domain.ErrCodeAlreadyUsed }

type redeemUC struct {
	codes repository.ActivationCodeRepository
	log   *zerolog.Logger
}

func NewRedeemUseCase(codes repository.ActivationCodeRepository, logger *zerolog.Logger) *redeemUC {
	return &redeemUC{codes: codes, log: logger}
}

// Redeem holds no locks of its own: the store's conditional update is the
// sole arbiter between concurrent callers, so correctness holds across any
// number of processes sharing the same database.
func (uc *redeemUC) Redeem(ctx context.Context, rawCode, requester string) (*model.ActivationCode, error) {
	code, err := model.NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	requester = model.DefaultRequester(requester)

	ac, err := uc.codes.TryRedeem(ctx, code, requester)
	if err == nil {
		uc.log.Info().Str("code", code).Str("used_by", requester).Msg("code redeemed")
		return ac, nil
	}
	if !errors.Is(err, domain.ErrNoRowsUpdated) {
		return nil, fmt.Errorf("try redeem: %w", err)
	}

	// Zero rows affected: either the code does not exist or someone already
	// redeemed it. The follow-up read is diagnostic only; it can race with
	// other writers, but the update above already settled exactly-once.
	prior, err := uc.codes.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("lookup after failed redeem: %w", err)
	}
	if prior.IsUsed {
		uc.log.Debug().Str("code", code).Msg("code already redeemed")
		return nil, &AlreadyUsedError{Prior: prior}
	}

	// Row exists and reads as unused even though the update matched nothing:
	// a transient state only reachable mid-race. Surface an internal failure;
	// retrying the whole call is safe.
	return nil, fmt.Errorf("redeem raced: %w", domain.ErrNoRowsUpdated)
}
