package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"activation-code-service/internal/domain/model"
	"activation-code-service/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// RecentLimit caps how many recent redemptions the overview returns.
const RecentLimit = 5

type Overview struct {
	Stats  model.CodeStats
	Recent []*model.ActivationCode
	AsOf   time.Time
}

type StatsUseCase interface {
	Overview(ctx context.Context) (*Overview, error)
}

type statsUC struct {
	codes repository.ActivationCodeRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(codes repository.ActivationCodeRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{codes: codes, log: logger}
}

func (s *statsUC) Overview(ctx context.Context) (*Overview, error) {
	stats, err := s.codes.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.codes.RecentRedemptions(ctx, RecentLimit)
	if err != nil {
		return nil, err
	}
	return &Overview{Stats: stats, Recent: recent, AsOf: time.Now().UTC()}, nil
}
