//go:build !integration

package usecase_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"activation-code-service/internal/domain"
	"activation-code-service/internal/domain/model"
	"activation-code-service/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// mockCodeRepo is a mutex-guarded in-memory store. TryRedeem mirrors the
// atomicity of the real conditional update: check and mutate under one lock.
type mockCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.ActivationCode

	// optional hooks to simulate storage faults
	TryRedeemErr  error
	FindByCodeErr error
	InsertErr     error
	StatsErr      error
	RecentErr     error
}

var _ repository.ActivationCodeRepository = (*mockCodeRepo)(nil)

func newMockCodeRepo() *mockCodeRepo {
	return &mockCodeRepo{codes: map[string]*model.ActivationCode{}}
}

func (m *mockCodeRepo) seed(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code] = &model.ActivationCode{Code: code, CreatedAt: time.Now()}
}

func (m *mockCodeRepo) FindByCode(ctx context.Context, code string) (*model.ActivationCode, error) {
	if m.FindByCodeErr != nil {
		return nil, m.FindByCodeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.codes[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	cp := *ac
	return &cp, nil
}

func (m *mockCodeRepo) TryRedeem(ctx context.Context, code, requester string) (*model.ActivationCode, error) {
	if m.TryRedeemErr != nil {
		return nil, m.TryRedeemErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ac, ok := m.codes[code]
	if !ok || ac.IsUsed {
		return nil, domain.ErrNoRowsUpdated
	}
	now := time.Now()
	ac.IsUsed = true
	ac.UsedBy = &requester
	ac.UsedAt = &now
	cp := *ac
	return &cp, nil
}

func (m *mockCodeRepo) InsertBatch(ctx context.Context, codes []string) (int64, error) {
	if m.InsertErr != nil {
		return 0, m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var inserted int64
	for _, c := range codes {
		if _, ok := m.codes[c]; ok {
			continue
		}
		m.codes[c] = &model.ActivationCode{Code: c, CreatedAt: time.Now()}
		inserted++
	}
	return inserted, nil
}

func (m *mockCodeRepo) Stats(ctx context.Context) (model.CodeStats, error) {
	if m.StatsErr != nil {
		return model.CodeStats{}, m.StatsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.CodeStats
	for _, ac := range m.codes {
		s.Total++
		if ac.IsUsed {
			s.Used++
		} else {
			s.Available++
		}
	}
	return s, nil
}

func (m *mockCodeRepo) RecentRedemptions(ctx context.Context, limit int) ([]*model.ActivationCode, error) {
	if m.RecentErr != nil {
		return nil, m.RecentErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActivationCode
	for _, ac := range m.codes {
		if ac.UsedAt == nil {
			continue
		}
		cp := *ac
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UsedAt.After(*out[j].UsedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockCodeRepo) Ping(ctx context.Context) error { return nil }
