//go:build !integration

package web

import (
	"context"
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

// mockCodeRepo backs the handler tests; the real use cases run on top of it.
type mockCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*model.ActivationCode

	TryRedeemErr error
	StatsErr     error
	PingErr      error
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
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range codes {
		if _, ok := m.codes[c]; !ok {
			m.codes[c] = &model.ActivationCode{Code: c, CreatedAt: time.Now()}
			n++
		}
	}
	return n, nil
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
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ActivationCode
	for _, ac := range m.codes {
		if ac.UsedAt == nil {
			continue
		}
		cp := *ac
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockCodeRepo) Ping(ctx context.Context) error { return m.PingErr }

// mockLimiter records calls and answers with a fixed verdict.
type mockLimiter struct {
	mu    sync.Mutex
	calls int
	allow bool
	err   error
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.allow, m.err
}
