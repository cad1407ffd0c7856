//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"

	"activation-code-service/internal/domain"
)

const testCode = "abcd1234efgh5678ijkl"

func TestActivationCodeRepo_TryRedeem(t *testing.T) {
	ctx := context.Background()
	repo := NewActivationCodeRepo(testPool)

	t.Run("redeems an available code and returns the row", func(t *testing.T) {
		truncateCodes(t)
		if _, err := repo.InsertBatch(ctx, []string{testCode}); err != nil {
			t.Fatalf("seed: %v", err)
		}

		ac, err := repo.TryRedeem(ctx, testCode, "user-42")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !ac.IsUsed || ac.UsedBy == nil || *ac.UsedBy != "user-42" || ac.UsedAt == nil {
			t.Errorf("unexpected row after redeem: %+v", ac)
		}
	})

	t.Run("second attempt affects no rows", func(t *testing.T) {
		truncateCodes(t)
		if _, err := repo.InsertBatch(ctx, []string{testCode}); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := repo.TryRedeem(ctx, testCode, "user-42"); err != nil {
			t.Fatalf("first redeem: %v", err)
		}

		_, err := repo.TryRedeem(ctx, testCode, "user-99")
		if !errors.Is(err, domain.ErrNoRowsUpdated) {
			t.Fatalf("expected ErrNoRowsUpdated, got %v", err)
		}

		// original redemption must be untouched
		ac, err := repo.FindByCode(ctx, testCode)
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if ac.UsedBy == nil || *ac.UsedBy != "user-42" {
			t.Errorf("original redeemer overwritten: %+v", ac)
		}
	})

	t.Run("unknown code affects no rows", func(t *testing.T) {
		truncateCodes(t)
		_, err := repo.TryRedeem(ctx, "zzzzzzzzzzzzzzzzzzzz", "user-42")
		if !errors.Is(err, domain.ErrNoRowsUpdated) {
			t.Fatalf("expected ErrNoRowsUpdated, got %v", err)
		}
	})

	t.Run("concurrent redeemers produce exactly one winner", func(t *testing.T) {
		truncateCodes(t)
		if _, err := repo.InsertBatch(ctx, []string{testCode}); err != nil {
			t.Fatalf("seed: %v", err)
		}

		const n = 20
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		wg.Add(n)
		for i := 0; i < n; i++ {
			go func() {
				defer wg.Done()
				if _, err := repo.TryRedeem(ctx, testCode, "racer"); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if successes != 1 {
			t.Fatalf("expected exactly 1 winner, got %d", successes)
		}
	})
}

func TestActivationCodeRepo_FindByCode(t *testing.T) {
	ctx := context.Background()
	repo := NewActivationCodeRepo(testPool)
	truncateCodes(t)

	_, err := repo.FindByCode(ctx, "zzzzzzzzzzzzzzzzzzzz")
	if !errors.Is(err, domain.ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestActivationCodeRepo_InsertBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewActivationCodeRepo(testPool)
	truncateCodes(t)

	codes := []string{"aaaa1111bbbb2222cccc", "dddd3333eeee4444ffff"}
	n, err := repo.InsertBatch(ctx, codes)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 inserted, got %d", n)
	}

	// duplicates are ignored
	n, err = repo.InsertBatch(ctx, append(codes, "gggg5555hhhh6666iiii"))
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 new row on re-import, got %d", n)
	}
}

func TestActivationCodeRepo_StatsAndRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewActivationCodeRepo(testPool)
	truncateCodes(t)

	codes := []string{"aaaa1111bbbb2222cccc", "dddd3333eeee4444ffff", "gggg5555hhhh6666iiii"}
	if _, err := repo.InsertBatch(ctx, codes); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.TryRedeem(ctx, codes[0], "user-1"); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if _, err := repo.TryRedeem(ctx, codes[1], "user-2"); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Used != 2 || stats.Available != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	recent, err := repo.RecentRedemptions(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 recent redemptions, got %d", len(recent))
	}
	// newest first
	if recent[0].UsedAt.Before(*recent[1].UsedAt) {
		t.Error("recent redemptions not ordered newest first")
	}
}
