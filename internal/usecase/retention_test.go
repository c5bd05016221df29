package usecase

import (
	"context"
	"testing"
	"time"

	"NewsScanner/internal/domain"
)

func seedAged(t *testing.T, repo *memRepo, now time.Time) {
	t.Helper()
	for hash, days := range map[string]int{"old": 91, "recent": 10} {
		a := &domain.Article{TenantID: "t-1", ContentHash: hash, PublishedAt: now.AddDate(0, 0, -days), IsActive: true}
		if _, err := repo.Insert(context.Background(), a); err != nil {
			t.Fatalf("seed %s: %v", hash, err)
		}
	}
}

func TestRetentionSweepDeletesExpired(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	seedAged(t, repo, testNow)

	sweeper := NewRetentionSweeper(repo, 0, false, nil)
	sweeper.now = func() time.Time { return testNow }

	n, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if found, _ := repo.FindByHash(context.Background(), "t-1", "old"); found != nil {
		t.Fatalf("91-day-old article survived")
	}
	if found, _ := repo.FindByHash(context.Background(), "t-1", "recent"); found == nil {
		t.Fatalf("10-day-old article removed")
	}
}

func TestRetentionSweepSoftDelete(t *testing.T) {
	t.Parallel()

	repo := &memRepo{}
	seedAged(t, repo, testNow)

	sweeper := NewRetentionSweeper(repo, DefaultRetention, true, nil)
	sweeper.now = func() time.Time { return testNow }

	n, err := sweeper.Sweep(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("Sweep: n=%d err=%v", n, err)
	}
	old, _ := repo.FindByHash(context.Background(), "t-1", "old")
	if old == nil || old.IsActive {
		t.Fatalf("expected old article kept but inactive: %+v", old)
	}
	if repo.count("t-1") != 2 {
		t.Fatalf("soft delete must keep rows")
	}
}
