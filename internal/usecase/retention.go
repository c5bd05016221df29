package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsScanner/internal/ports"
)

// DefaultRetention is the age after which articles are swept.
const DefaultRetention = 90 * 24 * time.Hour

// RetentionSweeper removes articles published before now minus the window.
type RetentionSweeper struct {
	repo       ports.ArticleRepository
	window     time.Duration
	softDelete bool
	logger     *slog.Logger
	now        func() time.Time
}

// NewRetentionSweeper builds a sweeper. softDelete deactivates instead of deleting.
func NewRetentionSweeper(repo ports.ArticleRepository, window time.Duration, softDelete bool, logger *slog.Logger) *RetentionSweeper {
	if window <= 0 {
		window = DefaultRetention
	}
	return &RetentionSweeper{
		repo:       repo,
		window:     window,
		softDelete: softDelete,
		logger:     logger,
		now:        time.Now,
	}
}

// Sweep runs one retention pass and returns the number of affected articles.
func (r *RetentionSweeper) Sweep(ctx context.Context) (int64, error) {
	if r.repo == nil {
		return 0, errors.New("retention sweeper has no repository")
	}

	cutoff := r.now().UTC().Add(-r.window)

	var (
		n   int64
		err error
	)
	if r.softDelete {
		n, err = r.repo.DeactivateOlderThan(ctx, cutoff)
	} else {
		n, err = r.repo.DeleteOlderThan(ctx, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("sweep articles before %s: %w", cutoff.Format(time.RFC3339), err)
	}

	if r.logger != nil {
		r.logger.Info("retention sweep complete", "cutoff", cutoff, "affected", n, "soft_delete", r.softDelete)
	}
	return n, nil
}
