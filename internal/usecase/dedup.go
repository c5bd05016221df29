package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"NewsScanner/internal/ports"
)

// isoMillis matches the ISO-8601 form with millisecond precision and a Z suffix for UTC.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// ContentHash is SHA-256 over title, url and the UTC ISO-8601 publication time, concatenated.
func ContentHash(title, url string, publishedAt time.Time) string {
	sum := sha256.Sum256([]byte(title + url + publishedAt.UTC().Format(isoMillis)))
	return hex.EncodeToString(sum[:])
}

// Deduplicator checks whether a tenant already holds an article with a given hash.
type Deduplicator struct {
	repo ports.ArticleRepository
}

// NewDeduplicator wires the repository read side.
func NewDeduplicator(repo ports.ArticleRepository) *Deduplicator {
	return &Deduplicator{repo: repo}
}

// Seen reports whether tenantID already stores hash.
func (d *Deduplicator) Seen(ctx context.Context, tenantID, hash string) (bool, error) {
	existing, err := d.repo.FindByHash(ctx, tenantID, hash)
	if err != nil {
		return false, fmt.Errorf("find by hash: %w", err)
	}
	return existing != nil, nil
}
