package ports

import (
	"context"
	"time"

	"NewsScanner/internal/domain"
)

// Fetcher downloads raw documents with transport-level retries.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ArticleSource pulls candidates from every configured source, one result per source.
type ArticleSource interface {
	FetchAll(ctx context.Context) []domain.SourceResult
}

// ArticleRepository persists articles for deduplication and querying.
type ArticleRepository interface {
	FindByHash(ctx context.Context, tenantID, hash string) (*domain.Article, error)
	Insert(ctx context.Context, article *domain.Article) (string, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
}

// TenantDirectory lists tenants eligible for ingestion.
type TenantDirectory interface {
	ListActiveTenants(ctx context.Context) ([]string, error)
}

// VendorDirectory lists the known vendors of a tenant.
type VendorDirectory interface {
	ListActiveVendors(ctx context.Context, tenantID string) ([]domain.Vendor, error)
}

// Publisher streams freshly saved articles to downstream consumers.
type Publisher interface {
	PublishArticle(ctx context.Context, article domain.Article) error
}

// Notifier pushes alert digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Timer runs named recurring jobs.
type Timer interface {
	Schedule(name, spec string, job func()) error
	Reschedule(name, spec string) error
	Next(name string) time.Time
	Prev(name string) time.Time
	Spec(name string) string
	Start()
	Stop() context.Context
}
