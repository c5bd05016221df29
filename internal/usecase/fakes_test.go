package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"NewsScanner/internal/domain"
)

type memRepo struct {
	mu        sync.Mutex
	articles  []domain.Article
	seq       int
	insertErr error
}

func (m *memRepo) FindByHash(_ context.Context, tenantID, hash string) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.TenantID == tenantID && a.ContentHash == hash {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memRepo) Insert(_ context.Context, article *domain.Article) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return "", m.insertErr
	}
	for _, a := range m.articles {
		if a.TenantID == article.TenantID && a.ContentHash == article.ContentHash {
			return "", domain.ErrDuplicateArticle
		}
	}
	m.seq++
	article.ID = fmt.Sprintf("a-%d", m.seq)
	m.articles = append(m.articles, *article)
	return article.ID, nil
}

func (m *memRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.articles[:0]
	var n int64
	for _, a := range m.articles {
		if a.PublishedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	m.articles = kept
	return n, nil
}

func (m *memRepo) DeactivateOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.articles {
		if m.articles[i].IsActive && m.articles[i].PublishedAt.Before(cutoff) {
			m.articles[i].IsActive = false
			n++
		}
	}
	return n, nil
}

func (m *memRepo) List(_ context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Article
	for _, a := range m.articles {
		if a.TenantID == filter.TenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memRepo) count(tenantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.articles {
		if a.TenantID == tenantID {
			n++
		}
	}
	return n
}

type staticSource struct {
	results []domain.SourceResult
}

func (s staticSource) FetchAll(context.Context) []domain.SourceResult {
	return s.results
}

type directory struct {
	tenants    []string
	tenantsErr error
	vendors    map[string][]domain.Vendor
	vendorsErr error
}

func (d directory) ListActiveTenants(context.Context) ([]string, error) {
	return d.tenants, d.tenantsErr
}

func (d directory) ListActiveVendors(_ context.Context, tenantID string) ([]domain.Vendor, error) {
	return d.vendors[tenantID], d.vendorsErr
}

type recordingPublisher struct {
	mu       sync.Mutex
	articles []domain.Article
}

func (r *recordingPublisher) PublishArticle(_ context.Context, article domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append(r.articles, article)
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, digest)
	return nil
}

var testNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func candidate(title, url string) domain.Candidate {
	return domain.Candidate{
		Title:       title,
		URL:         url,
		PublishedAt: testNow.Add(-time.Hour),
		SourceName:  "test",
		SourceURL:   "https://src.example.org",
	}
}
