package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const (
	articlesTable   = "articles"
	defaultPageSize = 50
	maxPageSize     = 500
)

var articleColumns = []string{
	"id", "tenant_id", "title", "summary", "url", "published_at",
	"source_name", "source_url", "category", "severity",
	"vendor_id", "vendor_name", "affected_vendors", "keywords",
	"content_hash", "is_active", "created_at", "last_updated",
}

// ArticleRepository persists articles in Postgres or SQLite.
type ArticleRepository struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var _ ports.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository wires a sql.DB opened with the given dialect.
func NewArticleRepository(db *sql.DB, dialect Dialect) *ArticleRepository {
	return &ArticleRepository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
		now: time.Now,
	}
}

// FindByHash returns the tenant article carrying hash, or nil when none exists.
func (r *ArticleRepository) FindByHash(ctx context.Context, tenantID, hash string) (*domain.Article, error) {
	query, args, err := r.sb.Select(articleColumns...).
		From(articlesTable).
		Where(sq.Eq{"tenant_id": tenantID, "content_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find query: %w", err)
	}

	article, err := scanArticle(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return &article, nil
}

// Insert stores a new article, assigning id and timestamps. A tenant+hash
// collision is reported as domain.ErrDuplicateArticle.
func (r *ArticleRepository) Insert(ctx context.Context, article *domain.Article) (string, error) {
	if article.TenantID == "" {
		return "", errors.New("insert article: tenant id is required")
	}

	now := r.now().UTC()
	article.ID = uuid.NewString()
	article.CreatedAt = now
	article.LastUpdated = now
	article.IsActive = true
	if !article.Category.Valid() {
		article.Category = domain.CategoryGeneral
	}
	if !article.Severity.Valid() {
		article.Severity = domain.SeverityInfo
	}

	affected, err := encodeList(article.AffectedVendors)
	if err != nil {
		return "", err
	}
	keywords, err := encodeList(article.Keywords)
	if err != nil {
		return "", err
	}

	query, args, err := r.sb.Insert(articlesTable).
		Columns(articleColumns...).
		Values(
			article.ID, article.TenantID, article.Title, article.Summary, article.URL, article.PublishedAt.UTC(),
			article.SourceName, article.SourceURL, string(article.Category), string(article.Severity),
			nullable(article.VendorID), article.VendorName, affected, keywords,
			article.ContentHash, article.IsActive, article.CreatedAt, article.LastUpdated,
		).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("insert article %s: %w", article.ContentHash, domain.ErrDuplicateArticle)
		}
		return "", fmt.Errorf("insert article: %w", err)
	}
	return article.ID, nil
}

// DeleteOlderThan hard-deletes articles published before cutoff.
func (r *ArticleRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.sb.Delete(articlesTable).
		Where(sq.Lt{"published_at": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}
	return r.exec(ctx, "delete expired", query, args)
}

// DeactivateOlderThan soft-deletes active articles published before cutoff.
func (r *ArticleRepository) DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := r.sb.Update(articlesTable).
		Set("is_active", false).
		Set("last_updated", r.now().UTC()).
		Where(sq.And{
			sq.Lt{"published_at": cutoff.UTC()},
			sq.Eq{"is_active": true},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build deactivate query: %w", err)
	}
	return r.exec(ctx, "deactivate expired", query, args)
}

// List returns tenant articles matching filter, newest first.
func (r *ArticleRepository) List(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	if filter.TenantID == "" {
		return nil, errors.New("list articles: tenant id is required")
	}

	builder := r.sb.Select(articleColumns...).
		From(articlesTable).
		Where(sq.Eq{"tenant_id": filter.TenantID})

	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": string(filter.Category)})
	}
	if filter.Severity != "" {
		builder = builder.Where(sq.Eq{"severity": string(filter.Severity)})
	}
	if filter.VendorID != "" {
		builder = builder.Where(sq.Eq{"vendor_id": filter.VendorID})
	}
	if !filter.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"published_at": filter.From.UTC()})
	}
	if !filter.To.IsZero() {
		builder = builder.Where(sq.Lt{"published_at": filter.To.UTC()})
	}
	if filter.ActiveOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	builder = builder.OrderBy("published_at DESC", "id").Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepository) exec(ctx context.Context, op, query string, args []interface{}) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		a                  domain.Article
		category, severity string
		vendorID           sql.NullString
		affected, keywords string
	)
	err := row.Scan(
		&a.ID, &a.TenantID, &a.Title, &a.Summary, &a.URL, &a.PublishedAt,
		&a.SourceName, &a.SourceURL, &category, &severity,
		&vendorID, &a.VendorName, &affected, &keywords,
		&a.ContentHash, &a.IsActive, &a.CreatedAt, &a.LastUpdated,
	)
	if err != nil {
		return domain.Article{}, err
	}

	a.Category = domain.Category(category)
	a.Severity = domain.Severity(severity)
	a.VendorID = vendorID.String
	a.PublishedAt = a.PublishedAt.UTC()
	a.CreatedAt = a.CreatedAt.UTC()
	a.LastUpdated = a.LastUpdated.UTC()
	if a.AffectedVendors, err = decodeList(affected); err != nil {
		return domain.Article{}, err
	}
	if a.Keywords, err = decodeList(keywords); err != nil {
		return domain.Article{}, err
	}
	return a, nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

func decodeList(raw string) ([]string, error) {
	values := []string{}
	if raw == "" {
		return values, nil
	}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return values, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
