package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsScanner/internal/classifier"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

const (
	defaultConcurrency = 4
	maxConcurrency     = 4
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Source      ports.ArticleSource
	Repository  ports.ArticleRepository
	Tenants     ports.TenantDirectory
	Vendors     ports.VendorDirectory
	Publisher   ports.Publisher
	Notifier    ports.Notifier
	MinAlert    domain.Severity
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Pipeline runs ingestion passes: fetch, classify, vendor-match, dedup, persist.
type Pipeline struct {
	source      ports.ArticleSource
	repository  ports.ArticleRepository
	tenants     ports.TenantDirectory
	matcher     *VendorMatcher
	dedup       *Deduplicator
	publisher   ports.Publisher
	notifier    ports.Notifier
	minAlert    domain.Severity
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if concurrency > maxConcurrency {
		concurrency = maxConcurrency
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	minAlert := deps.MinAlert
	if !minAlert.Valid() {
		minAlert = domain.SeverityCritical
	}
	return &Pipeline{
		source:      deps.Source,
		repository:  deps.Repository,
		tenants:     deps.Tenants,
		matcher:     NewVendorMatcher(deps.Vendors),
		dedup:       NewDeduplicator(deps.Repository),
		publisher:   deps.Publisher,
		notifier:    deps.Notifier,
		minAlert:    minAlert,
		concurrency: concurrency,
		logger:      deps.Logger,
		now:         now,
	}
}

// RunForTenant performs one full pass for tenantID. Source and article failures are
// logged and counted; only a missing tenant id or repository returns an error.
func (p *Pipeline) RunForTenant(ctx context.Context, tenantID string) (domain.IngestResult, error) {
	started := p.now()
	result := domain.IngestResult{
		TenantID:     tenantID,
		SourceErrors: map[string]string{},
		StartedAt:    started,
	}
	if strings.TrimSpace(tenantID) == "" {
		return result, errors.New("tenant id is required")
	}
	if p.source == nil || p.repository == nil {
		return result, errors.New("pipeline is missing source or repository")
	}

	vendors, err := p.matcher.Load(ctx, tenantID)
	if err != nil {
		p.warn("vendor lookup failed, continuing without vendor matches", "tenant", tenantID, "error", err)
	}

	var candidates []domain.Candidate
	for _, res := range p.source.FetchAll(ctx) {
		if res.Err != nil {
			result.SourceErrors[res.Source.Name] = res.Err.Error()
			continue
		}
		candidates = append(candidates, res.Candidates...)
	}
	result.TotalFound = len(candidates)

	for _, candidate := range candidates {
		article, saved, err := p.ingestCandidate(ctx, tenantID, candidate, vendors)
		switch {
		case err != nil:
			result.Failed++
			p.warn("persist article failed", "tenant", tenantID, "url", candidate.URL, "error", err)
		case saved:
			result.Saved++
			result.Articles = append(result.Articles, article)
		default:
			result.Skipped++
		}
	}

	result.Duration = p.now().Sub(started)
	p.info("tenant pass complete",
		"tenant", tenantID,
		"saved", result.Saved,
		"skipped", result.Skipped,
		"found", result.TotalFound,
		"failed", result.Failed,
		"source_errors", len(result.SourceErrors),
		"duration", result.Duration,
	)

	p.notifyAlerts(ctx, result)
	return result, nil
}

// ingestCandidate returns saved=false without error when the candidate is a duplicate.
func (p *Pipeline) ingestCandidate(ctx context.Context, tenantID string, candidate domain.Candidate, vendors VendorSet) (domain.Article, bool, error) {
	if candidate.PublishedAt.IsZero() {
		candidate.PublishedAt = p.now().UTC()
	}

	hash := ContentHash(candidate.Title, candidate.URL, candidate.PublishedAt)
	seen, err := p.dedup.Seen(ctx, tenantID, hash)
	if err != nil {
		return domain.Article{}, false, err
	}
	if seen {
		return domain.Article{}, false, nil
	}

	category, severity, _ := classifier.Classify(candidate.Title, candidate.Summary)
	article := domain.Article{
		TenantID:        tenantID,
		Title:           candidate.Title,
		Summary:         candidate.Summary,
		URL:             candidate.URL,
		PublishedAt:     candidate.PublishedAt,
		SourceName:      candidate.SourceName,
		SourceURL:       candidate.SourceURL,
		Category:        category,
		Severity:        severity,
		AffectedVendors: []string{},
		Keywords:        classifier.Keywords(candidate.Title, candidate.Summary),
		ContentHash:     hash,
		IsActive:        true,
	}

	// First match becomes the primary relation; every match is kept by name.
	if matched := vendors.Match(candidate.Text()); len(matched) > 0 {
		article.VendorID = matched[0].ID
		article.VendorName = matched[0].Name
		for _, v := range matched {
			article.AffectedVendors = append(article.AffectedVendors, v.Name)
		}
	}

	id, err := p.repository.Insert(ctx, &article)
	if errors.Is(err, domain.ErrDuplicateArticle) {
		return domain.Article{}, false, nil
	}
	if err != nil {
		return domain.Article{}, false, fmt.Errorf("insert article: %w", err)
	}
	article.ID = id

	p.publish(ctx, article)
	return article, true, nil
}

// RunForAllTenants runs a pass per active tenant on a bounded worker pool.
// Tenant failures are reported per entry; only a tenant directory failure is returned.
func (p *Pipeline) RunForAllTenants(ctx context.Context) ([]domain.TenantResult, error) {
	if p.tenants == nil {
		return nil, errors.New("tenant directory is not configured")
	}

	tenants, err := p.tenants.ListActiveTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}

	results := make([]domain.TenantResult, len(tenants))
	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, tenantID := range tenants {
		i, tenantID := i, tenantID
		g.Go(func() error {
			res, err := p.RunForTenant(ctx, tenantID)
			results[i] = domain.TenantResult{TenantID: tenantID, Result: res, Err: err}
			if err != nil {
				p.warn("tenant pass failed", "tenant", tenantID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (p *Pipeline) publish(ctx context.Context, article domain.Article) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishArticle(ctx, article); err != nil {
		p.warn("publish article failed", "tenant", article.TenantID, "article", article.ID, "error", err)
	}
}

func (p *Pipeline) notifyAlerts(ctx context.Context, result domain.IngestResult) {
	if p.notifier == nil {
		return
	}
	message := buildAlertMessage(result, p.minAlert)
	if message == "" {
		return
	}
	if err := p.notifier.PublishDigest(ctx, message); err != nil {
		p.warn("publish alert digest failed", "tenant", result.TenantID, "error", err)
	}
}

func buildAlertMessage(result domain.IngestResult, minSeverity domain.Severity) string {
	var b strings.Builder
	for _, article := range result.Articles {
		if article.Severity.Rank() < minSeverity.Rank() {
			continue
		}
		if b.Len() == 0 {
			fmt.Fprintf(&b, "*Security alerts for tenant %s*\n\n", result.TenantID)
		}
		fmt.Fprintf(&b, "- [%s] %s\n", strings.ToUpper(string(article.Severity)), article.Title)
		if len(article.AffectedVendors) > 0 {
			fmt.Fprintf(&b, "Vendors: %s\n", strings.Join(article.AffectedVendors, ", "))
		}
		fmt.Fprintf(&b, "%s\n\n", article.URL)
	}
	return b.String()
}

// Summarize folds tenant results into pass totals.
func Summarize(results []domain.TenantResult) PassSummary {
	summary := PassSummary{Tenants: len(results)}
	for _, r := range results {
		summary.Saved += r.Result.Saved
		summary.Skipped += r.Result.Skipped
		summary.TotalFound += r.Result.TotalFound
		summary.SourceErrors += len(r.Result.SourceErrors)
		if r.Err != nil {
			summary.FailedTenants++
		}
	}
	return summary
}

// PassSummary totals one ingestion pass.
type PassSummary struct {
	Tenants       int       `json:"tenants"`
	FailedTenants int       `json:"failedTenants"`
	Saved         int       `json:"saved"`
	Skipped       int       `json:"skipped"`
	TotalFound    int       `json:"totalFound"`
	SourceErrors  int       `json:"sourceErrors"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	Err           string    `json:"error,omitempty"`
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
