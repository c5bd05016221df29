package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/scanner"
)

// FeedAdapter parses RSS, Atom and JSON feeds into candidates.
type FeedAdapter struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

var _ scanner.Adapter = (*FeedAdapter)(nil)

// NewFeedAdapter wires the shared fetcher.
func NewFeedAdapter(fetcher ports.Fetcher, logger *slog.Logger) *FeedAdapter {
	return &FeedAdapter{fetcher: fetcher, logger: logger, now: time.Now}
}

// Kind identifies the adapter inside the registry.
func (a *FeedAdapter) Kind() domain.SourceKind {
	return domain.SourceFeed
}

// FetchArticles downloads the feed document and converts its items.
func (a *FeedAdapter) FetchArticles(ctx context.Context, source domain.Source) ([]domain.Candidate, error) {
	raw, err := a.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", source.Name, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", source.Name, err)
	}

	return a.extractCandidates(feed, source), nil
}

func (a *FeedAdapter) extractCandidates(feed *gofeed.Feed, source domain.Source) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		candidate := domain.Candidate{
			Title:       strings.TrimSpace(item.Title),
			Summary:     itemSummary(item),
			URL:         strings.TrimSpace(item.Link),
			PublishedAt: a.itemDate(item),
			SourceName:  source.Name,
			SourceURL:   source.URL,
		}
		if err := candidate.Validate(); err != nil {
			a.debug("skip feed item", "source", source.Name, "title", candidate.Title, "link", candidate.URL)
			continue
		}
		candidates = append(candidates, candidate)
	}

	a.debug("feed parsed", "source", source.Name, "items", len(feed.Items), "candidates", len(candidates))
	return candidates
}

func (a *FeedAdapter) itemDate(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}
	return a.now().UTC()
}

func itemSummary(item *gofeed.Item) string {
	summary := item.Description
	if strings.TrimSpace(summary) == "" {
		summary = item.Content
	}
	return stripMarkup(summary)
}

func (a *FeedAdapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
