package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/scanner"
)

var spaceExpr = regexp.MustCompile(`\s+`)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"02/01/2006",
}

// PageAdapter scrapes article lists out of HTML pages using per-source selectors.
type PageAdapter struct {
	fetcher ports.Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

var _ scanner.Adapter = (*PageAdapter)(nil)

// NewPageAdapter wires the shared fetcher.
func NewPageAdapter(fetcher ports.Fetcher, logger *slog.Logger) *PageAdapter {
	return &PageAdapter{fetcher: fetcher, logger: logger, now: time.Now}
}

// Kind identifies the adapter inside the registry.
func (a *PageAdapter) Kind() domain.SourceKind {
	return domain.SourcePage
}

// FetchArticles downloads the page and extracts one candidate per container match.
func (a *PageAdapter) FetchArticles(ctx context.Context, source domain.Source) ([]domain.Candidate, error) {
	sel := source.Selectors
	if sel.Container == "" || sel.Title == "" {
		return nil, fmt.Errorf("page %s: container and title selectors are required", source.Name)
	}

	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, fmt.Errorf("page %s: invalid url: %w", source.Name, err)
	}

	raw, err := a.fetcher.Fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", source.Name, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", source.Name, err)
	}

	return a.extractCandidates(doc, base, source), nil
}

func (a *PageAdapter) extractCandidates(doc *goquery.Document, base *url.URL, source domain.Source) []domain.Candidate {
	sel := source.Selectors
	var candidates []domain.Candidate

	doc.Find(sel.Container).Each(func(_ int, row *goquery.Selection) {
		candidate := domain.Candidate{
			Title:       cleanText(row.Find(sel.Title).First().Text()),
			URL:         resolveLink(base, linkHref(row, sel.Link)),
			PublishedAt: a.rowDate(row, sel),
			SourceName:  source.Name,
			SourceURL:   source.URL,
		}
		if sel.Summary != "" {
			candidate.Summary = cleanText(row.Find(sel.Summary).First().Text())
		}

		if err := candidate.Validate(); err != nil {
			a.debug("skip page row", "source", source.Name, "title", candidate.Title, "link", candidate.URL)
			return
		}
		candidates = append(candidates, candidate)
	})

	a.debug("page parsed", "source", source.Name, "candidates", len(candidates))
	return candidates
}

// linkHref reads href from the link selector, or from the container itself when no selector is set.
func linkHref(row *goquery.Selection, selector string) string {
	target := row
	if selector != "" {
		target = row.Find(selector).First()
	}
	href, _ := target.Attr("href")
	return strings.TrimSpace(href)
}

func resolveLink(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func (a *PageAdapter) rowDate(row *goquery.Selection, sel domain.Selectors) time.Time {
	if sel.Date == "" {
		return a.now().UTC()
	}

	node := row.Find(sel.Date).First()
	value, ok := node.Attr("datetime")
	if !ok || strings.TrimSpace(value) == "" {
		value = node.Text()
	}

	if parsed, ok := parseDate(cleanText(value), sel.DateLayout); ok {
		return parsed
	}
	return a.now().UTC()
}

func parseDate(value, layout string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if layout != "" {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	for _, l := range dateLayouts {
		if parsed, err := time.Parse(l, value); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func cleanText(s string) string {
	return strings.TrimSpace(spaceExpr.ReplaceAllString(s, " "))
}

// stripMarkup turns an HTML fragment into plain text.
func stripMarkup(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return cleanText(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanText(fragment)
	}
	return cleanText(doc.Text())
}

func (a *PageAdapter) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
