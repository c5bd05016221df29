package parser

import (
	"context"
	"log/slog"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
	"NewsScanner/internal/scanner"
)

// StrategySource implements ArticleSource by dispatching configured sources to registered adapters.
type StrategySource struct {
	registry *scanner.Registry
	sources  []domain.Source
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource orders sources feeds first, then pages, keeping config order within each kind.
func NewStrategySource(reg *scanner.Registry, sources []domain.Source, log *slog.Logger) *StrategySource {
	ordered := make([]domain.Source, 0, len(sources))
	for _, kind := range []domain.SourceKind{domain.SourceFeed, domain.SourcePage} {
		for _, src := range sources {
			if src.Kind == kind {
				ordered = append(ordered, src)
			}
		}
	}
	return &StrategySource{
		registry: reg,
		sources:  ordered,
		logger:   log,
	}
}

// NewStrategySourceFromConfig converts feed and page configuration into sources.
func NewStrategySourceFromConfig(reg *scanner.Registry, cfg config.Config, log *slog.Logger) *StrategySource {
	return NewStrategySource(reg, toSources(cfg), log)
}

// Sources returns the configured sources in fetch order.
func (s *StrategySource) Sources() []domain.Source {
	return append([]domain.Source(nil), s.sources...)
}

// FetchAll runs every source in order. A failing source is reported in its result and never stops the rest.
func (s *StrategySource) FetchAll(ctx context.Context) []domain.SourceResult {
	results := make([]domain.SourceResult, 0, len(s.sources))
	for _, src := range s.sources {
		s.debug("process source", "source", src.Name, "kind", src.Kind, "url", src.URL)

		candidates, err := s.registry.FetchArticles(ctx, src)
		if err != nil {
			s.warn("source failed", "source", src.Name, "kind", src.Kind, "error", err)
			results = append(results, domain.SourceResult{Source: src, Err: err})
			continue
		}

		s.debug("source produced candidates", "source", src.Name, "count", len(candidates))
		results = append(results, domain.SourceResult{Source: src, Candidates: candidates})
	}
	return results
}

func toSources(cfg config.Config) []domain.Source {
	sources := make([]domain.Source, 0, len(cfg.Feeds)+len(cfg.Pages))
	for _, feed := range cfg.Feeds {
		sources = append(sources, domain.Source{
			Kind: domain.SourceFeed,
			Name: feed.Name,
			URL:  feed.URL,
		})
	}
	for _, page := range cfg.Pages {
		sources = append(sources, domain.Source{
			Kind: domain.SourcePage,
			Name: page.Name,
			URL:  page.URL,
			Selectors: domain.Selectors{
				Container:  page.Selectors.Container,
				Title:      page.Selectors.Title,
				Summary:    page.Selectors.Summary,
				Date:       page.Selectors.Date,
				Link:       page.Selectors.Link,
				DateLayout: page.Selectors.DateLayout,
			},
		})
	}
	return sources
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
