package scanner

import (
	"context"
	"testing"

	"NewsScanner/internal/domain"
)

type namedAdapter struct {
	kind  domain.SourceKind
	title string
}

func (n namedAdapter) Kind() domain.SourceKind { return n.kind }

func (n namedAdapter) FetchArticles(context.Context, domain.Source) ([]domain.Candidate, error) {
	return []domain.Candidate{{Title: n.title}}, nil
}

func TestRegistryDispatchesByKind(t *testing.T) {
	t.Parallel()

	reg := NewRegistry(
		namedAdapter{kind: domain.SourceFeed, title: "feed"},
		namedAdapter{kind: domain.SourcePage, title: "page"},
	)

	got, err := reg.FetchArticles(context.Background(), domain.Source{Kind: domain.SourcePage})
	if err != nil {
		t.Fatalf("FetchArticles error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "page" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	t.Parallel()

	var reg Registry
	reg.Register(namedAdapter{kind: domain.SourceFeed, title: "old"})
	reg.Register(namedAdapter{kind: domain.SourceFeed, title: "new"})

	adapter, err := reg.Resolve(domain.SourceFeed)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if adapter.(namedAdapter).title != "new" {
		t.Fatalf("expected replacement adapter")
	}
}

func TestRegistryUnknownKind(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry().FetchArticles(context.Background(), domain.Source{Kind: "gopher"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
