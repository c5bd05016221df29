package scanner

import (
	"context"
	"fmt"

	"NewsScanner/internal/domain"
)

// Adapter extracts candidates for one kind of source (feed, page).
type Adapter interface {
	Kind() domain.SourceKind
	FetchArticles(ctx context.Context, source domain.Source) ([]domain.Candidate, error)
}

// Registry keeps a mapping from source kinds to their adapters.
type Registry struct {
	adapters map[domain.SourceKind]Adapter
}

// NewRegistry builds a registry holding the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: map[domain.SourceKind]Adapter{}}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[domain.SourceKind]Adapter{}
	}
	r.adapters[adapter.Kind()] = adapter
}

// Resolve returns the adapter for kind or an error if it is absent.
func (r *Registry) Resolve(kind domain.SourceKind) (Adapter, error) {
	if adapter, ok := r.adapters[kind]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("no adapter registered for source kind %q", kind)
}

// FetchArticles dispatches source to the adapter registered for its kind.
func (r *Registry) FetchArticles(ctx context.Context, source domain.Source) ([]domain.Candidate, error) {
	adapter, err := r.Resolve(source.Kind)
	if err != nil {
		return nil, err
	}
	return adapter.FetchArticles(ctx, source)
}
