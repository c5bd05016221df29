package domain

import "time"

// SourceKind selects the adapter used for a source.
type SourceKind string

const (
	SourceFeed SourceKind = "feed"
	SourcePage SourceKind = "page"
)

// Selectors configures how a page source is scraped.
type Selectors struct {
	Container  string
	Title      string
	Summary    string
	Date       string
	Link       string
	DateLayout string
}

// Source is a configured upstream. Selectors is only meaningful for SourcePage.
type Source struct {
	Kind      SourceKind
	Name      string
	URL       string
	Selectors Selectors
}

// SourceResult is the outcome of fetching one source. Err isolates a failed source.
type SourceResult struct {
	Source     Source
	Candidates []Candidate
	Err        error
}

// IngestResult aggregates one tenant pass.
type IngestResult struct {
	TenantID     string
	Saved        int
	Skipped      int
	TotalFound   int
	Failed       int
	SourceErrors map[string]string
	// Articles holds the articles inserted during the pass.
	Articles  []Article
	StartedAt time.Time
	Duration  time.Duration
}

// TenantResult is one entry of a full pass over all tenants.
type TenantResult struct {
	TenantID string
	Result   IngestResult
	Err      error
}
