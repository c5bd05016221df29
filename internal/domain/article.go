package domain

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrIngestionRunning is returned when a pass is requested while another one is active.
	ErrIngestionRunning = errors.New("ingestion already in progress")
	// ErrInvalidSchedule marks a schedule expression that cannot be parsed.
	ErrInvalidSchedule = errors.New("invalid schedule")
	// ErrDuplicateArticle is reported by repositories when tenant+hash is already stored.
	ErrDuplicateArticle = errors.New("duplicate article")
	// ErrInvalidCandidate marks a candidate without a title or a usable link.
	ErrInvalidCandidate = errors.New("invalid candidate")
)

// Category groups articles by topic.
type Category string

const (
	CategorySecurity    Category = "security"
	CategoryGeneral     Category = "general"
	CategoryMaintenance Category = "maintenance"
	CategoryCompliance  Category = "compliance"
	CategoryBreach      Category = "breach"
	CategoryUpdate      Category = "update"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryGeneral, CategoryMaintenance, CategoryCompliance, CategoryBreach, CategoryUpdate:
		return true
	}
	return false
}

// Severity is a five-level urgency ranking.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank orders severities: critical is 4, info is 0, unknown values are -1.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	case SeverityInfo:
		return 0
	}
	return -1
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s.Rank() >= 0
}

// Candidate is an unpersisted article extracted from a source.
type Candidate struct {
	Title       string
	Summary     string
	URL         string
	PublishedAt time.Time
	SourceName  string
	SourceURL   string
}

// Validate checks the required title and absolute http(s) link.
func (c Candidate) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrInvalidCandidate
	}
	if !IsAbsoluteHTTPURL(c.URL) {
		return ErrInvalidCandidate
	}
	return nil
}

// Text is the combined title and summary used by classification and vendor matching.
func (c Candidate) Text() string {
	return c.Title + " " + c.Summary
}

// IsAbsoluteHTTPURL reports whether raw parses as an absolute http or https URL.
func IsAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Article is the persisted, classified form of a candidate owned by one tenant.
type Article struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenantId"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	URL             string    `json:"url"`
	PublishedAt     time.Time `json:"publishedAt"`
	SourceName      string    `json:"sourceName"`
	SourceURL       string    `json:"sourceUrl"`
	Category        Category  `json:"category"`
	Severity        Severity  `json:"severity"`
	VendorID        string    `json:"vendorId,omitempty"`
	VendorName      string    `json:"vendorName,omitempty"`
	AffectedVendors []string  `json:"affectedVendors"`
	Keywords        []string  `json:"keywords"`
	ContentHash     string    `json:"contentHash"`
	IsActive        bool      `json:"isActive"`
	CreatedAt       time.Time `json:"createdAt"`
	LastUpdated     time.Time `json:"lastUpdated"`
}

// ArticleFilter narrows article listings. TenantID is mandatory.
type ArticleFilter struct {
	TenantID   string
	Category   Category
	Severity   Severity
	VendorID   string
	From       time.Time
	To         time.Time
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Vendor is a tenant-scoped entry from the vendor directory.
type Vendor struct {
	ID   string
	Name string
}
