package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/infrastructure/fetcher"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Security Feed</title>
    <item>
      <title>Acme ransomware attack disclosed</title>
      <link>https://news.example.org/acme-ransomware</link>
      <description><![CDATA[<p>Acme confirms a <b>ransomware</b> incident.</p>]]></description>
      <pubDate>Mon, 02 Jun 2025 08:30:00 +0200</pubDate>
    </item>
    <item>
      <title>Undated item</title>
      <link>https://news.example.org/undated</link>
    </item>
    <item>
      <title></title>
      <link>https://news.example.org/no-title</link>
    </item>
    <item>
      <title>Relative link</title>
      <link>/relative</link>
    </item>
  </channel>
</rss>`

func TestFeedAdapterExtractsCandidates(t *testing.T) {
	t.Parallel()

	src := domain.Source{Kind: domain.SourceFeed, Name: "sec", URL: "https://feeds.example.org/rss"}
	adapter := NewFeedAdapter(&stubFetcher{docs: map[string]string{src.URL: rssFixture}}, nil)
	adapter.now = fixedNow

	candidates, err := adapter.FetchArticles(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchArticles error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(candidates), candidates)
	}

	first := candidates[0]
	if first.Title != "Acme ransomware attack disclosed" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Summary != "Acme confirms a ransomware incident." {
		t.Fatalf("unexpected summary %q", first.Summary)
	}
	wantDate := time.Date(2025, time.June, 2, 6, 30, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(wantDate) || first.PublishedAt.Location() != time.UTC {
		t.Fatalf("unexpected date %v", first.PublishedAt)
	}
	if first.SourceName != "sec" || first.SourceURL != src.URL {
		t.Fatalf("unexpected source fields: %+v", first)
	}

	if !candidates[1].PublishedAt.Equal(fixedNow()) {
		t.Fatalf("undated item should fall back to now, got %v", candidates[1].PublishedAt)
	}
}

func TestFeedAdapterAtomOverHTTP(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Vendor advisories</title>
  <entry>
    <title>Patch released for CVE-2025-0001</title>
    <link href="https://vendor.example.org/advisory/1"/>
    <updated>2025-05-30T10:00:00Z</updated>
    <summary>Update available.</summary>
  </entry>
</feed>`))
	}))
	defer server.Close()

	adapter := NewFeedAdapter(fetcher.New(server.Client(), fetcher.Options{}, nil), nil)
	candidates, err := adapter.FetchArticles(context.Background(), domain.Source{
		Kind: domain.SourceFeed,
		Name: "vendor",
		URL:  server.URL,
	})
	if err != nil {
		t.Fatalf("FetchArticles error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].URL != "https://vendor.example.org/advisory/1" || candidates[0].Summary != "Update available." {
		t.Fatalf("unexpected candidate: %+v", candidates[0])
	}
	if !candidates[0].PublishedAt.Equal(time.Date(2025, time.May, 30, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", candidates[0].PublishedAt)
	}
}

func TestFeedAdapterParseError(t *testing.T) {
	t.Parallel()

	src := domain.Source{Kind: domain.SourceFeed, Name: "broken", URL: "https://feeds.example.org/broken"}
	adapter := NewFeedAdapter(&stubFetcher{docs: map[string]string{src.URL: "not a feed"}}, nil)

	if _, err := adapter.FetchArticles(context.Background(), src); err == nil {
		t.Fatalf("expected parse error")
	}
}
