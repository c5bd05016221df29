package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsScanner/internal/config"
	"NewsScanner/internal/domain"
)

const feedTemplate = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>t</title>
<item>
  <title>Acme confirms data breach</title>
  <link>https://news.example.org/acme-breach</link>
  <description>Customer records leak after ransomware attack.</description>
  <pubDate>%s</pubDate>
</item>
<item>
  <title>Conference schedule announced</title>
  <link>https://news.example.org/conference</link>
  <pubDate>%s</pubDate>
</item>
</channel></rss>`

func testConfig(t *testing.T, feedURL, brokenURL string) config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Database = config.DatabaseConfig{Driver: "sqlite3", DSN: ":memory:"}
	cfg.Fetcher.MaxAttempts = 1
	cfg.Directory = config.DirectoryConfig{
		Mode:    config.DirectoryStatic,
		Tenants: []string{"t-1", "t-2"},
		Vendors: map[string][]config.VendorConfig{
			"t-1": {{ID: "v-acme", Name: "Acme"}},
		},
	}
	cfg.Feeds = []config.FeedConfig{
		{Name: "good", URL: feedURL},
		{Name: "broken", URL: brokenURL},
	}
	cfg.Pages = nil
	return cfg
}

func TestRunOnceIngestsAllTenants(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	feed := fmt.Sprintf(feedTemplate,
		now.Add(-time.Hour).Format(time.RFC1123Z),
		now.AddDate(0, 0, -120).Format(time.RFC1123Z),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feed))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	ctx := context.Background()
	application, err := New(ctx, testConfig(t, server.URL+"/feed", server.URL+"/broken"), nil)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer application.Close()

	summary, err := application.RunOnce(ctx, "")
	if err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}
	if summary.Tenants != 2 || summary.Saved != 4 || summary.SourceErrors != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	again, err := application.RunOnce(ctx, "t-1")
	if err != nil {
		t.Fatalf("second RunOnce error: %v", err)
	}
	if again.Saved != 0 || again.Skipped != 2 {
		t.Fatalf("second pass should only skip: %+v", again)
	}

	articles, err := application.repo.List(ctx, domain.ArticleFilter{TenantID: "t-1", Category: domain.CategoryBreach})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected one breach article, got %d", len(articles))
	}
	if articles[0].VendorID != "v-acme" || articles[0].Severity != domain.SeverityCritical {
		t.Fatalf("unexpected article: %+v", articles[0])
	}

	n, err := application.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected the 120-day-old article of each tenant swept, got %d", n)
	}
	remaining, err := application.repo.List(ctx, domain.ArticleFilter{TenantID: "t-1"})
	if err != nil || len(remaining) != 1 {
		t.Fatalf("expected one article left, got %d (%v)", len(remaining), err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Scheduler.Ingestion = "whenever"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected config validation error")
	}
}
