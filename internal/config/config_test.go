package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Scheduler.Ingestion != "@every 6h" {
		t.Fatalf("unexpected ingestion schedule: %s", cfg.Scheduler.Ingestion)
	}
	if cfg.Retention.Window() != 90*24*time.Hour {
		t.Fatalf("unexpected retention window: %v", cfg.Retention.Window())
	}
	if cfg.Fetcher.MaxAttempts != 3 || cfg.Fetcher.Timeout != 10*time.Second {
		t.Fatalf("unexpected fetcher defaults: %+v", cfg.Fetcher)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
database:
  driver: sqlite3
  dsn: file:news.db
scheduler:
  ingestion: "0 */2 * * *"
retention:
  days: 30
fetcher:
  timeout: 5s
feeds:
  - name: only-feed
    url: https://example.org/feed.xml
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(redisAddrEnv, "localhost:6379")

	cfg := Load()

	if cfg.Database.Driver != "sqlite3" || cfg.Database.DSN != "file:news.db" {
		t.Fatalf("database not merged: %+v", cfg.Database)
	}
	if cfg.Scheduler.Ingestion != "0 */2 * * *" || cfg.Scheduler.Retention != "@daily" {
		t.Fatalf("scheduler not merged: %+v", cfg.Scheduler)
	}
	if cfg.Retention.Days != 30 {
		t.Fatalf("expected 30 retention days, got %d", cfg.Retention.Days)
	}
	if cfg.Fetcher.Timeout != 5*time.Second || cfg.Fetcher.MaxAttempts != 3 {
		t.Fatalf("fetcher not merged: %+v", cfg.Fetcher)
	}
	if len(cfg.Feeds) != 1 || len(cfg.Pages) != 0 {
		t.Fatalf("expected sources replaced, got %d feeds %d pages", len(cfg.Feeds), len(cfg.Pages))
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("env override missing: %+v", cfg.Redis)
	}
}

func TestValidateReportsProblems(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Scheduler.Ingestion = "every sometimes"
	cfg.Database.Driver = "mongo"
	cfg.Pages = []PageConfig{{Name: "broken", URL: "https://example.org"}}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"scheduler.ingestion", "database.driver", "pages[0] broken"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}
