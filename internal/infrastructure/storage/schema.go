package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// Open connects to the store and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	dialect := Dialect(driver)
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps in-memory sqlite databases shared and serializes writes.
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		published_at TIMESTAMPTZ NOT NULL,
		source_name TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general',
		severity TEXT NOT NULL DEFAULT 'info',
		vendor_id TEXT,
		vendor_name TEXT NOT NULL DEFAULT '',
		affected_vendors TEXT NOT NULL DEFAULT '[]',
		keywords TEXT NOT NULL DEFAULT '[]',
		content_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		last_updated TIMESTAMPTZ NOT NULL,
		UNIQUE (tenant_id, content_hash)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_published ON articles (tenant_id, published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_category ON articles (tenant_id, category)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_severity ON articles (tenant_id, severity)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_vendor ON articles (tenant_id, vendor_id)`,
	`CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vendors_tenant ON vendors (tenant_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL,
		published_at TIMESTAMP NOT NULL,
		source_name TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'general',
		severity TEXT NOT NULL DEFAULT 'info',
		vendor_id TEXT,
		vendor_name TEXT NOT NULL DEFAULT '',
		affected_vendors TEXT NOT NULL DEFAULT '[]',
		keywords TEXT NOT NULL DEFAULT '[]',
		content_hash TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		last_updated TIMESTAMP NOT NULL,
		UNIQUE (tenant_id, content_hash)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_published ON articles (tenant_id, published_at)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_category ON articles (tenant_id, category)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_severity ON articles (tenant_id, severity)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_tenant_vendor ON articles (tenant_id, vendor_id)`,
	`CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vendors_tenant ON vendors (tenant_id)`,
}

// Migrate creates tables and indexes if they don't exist.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	statements := sqliteSchema
	if dialect == Postgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
