package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// Directory reads tenants and vendors owned by the surrounding CRUD subsystem.
type Directory struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var (
	_ ports.TenantDirectory = (*Directory)(nil)
	_ ports.VendorDirectory = (*Directory)(nil)
)

// NewDirectory wires a sql.DB opened with the given dialect.
func NewDirectory(db *sql.DB, dialect Dialect) *Directory {
	return &Directory{db: db, sb: sq.StatementBuilder.PlaceholderFormat(dialect.placeholder())}
}

// ListActiveTenants returns active tenant ids ordered by id.
func (d *Directory) ListActiveTenants(ctx context.Context) ([]string, error) {
	query, args, err := d.sb.Select("id").
		From("tenants").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tenants query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

// ListActiveVendors returns the active vendors of tenantID ordered by name.
func (d *Directory) ListActiveVendors(ctx context.Context, tenantID string) ([]domain.Vendor, error) {
	query, args, err := d.sb.Select("id", "name").
		From("vendors").
		Where(sq.Eq{"tenant_id": tenantID, "is_active": true}).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build vendors query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

// StaticDirectory serves tenants and vendors from configuration.
type StaticDirectory struct {
	tenants []string
	vendors map[string][]domain.Vendor
}

var (
	_ ports.TenantDirectory = (*StaticDirectory)(nil)
	_ ports.VendorDirectory = (*StaticDirectory)(nil)
)

// NewStaticDirectory copies the given tenants and vendor map.
func NewStaticDirectory(tenants []string, vendors map[string][]domain.Vendor) *StaticDirectory {
	copied := make(map[string][]domain.Vendor, len(vendors))
	for tenant, list := range vendors {
		copied[tenant] = append([]domain.Vendor(nil), list...)
	}
	return &StaticDirectory{
		tenants: append([]string(nil), tenants...),
		vendors: copied,
	}
}

// ListActiveTenants returns the configured tenants.
func (s *StaticDirectory) ListActiveTenants(context.Context) ([]string, error) {
	return append([]string(nil), s.tenants...), nil
}

// ListActiveVendors returns the configured vendors of tenantID.
func (s *StaticDirectory) ListActiveVendors(_ context.Context, tenantID string) ([]domain.Vendor, error) {
	return append([]domain.Vendor(nil), s.vendors[tenantID]...), nil
}
