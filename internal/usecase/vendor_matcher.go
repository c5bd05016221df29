package usecase

import (
	"context"
	"fmt"
	"strings"

	"NewsScanner/internal/domain"
	"NewsScanner/internal/ports"
)

// VendorMatcher finds tenant vendors mentioned in article text.
type VendorMatcher struct {
	directory ports.VendorDirectory
}

// NewVendorMatcher wires the vendor directory.
func NewVendorMatcher(directory ports.VendorDirectory) *VendorMatcher {
	return &VendorMatcher{directory: directory}
}

// VendorSet is the lowered vendor list of one tenant, loaded once per pass.
type VendorSet struct {
	vendors []domain.Vendor
	lowered []string
}

// Load fetches the active vendors of tenantID.
func (m *VendorMatcher) Load(ctx context.Context, tenantID string) (VendorSet, error) {
	if m == nil || m.directory == nil {
		return VendorSet{}, nil
	}

	vendors, err := m.directory.ListActiveVendors(ctx, tenantID)
	if err != nil {
		return VendorSet{}, fmt.Errorf("list vendors for tenant %s: %w", tenantID, err)
	}
	return NewVendorSet(vendors), nil
}

// Match loads the tenant vendors and scans text in one call.
func (m *VendorMatcher) Match(ctx context.Context, tenantID, text string) ([]domain.Vendor, error) {
	set, err := m.Load(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return set.Match(text), nil
}

// NewVendorSet drops vendors with blank names, which would match any text.
func NewVendorSet(vendors []domain.Vendor) VendorSet {
	set := VendorSet{}
	for _, v := range vendors {
		name := strings.ToLower(strings.TrimSpace(v.Name))
		if name == "" {
			continue
		}
		set.vendors = append(set.vendors, v)
		set.lowered = append(set.lowered, name)
	}
	return set
}

// Match returns every vendor whose name occurs in text, in directory order. Never nil.
func (s VendorSet) Match(text string) []domain.Vendor {
	matched := []domain.Vendor{}
	lowered := strings.ToLower(text)
	for i, name := range s.lowered {
		if strings.Contains(lowered, name) {
			matched = append(matched, s.vendors[i])
		}
	}
	return matched
}

// Len is the number of matchable vendors.
func (s VendorSet) Len() int {
	return len(s.vendors)
}
