package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		packageID string
		want      Category
	}{
		{"PKG_BASIC", CategoryMonofocal},
		{"PKG_MONOFOCAL_LASER", CategoryMonofocal},
		{"PKG_TORIC", CategoryToric},
		{"PKG_TORIC_LASER", CategoryToric},
		{"PKG_EDOF", CategoryEDOF},
		{"PKG_MULTIFOCAL", CategoryMultifocal},
		{"PKG_LAL", CategoryLAL},
		// Unknown ids fall back to substring convention.
		{"PKG_PREMIUM_TORIC_V2", CategoryToric},
		{"PKG_TRIFOCAL_PLUS", CategoryMultifocal},
		{"PKG_LIGHT_ADJUSTABLE_2026", CategoryLAL},
		{"PKG_EDOF_PLUS", CategoryEDOF},
		{"PKG_SOMETHING_ELSE", CategoryMonofocal},
	}
	for _, tt := range tests {
		t.Run(tt.packageID, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.packageID))
		})
	}
}

func TestCategoriesOrderedMonofocalFirst(t *testing.T) {
	cats := Categories()
	assert.Equal(t, CategoryMonofocal, cats[0])
	assert.Len(t, cats, 5)
}

func TestDefaultCatalogConsistency(t *testing.T) {
	cat := DefaultCatalog("clinic-1")

	assert.Equal(t, "clinic-1", cat.ClinicID)
	assert.NotEmpty(t, cat.Packages)

	// Every allowed lens code on every package has an inventory entry.
	for _, p := range cat.Packages {
		for _, code := range p.AllowedLensCodes {
			entry, ok := cat.LensInventory[code]
			assert.True(t, ok, "package %s references missing inventory code %s", p.ID, code)
			assert.NotEmpty(t, entry.Models, "inventory %s has no models", code)
		}
	}

	assert.Equal(t, 3, cat.Medications.DefaultStartDaysBeforeSurgery)
	assert.NotEmpty(t, cat.Medications.Antibiotics)
	assert.NotEmpty(t, cat.Medications.Combinations)
}

func TestPackageByID(t *testing.T) {
	cat := DefaultCatalog("clinic-1")

	p, ok := cat.PackageByID("PKG_TORIC")
	assert.True(t, ok)
	assert.True(t, p.IncludesLaser)

	_, ok = cat.PackageByID("PKG_MISSING")
	assert.False(t, ok)
}
