package catalog

import "strings"

// Category classifies a package by the lens technology it covers.
type Category string

const (
	CategoryMonofocal  Category = "monofocal"
	CategoryToric      Category = "toric"
	CategoryEDOF       Category = "edof"
	CategoryMultifocal Category = "multifocal"
	CategoryLAL        Category = "lal"
)

// Categories returns every category in display order, monofocal first.
func Categories() []Category {
	return []Category{CategoryMonofocal, CategoryToric, CategoryEDOF, CategoryMultifocal, CategoryLAL}
}

// packageCategories is the clinic-convention membership table. Category is
// derived from the package id, never stored on the package itself.
var packageCategories = map[string]Category{
	"PKG_BASIC":            CategoryMonofocal,
	"PKG_MONOFOCAL_LASER":  CategoryMonofocal,
	"PKG_TORIC":            CategoryToric,
	"PKG_TORIC_LASER":      CategoryToric,
	"PKG_EDOF":             CategoryEDOF,
	"PKG_EDOF_TORIC":       CategoryEDOF,
	"PKG_MULTIFOCAL":       CategoryMultifocal,
	"PKG_MULTIFOCAL_TORIC": CategoryMultifocal,
	"PKG_LAL":              CategoryLAL,
}

// CategoryOf derives the category for a package id. Unknown ids fall back to
// substring matching on the id so clinics can add packages without touching
// the membership table; anything unrecognized is treated as monofocal, the
// insurance-covered default.
func CategoryOf(packageID string) Category {
	if cat, ok := packageCategories[packageID]; ok {
		return cat
	}
	id := strings.ToLower(packageID)
	switch {
	case strings.Contains(id, "lal") || strings.Contains(id, "light_adjustable"):
		return CategoryLAL
	case strings.Contains(id, "multifocal") || strings.Contains(id, "trifocal"):
		return CategoryMultifocal
	case strings.Contains(id, "edof"):
		return CategoryEDOF
	case strings.Contains(id, "toric"):
		return CategoryToric
	default:
		return CategoryMonofocal
	}
}
