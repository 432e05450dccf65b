// Package lenses matches a chosen package to compatible lens inventory and
// tracks the per-eye lens order.
package lenses

import "github.com/clearpath-health/cataract-planner/internal/catalog"

// MatchedModel is an inventory model tagged with the lens-category code it
// was found under.
type MatchedModel struct {
	catalog.LensModel
	CategoryCode string `json:"category_code"`
}

// Match returns the inventory models compatible with the selected package,
// in AllowedLensCodes order. An empty result is not an error: it means the
// clinic has no inventory configured for those codes and the caller renders
// a distinct empty state.
func Match(pkg catalog.Package, inventory map[string]catalog.LensEntry) []MatchedModel {
	var out []MatchedModel
	for _, code := range pkg.AllowedLensCodes {
		entry, ok := inventory[code]
		if !ok {
			continue
		}
		for _, m := range entry.Models {
			out = append(out, MatchedModel{LensModel: m, CategoryCode: code})
		}
	}
	return out
}
