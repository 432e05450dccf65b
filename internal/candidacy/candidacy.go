// Package candidacy resolves which premium lens categories a patient may be
// offered, from per-eye clinical flags set by staff. An absent flag means
// "not eligible", never "unknown".
package candidacy

import "github.com/clearpath-health/cataract-planner/internal/catalog"

// Profile holds the clinical candidacy flags for one eye.
type Profile struct {
	MultifocalEligible bool `json:"multifocal_eligible"`
	EDOFEligible       bool `json:"edof_eligible"`
	ToricEligible      bool `json:"toric_eligible"`
	LALEligible        bool `json:"lal_eligible"`
}

// Combine ORs two per-eye profiles into one, used when the patient is on a
// unified plan for both eyes: a category is offerable if either eye
// qualifies.
func Combine(od, os Profile) Profile {
	return Profile{
		MultifocalEligible: od.MultifocalEligible || os.MultifocalEligible,
		EDOFEligible:       od.EDOFEligible || os.EDOFEligible,
		ToricEligible:      od.ToricEligible || os.ToricEligible,
		LALEligible:        od.LALEligible || os.LALEligible,
	}
}

// Resolve returns the eligible categories in display order. Monofocal is
// always included: every patient qualifies for the standard insurance lens.
func Resolve(p Profile) []catalog.Category {
	out := []catalog.Category{catalog.CategoryMonofocal}
	if p.ToricEligible {
		out = append(out, catalog.CategoryToric)
	}
	if p.EDOFEligible {
		out = append(out, catalog.CategoryEDOF)
	}
	if p.MultifocalEligible {
		out = append(out, catalog.CategoryMultifocal)
	}
	if p.LALEligible {
		out = append(out, catalog.CategoryLAL)
	}
	return out
}
