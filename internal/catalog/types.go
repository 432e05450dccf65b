// Package catalog holds the clinic-wide lens package catalog, lens inventory,
// and medication option lists. The catalog is staff-maintained, fetched once
// per session by the planner, and treated as immutable for that session.
package catalog

// Package is a cash-pay or insurance lens package offered by a clinic.
type Package struct {
	ID          string `json:"package_id"`
	DisplayName string `json:"display_name"`
	// PriceCashCents is the patient-pay price. 0 means insurance-covered.
	PriceCashCents int  `json:"price_cash_cents"`
	IncludesLaser  bool `json:"includes_laser"`
	// AllowedLensCodes lists the lens-category codes this package can be
	// fulfilled with, in display order.
	AllowedLensCodes []string `json:"allowed_lens_codes"`
}

// LensModel is a single orderable IOL model.
type LensModel struct {
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer,omitempty"`
	// PowerRange is informational, e.g. "+6.0 to +30.0 D".
	PowerRange string `json:"power_range,omitempty"`
}

// LensEntry groups the inventory models for one lens-category code.
type LensEntry struct {
	Code        string      `json:"code"`
	DisplayName string      `json:"display_name"`
	Models      []LensModel `json:"models"`
}

// MedicationOption is a drop the clinic stocks, with the defaults that are
// auto-filled when staff pick it for a protocol.
type MedicationOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Components lists the ingredients for combination drops.
	Components []string `json:"components,omitempty"`
	// DefaultFrequencyPerDay is instillations per day, e.g. 4.
	DefaultFrequencyPerDay int `json:"default_frequency_per_day,omitempty"`
	// FrequencyLabel is the patient-facing wording, e.g. "4 times a day".
	FrequencyLabel string `json:"frequency_label,omitempty"`
	DefaultWeeks   int    `json:"default_weeks,omitempty"`
	// DefaultTaper seeds the 4-week taper schedule for steroids and
	// combination drops. Empty means no taper applies.
	DefaultTaper []int `json:"default_taper,omitempty"`
}

// MedicationOptions holds the clinic's configurable drop lists.
type MedicationOptions struct {
	Antibiotics   []MedicationOption `json:"antibiotics"`
	NSAIDs        []MedicationOption `json:"nsaids"`
	Steroids      []MedicationOption `json:"steroids"`
	Combinations  []MedicationOption `json:"combinations"`
	GlaucomaDrops []MedicationOption `json:"glaucoma_drops"`
	// FrequencyPresets are the labels staff can pick from when overriding.
	FrequencyPresets []string `json:"frequency_presets,omitempty"`
	// DefaultStartDaysBeforeSurgery is how many days before surgery pre-op
	// antibiotics begin. Clinic convention is 3.
	DefaultStartDaysBeforeSurgery int `json:"default_start_days_before_surgery"`
}

// Catalog is the full clinic catalog document.
type Catalog struct {
	ClinicID      string               `json:"clinic_id"`
	Timezone      string               `json:"timezone,omitempty"`
	Packages      []Package            `json:"packages"`
	LensInventory map[string]LensEntry `json:"lens_inventory"`
	Medications   MedicationOptions    `json:"medications"`
}

// PackageByID returns the package with the given id.
func (c *Catalog) PackageByID(id string) (Package, bool) {
	for _, p := range c.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// FindOption looks up a medication option by id within one option list.
func FindOption(options []MedicationOption, id string) (MedicationOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return MedicationOption{}, false
}
