package catalog

// DefaultCatalog returns the seed catalog a new clinic starts from. Staff
// adjust pricing and inventory through the catalog endpoint afterwards.
func DefaultCatalog(clinicID string) *Catalog {
	return &Catalog{
		ClinicID: clinicID,
		Timezone: "America/New_York",
		Packages: []Package{
			{
				ID:               "PKG_BASIC",
				DisplayName:      "Standard Monofocal (Insurance)",
				PriceCashCents:   0,
				IncludesLaser:    false,
				AllowedLensCodes: []string{"monofocal"},
			},
			{
				ID:               "PKG_MONOFOCAL_LASER",
				DisplayName:      "Monofocal with Laser Assist",
				PriceCashCents:   189500,
				IncludesLaser:    true,
				AllowedLensCodes: []string{"monofocal"},
			},
			{
				ID:               "PKG_TORIC",
				DisplayName:      "Toric Astigmatism Package",
				PriceCashCents:   249500,
				IncludesLaser:    true,
				AllowedLensCodes: []string{"toric"},
			},
			{
				ID:               "PKG_EDOF",
				DisplayName:      "Extended Depth of Focus Package",
				PriceCashCents:   319500,
				IncludesLaser:    true,
				AllowedLensCodes: []string{"edof", "toric"},
			},
			{
				ID:               "PKG_MULTIFOCAL",
				DisplayName:      "Multifocal Full Range Package",
				PriceCashCents:   349500,
				IncludesLaser:    true,
				AllowedLensCodes: []string{"multifocal"},
			},
			{
				ID:               "PKG_LAL",
				DisplayName:      "Light Adjustable Lens Package",
				PriceCashCents:   429500,
				IncludesLaser:    true,
				AllowedLensCodes: []string{"lal"},
			},
		},
		LensInventory: map[string]LensEntry{
			"monofocal": {
				Code:        "monofocal",
				DisplayName: "Monofocal IOLs",
				Models: []LensModel{
					{Name: "Clareon Monofocal", Manufacturer: "Alcon", PowerRange: "+6.0 to +30.0 D"},
					{Name: "Tecnis Eyhance", Manufacturer: "Johnson & Johnson", PowerRange: "+5.0 to +34.0 D"},
				},
			},
			"toric": {
				Code:        "toric",
				DisplayName: "Toric IOLs",
				Models: []LensModel{
					{Name: "Clareon Toric", Manufacturer: "Alcon", PowerRange: "+6.0 to +30.0 D"},
					{Name: "Tecnis Toric II", Manufacturer: "Johnson & Johnson", PowerRange: "+5.0 to +34.0 D"},
				},
			},
			"edof": {
				Code:        "edof",
				DisplayName: "Extended Depth of Focus IOLs",
				Models: []LensModel{
					{Name: "Clareon Vivity", Manufacturer: "Alcon", PowerRange: "+10.0 to +30.0 D"},
					{Name: "Tecnis Symfony OptiBlue", Manufacturer: "Johnson & Johnson", PowerRange: "+5.0 to +34.0 D"},
				},
			},
			"multifocal": {
				Code:        "multifocal",
				DisplayName: "Multifocal / Trifocal IOLs",
				Models: []LensModel{
					{Name: "Clareon PanOptix", Manufacturer: "Alcon", PowerRange: "+6.0 to +30.0 D"},
				},
			},
			"lal": {
				Code:        "lal",
				DisplayName: "Light Adjustable Lenses",
				Models: []LensModel{
					{Name: "RxSight LAL+", Manufacturer: "RxSight", PowerRange: "+10.0 to +30.0 D"},
				},
			},
		},
		Medications: MedicationOptions{
			Antibiotics: []MedicationOption{
				{ID: "abx_moxifloxacin", Name: "Moxifloxacin 0.5%", DefaultFrequencyPerDay: 4, FrequencyLabel: "4 times a day", DefaultWeeks: 1},
				{ID: "abx_ofloxacin", Name: "Ofloxacin 0.3%", DefaultFrequencyPerDay: 4, FrequencyLabel: "4 times a day", DefaultWeeks: 1},
				{ID: "abx_polytrim", Name: "Polymyxin B / Trimethoprim", DefaultFrequencyPerDay: 3, FrequencyLabel: "3 times a day", DefaultWeeks: 1},
			},
			NSAIDs: []MedicationOption{
				{ID: "nsaid_ketorolac", Name: "Ketorolac 0.5%", DefaultFrequencyPerDay: 4, FrequencyLabel: "4 times a day", DefaultWeeks: 4},
				{ID: "nsaid_bromfenac", Name: "Bromfenac 0.07%", DefaultFrequencyPerDay: 1, FrequencyLabel: "once a day", DefaultWeeks: 4},
				{ID: "nsaid_nepafenac", Name: "Nepafenac 0.3%", DefaultFrequencyPerDay: 1, FrequencyLabel: "once a day", DefaultWeeks: 4},
			},
			Steroids: []MedicationOption{
				{ID: "ster_prednisolone", Name: "Prednisolone Acetate 1%", DefaultFrequencyPerDay: 4, FrequencyLabel: "4 times a day", DefaultWeeks: 4, DefaultTaper: []int{4, 3, 2, 1}},
				{ID: "ster_dexamethasone", Name: "Dexamethasone 0.1%", DefaultFrequencyPerDay: 4, FrequencyLabel: "4 times a day", DefaultWeeks: 2, DefaultTaper: []int{2, 1, 0, 0}},
			},
			Combinations: []MedicationOption{
				{
					ID:                     "combo_prednimoxigat",
					Name:                   "Pred-Moxi-Ketor 3-in-1",
					Components:             []string{"Prednisolone Acetate 1%", "Moxifloxacin 0.5%", "Ketorolac 0.5%"},
					DefaultFrequencyPerDay: 4,
					FrequencyLabel:         "4 times a day",
					DefaultWeeks:           4,
					DefaultTaper:           []int{4, 3, 2, 1},
				},
			},
			GlaucomaDrops: []MedicationOption{
				{ID: "gl_latanoprost", Name: "Latanoprost 0.005%", DefaultFrequencyPerDay: 1, FrequencyLabel: "once at bedtime"},
				{ID: "gl_timolol", Name: "Timolol 0.5%", DefaultFrequencyPerDay: 2, FrequencyLabel: "twice a day"},
			},
			FrequencyPresets:              []string{"once a day", "twice a day", "3 times a day", "4 times a day"},
			DefaultStartDaysBeforeSurgery: 3,
		},
	}
}
