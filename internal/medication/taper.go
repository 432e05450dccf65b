package medication

import (
	"errors"
	"fmt"
)

// TaperType records how the 4-week steroid taper was produced.
type TaperType string

const (
	TaperStandard TaperType = "standard"
	TaperShort    TaperType = "short"
	TaperCustom   TaperType = "custom"
)

// TaperSchedule is drops-per-day for each of the four post-op weeks.
// Every entry is clamped to [0,4].
type TaperSchedule [4]int

var (
	presetStandard = TaperSchedule{4, 3, 2, 1}
	presetShort    = TaperSchedule{2, 1, 0, 0}

	// ErrUnknownPreset rejects preset names other than standard/short.
	ErrUnknownPreset = errors.New("medication: unknown taper preset")
)

// Taper pairs a schedule with its classification.
type Taper struct {
	Type     TaperType     `json:"taper_type"`
	Schedule TaperSchedule `json:"taper_schedule"`
}

// ApplyPreset overwrites the schedule with a fixed preset and records the
// preset name as the taper type.
func (t *Taper) ApplyPreset(name TaperType) error {
	switch name {
	case TaperStandard:
		t.Schedule = presetStandard
	case TaperShort:
		t.Schedule = presetShort
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	t.Type = name
	return nil
}

// SetWeek mutates one week's frequency, clamping the value to [0,4]. Any
// manual edit marks the taper custom, even when the result happens to equal
// a preset again.
func (t *Taper) SetWeek(week, value int) error {
	if week < 0 || week >= len(t.Schedule) {
		return fmt.Errorf("medication: taper week %d out of range", week)
	}
	if value < 0 {
		value = 0
	}
	if value > 4 {
		value = 4
	}
	t.Schedule[week] = value
	t.Type = TaperCustom
	return nil
}

// Normalize classifies a schedule loaded from storage: custom whenever it
// deviates from both presets.
func (t *Taper) Normalize() {
	switch t.Schedule {
	case presetStandard:
		t.Type = TaperStandard
	case presetShort:
		t.Type = TaperShort
	default:
		t.Type = TaperCustom
	}
}

// FromDefaults builds a taper from a catalog option's default schedule,
// falling back to the standard preset when the option has none.
func FromDefaults(defaultTaper []int) Taper {
	t := Taper{}
	if len(defaultTaper) != len(t.Schedule) {
		t.Schedule = presetStandard
		t.Type = TaperStandard
		return t
	}
	for i, v := range defaultTaper {
		if v < 0 {
			v = 0
		}
		if v > 4 {
			v = 4
		}
		t.Schedule[i] = v
	}
	t.Normalize()
	return t
}
