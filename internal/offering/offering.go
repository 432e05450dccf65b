// Package offering manages which catalog packages staff present to a
// patient and the patient's final choice. Offering and selection each come
// in two shapes: a single unified record when the same plan covers both
// eyes, or independent OD/OS records. Both shapes are kept in storage;
// switching modes never silently discards the other shape's data. Callers
// reconcile explicitly via MergeToUnified / SplitToPerEye.
package offering

import (
	"errors"
	"time"

	"github.com/clearpath-health/cataract-planner/internal/catalog"
)

// Eye identifies a side in per-eye mode. OD is the right eye, OS the left.
type Eye string

const (
	EyeOD Eye = "od"
	EyeOS Eye = "os"
)

var (
	// ErrNotOffered rejects a selection whose package is not in the
	// corresponding offered set.
	ErrNotOffered = errors.New("offering: package not in offered set")
	// ErrUnknownEye rejects an eye value other than od/os in per-eye mode.
	ErrUnknownEye = errors.New("offering: eye must be od or os")
	// ErrUnknownPackage rejects ids absent from the clinic catalog.
	ErrUnknownPackage = errors.New("offering: package not in catalog")
)

// IDSet is an ordered set of package ids. Order is insertion order, which is
// the order staff toggled packages on.
type IDSet []string

// Contains reports set membership.
func (s IDSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle adds the id if absent or removes it if present, returning the
// updated set.
func (s IDSet) Toggle(id string) IDSet {
	for i, v := range s {
		if v == id {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return append(s, id)
}

// Union returns the ids of a followed by the ids of b not already present.
func Union(a, b IDSet) IDSet {
	out := append(IDSet(nil), a...)
	for _, id := range b {
		if !out.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// SelectionStatus tracks where a patient's choice stands.
type SelectionStatus string

const (
	StatusPending   SelectionStatus = "pending"
	StatusConfirmed SelectionStatus = "confirmed"
	StatusDeclined  SelectionStatus = "declined"
)

// Selection records the patient's chosen package for one scope (unified or
// one eye).
type Selection struct {
	PackageID     string          `json:"selected_package_id,omitempty"`
	Status        SelectionStatus `json:"status,omitempty"`
	SelectionDate string          `json:"selection_date,omitempty"` // YYYY-MM-DD
}

// IsSet reports whether a package has been chosen.
func (s Selection) IsSet() bool { return s.PackageID != "" }

// PerSide carries the unified slot alongside the two per-eye slots. Only one
// shape is live at a time (per State.SamePlanBothEyes) but all three are
// persisted.
type PerSide[T any] struct {
	Unified T `json:"unified"`
	OD      T `json:"od"`
	OS      T `json:"os"`
}

// State is the offering/selection sub-document of a surgical plan.
type State struct {
	SamePlanBothEyes bool               `json:"same_plan_both_eyes"`
	Offered          PerSide[IDSet]     `json:"offered"`
	Selection        PerSide[Selection] `json:"selection"`
}

// FilterCatalog returns the packages whose category is in the eligible set.
// Monofocal packages are always included regardless of flags.
func FilterCatalog(packages []catalog.Package, eligible []catalog.Category) []catalog.Package {
	allowed := make(map[catalog.Category]struct{}, len(eligible))
	for _, c := range eligible {
		allowed[c] = struct{}{}
	}
	var out []catalog.Package
	for _, p := range packages {
		cat := catalog.CategoryOf(p.ID)
		if cat == catalog.CategoryMonofocal {
			out = append(out, p)
			continue
		}
		if _, ok := allowed[cat]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (st *State) offeredSlot(eye Eye) (*IDSet, error) {
	if st.SamePlanBothEyes {
		return &st.Offered.Unified, nil
	}
	switch eye {
	case EyeOD:
		return &st.Offered.OD, nil
	case EyeOS:
		return &st.Offered.OS, nil
	default:
		return nil, ErrUnknownEye
	}
}

func (st *State) selectionSlot(eye Eye) (*Selection, error) {
	if st.SamePlanBothEyes {
		return &st.Selection.Unified, nil
	}
	switch eye {
	case EyeOD:
		return &st.Selection.OD, nil
	case EyeOS:
		return &st.Selection.OS, nil
	default:
		return nil, ErrUnknownEye
	}
}

// ToggleOffered adds or removes a package from the relevant offered set.
// There is deliberately no eligibility check here: staff may override the
// resolved categories when offering.
func (st *State) ToggleOffered(packageID string, eye Eye) error {
	slot, err := st.offeredSlot(eye)
	if err != nil {
		return err
	}
	*slot = slot.Toggle(packageID)
	return nil
}

// Select records the patient's choice. The package must be a member of the
// corresponding offered set; violations are rejected writes, not warnings.
func (st *State) Select(packageID string, eye Eye, status SelectionStatus, now time.Time) error {
	offered, err := st.offeredSlot(eye)
	if err != nil {
		return err
	}
	if !offered.Contains(packageID) {
		return ErrNotOffered
	}
	sel, err := st.selectionSlot(eye)
	if err != nil {
		return err
	}
	if status == "" {
		status = StatusPending
	}
	sel.PackageID = packageID
	sel.Status = status
	sel.SelectionDate = now.Format("2006-01-02")
	return nil
}

// SelectedFor returns the live selection for an eye, honoring the mode.
func (st *State) SelectedFor(eye Eye) Selection {
	if st.SamePlanBothEyes {
		return st.Selection.Unified
	}
	switch eye {
	case EyeOS:
		return st.Selection.OS
	default:
		return st.Selection.OD
	}
}

// MergeToUnified switches to unified mode and reconciles per-eye data into
// the unified slots: the unified offered set becomes the union of both eyes,
// and the unified selection is adopted only when both eyes agree on the same
// package (status downgraded to pending unless both were confirmed). Per-eye
// slots are left intact so switching back loses nothing.
func (st *State) MergeToUnified() {
	st.SamePlanBothEyes = true
	st.Offered.Unified = Union(st.Offered.OD, st.Offered.OS)

	od, os := st.Selection.OD, st.Selection.OS
	switch {
	case od.IsSet() && od.PackageID == os.PackageID:
		merged := od
		if od.Status != StatusConfirmed || os.Status != StatusConfirmed {
			merged.Status = StatusPending
		}
		st.Selection.Unified = merged
	default:
		st.Selection.Unified = Selection{}
	}
}

// SplitToPerEye switches to per-eye mode, seeding each eye from the unified
// slots: offered sets take the union with whatever the eye already had, and
// an eye without a selection inherits the unified one. Existing per-eye
// selections win over the unified value.
func (st *State) SplitToPerEye() {
	st.SamePlanBothEyes = false
	st.Offered.OD = Union(st.Offered.OD, st.Offered.Unified)
	st.Offered.OS = Union(st.Offered.OS, st.Offered.Unified)
	if !st.Selection.OD.IsSet() {
		st.Selection.OD = st.Selection.Unified
	}
	if !st.Selection.OS.IsSet() {
		st.Selection.OS = st.Selection.Unified
	}
}
