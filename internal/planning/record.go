// Package planning owns the per-patient plan document and the staff
// operations that mutate it: candidacy flags, package offering and
// selection, lens orders, and the medication protocol. The document is the
// unit of persistence; every operation loads it, mutates it in memory, and
// saves it back whole.
package planning

import (
	"errors"
	"time"

	"github.com/clearpath-health/cataract-planner/internal/candidacy"
	"github.com/clearpath-health/cataract-planner/internal/lenses"
	"github.com/clearpath-health/cataract-planner/internal/medication"
	"github.com/clearpath-health/cataract-planner/internal/offering"
)

// ErrPlanFrozen rejects staff mutations after surgery has been performed
// for the targeted eye. The record stays readable.
var ErrPlanFrozen = errors.New("planning: plan is frozen after surgery")

// ErrNoTaper rejects taper edits under the dropless protocol, which has no
// taper schedule.
var ErrNoTaper = errors.New("planning: active protocol has no taper")

// ErrInvalidInput wraps malformed request values: bad dates, out-of-range
// weeks, unknown statuses or slots.
var ErrInvalidInput = errors.New("planning: invalid input")

// EyeSlot pairs the right and left eye values of a per-eye field.
type EyeSlot[T any] struct {
	OD T `json:"od"`
	OS T `json:"os"`
}

// SurgicalPlan is the lens-side half of the record.
type SurgicalPlan struct {
	Candidacy  EyeSlot[candidacy.Profile] `json:"candidacy"`
	Offering   offering.State             `json:"offering"`
	LensOrders EyeSlot[lenses.Order]      `json:"lens_orders"`
}

// PreOpRecord carries the patient's adherence progress in the frozen wire
// encoding: date to the list of checked item ids.
type PreOpRecord struct {
	Progress map[string][]string `json:"progress,omitempty"`
}

// MedicationsRecord is the medication-side half of the record.
type MedicationsRecord struct {
	Plan  medication.Plan `json:"plan"`
	PreOp PreOpRecord     `json:"pre_op"`
}

// Record is the full persisted patient document.
type Record struct {
	ClinicID     string            `json:"clinic_id"`
	PatientID    string            `json:"patient_id"`
	SurgicalPlan SurgicalPlan      `json:"surgical_plan"`
	Medications  MedicationsRecord `json:"medications"`
	UpdatedAt    time.Time         `json:"updated_at,omitempty"`
}

// NewRecord returns the intake-empty document for a patient.
func NewRecord(clinicID, patientID string) *Record {
	return &Record{ClinicID: clinicID, PatientID: patientID}
}

// LensOrder returns the order slot for an eye.
func (r *Record) LensOrder(eye offering.Eye) (*lenses.Order, error) {
	switch eye {
	case offering.EyeOD:
		return &r.SurgicalPlan.LensOrders.OD, nil
	case offering.EyeOS:
		return &r.SurgicalPlan.LensOrders.OS, nil
	default:
		return nil, offering.ErrUnknownEye
	}
}

// CandidacyFor returns the candidacy profile driving an eye's eligibility.
// On a unified plan the two profiles are OR-combined: a category is
// offerable when either eye qualifies.
func (r *Record) CandidacyFor(eye offering.Eye) candidacy.Profile {
	if r.SurgicalPlan.Offering.SamePlanBothEyes {
		return candidacy.Combine(r.SurgicalPlan.Candidacy.OD, r.SurgicalPlan.Candidacy.OS)
	}
	if eye == offering.EyeOS {
		return r.SurgicalPlan.Candidacy.OS
	}
	return r.SurgicalPlan.Candidacy.OD
}

// NextSurgeryDate is the earliest scheduled surgery date among orders that
// have not yet completed, in YYYY-MM-DD. Empty when nothing is scheduled.
// The adherence tracker anchors on this date.
func (r *Record) NextSurgeryDate() string {
	best := ""
	for _, o := range []*lenses.Order{&r.SurgicalPlan.LensOrders.OD, &r.SurgicalPlan.LensOrders.OS} {
		if o.SurgeryDate == "" || o.Completed() {
			continue
		}
		if best == "" || o.SurgeryDate < best {
			best = o.SurgeryDate
		}
	}
	return best
}

// frozenFor rejects mutations targeting an eye whose surgery is done.
func (r *Record) frozenFor(eye offering.Eye) error {
	order, err := r.LensOrder(eye)
	if err != nil {
		return err
	}
	if order.Completed() {
		return ErrPlanFrozen
	}
	return nil
}

// frozenForScope applies the freeze rule for an operation's scope: on a
// unified plan a completed surgery on either eye freezes the shared state,
// in per-eye mode only the targeted eye matters.
func (r *Record) frozenForScope(eye offering.Eye) error {
	if r.SurgicalPlan.Offering.SamePlanBothEyes {
		if r.SurgicalPlan.LensOrders.OD.Completed() || r.SurgicalPlan.LensOrders.OS.Completed() {
			return ErrPlanFrozen
		}
		return nil
	}
	return r.frozenFor(eye)
}

// frozenAny freezes whole-document operations once any eye is done.
func (r *Record) frozenAny() error {
	if r.SurgicalPlan.LensOrders.OD.Completed() || r.SurgicalPlan.LensOrders.OS.Completed() {
		return ErrPlanFrozen
	}
	return nil
}
