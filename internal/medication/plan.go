// Package medication configures a patient's cataract-surgery drop protocol:
// a standard antibiotic/NSAID/steroid regimen, a 3-in-1 combination drop, or
// a dropless intracameral variant, plus the post-op steroid taper schedule.
//
// Exactly one protocol is active at a time, but switching the protocol type
// never clears the other branches: staff flip between configurations to
// compare them, and stale branch data is deliberately retained as a scratch
// pad.
package medication

import (
	"errors"

	"github.com/clearpath-health/cataract-planner/internal/catalog"
)

// ProtocolType selects which branch of the plan is semantically active.
type ProtocolType string

const (
	ProtocolStandard    ProtocolType = "STANDARD"
	ProtocolCombination ProtocolType = "COMBINATION"
	ProtocolDropless    ProtocolType = "DROPLESS"
)

// ErrUnknownProtocol rejects protocol types outside the three variants.
var ErrUnknownProtocol = errors.New("medication: unknown protocol type")

// PreOp is the pre-operative antibiotic course, shared by the standard and
// dropless protocols.
type PreOp struct {
	AntibioticID   string `json:"antibiotic_id,omitempty"`
	AntibioticName string `json:"antibiotic_name,omitempty"`
	FrequencyLabel string `json:"frequency_label,omitempty"`
	DurationDays   int    `json:"duration_days,omitempty"`
}

// PostOpAntibiotic is the first-week post-op antibiotic. Clinic convention
// fixes it at 4 instillations a day for 7 days.
type PostOpAntibiotic struct {
	Name           string `json:"name,omitempty"`
	FrequencyLabel string `json:"frequency,omitempty"`
	Weeks          int    `json:"weeks,omitempty"`
}

// PostOpNSAID is the post-op anti-inflammatory course.
type PostOpNSAID struct {
	Name            string `json:"name,omitempty"`
	FrequencyPerDay int    `json:"frequency,omitempty"`
	FrequencyLabel  string `json:"frequency_label,omitempty"`
	Weeks           int    `json:"weeks,omitempty"`
}

// PostOpSteroid is the tapered post-op steroid course.
type PostOpSteroid struct {
	Name string `json:"name,omitempty"`
	Taper
}

// StandardPostOp groups the three post-op drops of the standard protocol.
type StandardPostOp struct {
	Antibiotic PostOpAntibiotic `json:"antibiotic"`
	NSAID      PostOpNSAID      `json:"nsaid"`
	Steroid    PostOpSteroid    `json:"steroid"`
}

// StandardBranch is the conventional three-drop protocol.
type StandardBranch struct {
	PreOp  PreOp          `json:"pre_op"`
	PostOp StandardPostOp `json:"post_op"`
}

// CombinationBranch is a single 3-in-1 drop used pre- and post-op.
type CombinationBranch struct {
	Name           string   `json:"name,omitempty"`
	Components     []string `json:"components,omitempty"`
	FrequencyLabel string   `json:"frequency_label,omitempty"`
	Taper
}

// DroplessBranch records the dropless protocol: a pre-op antibiotic course
// and an intracameral injection at surgery time, kept as a free-text
// medication list. There is no post-op drop schedule.
type DroplessBranch struct {
	PreOp               PreOp    `json:"pre_op"`
	InjectionMedication []string `json:"injection_medication,omitempty"`
}

// Glaucoma is orthogonal to the protocol type: whether the patient resumes
// their pre-existing glaucoma drops after surgery.
type Glaucoma struct {
	Resume      bool     `json:"resume"`
	Medications []string `json:"medications,omitempty"`
}

// Plan is the medications_plan sub-document of a patient record.
type Plan struct {
	ProtocolType ProtocolType      `json:"protocol_type,omitempty"`
	Standard     StandardBranch    `json:"standard"`
	Combination  CombinationBranch `json:"combination"`
	Dropless     DroplessBranch    `json:"dropless"`
	Glaucoma     Glaucoma          `json:"glaucoma"`
}

// SetProtocol switches the active protocol. Inactive branch data is kept.
func (p *Plan) SetProtocol(pt ProtocolType) error {
	switch pt {
	case ProtocolStandard, ProtocolCombination, ProtocolDropless:
		p.ProtocolType = pt
		return nil
	default:
		return ErrUnknownProtocol
	}
}

// ApplyPreOpAntibiotic fills the active branch's pre-op course from a
// catalog option. Duration defaults to the clinic's start-days-before-
// surgery convention unless the option specifies a weekly course.
func (p *Plan) ApplyPreOpAntibiotic(opt catalog.MedicationOption, defaultStartDays int) {
	pre := PreOp{
		AntibioticID:   opt.ID,
		AntibioticName: opt.Name,
		FrequencyLabel: opt.FrequencyLabel,
		DurationDays:   defaultStartDays,
	}
	if pre.DurationDays <= 0 {
		pre.DurationDays = 3
	}
	if p.ProtocolType == ProtocolDropless {
		p.Dropless.PreOp = pre
		return
	}
	p.Standard.PreOp = pre
}

// ApplyPostOpAntibiotic fills the standard branch's post-op antibiotic.
// Convention: 4 times a day for one week regardless of the option's pre-op
// defaults.
func (p *Plan) ApplyPostOpAntibiotic(opt catalog.MedicationOption) {
	p.Standard.PostOp.Antibiotic = PostOpAntibiotic{
		Name:           opt.Name,
		FrequencyLabel: "4 times a day",
		Weeks:          1,
	}
}

// ApplyNSAID fills the standard branch's NSAID course from catalog defaults.
func (p *Plan) ApplyNSAID(opt catalog.MedicationOption) {
	p.Standard.PostOp.NSAID = PostOpNSAID{
		Name:            opt.Name,
		FrequencyPerDay: opt.DefaultFrequencyPerDay,
		FrequencyLabel:  opt.FrequencyLabel,
		Weeks:           opt.DefaultWeeks,
	}
}

// ApplySteroid fills the standard branch's steroid with the option's default
// taper.
func (p *Plan) ApplySteroid(opt catalog.MedicationOption) {
	p.Standard.PostOp.Steroid = PostOpSteroid{
		Name:  opt.Name,
		Taper: FromDefaults(opt.DefaultTaper),
	}
}

// ApplyCombination fills the combination branch from a 3-in-1 option.
func (p *Plan) ApplyCombination(opt catalog.MedicationOption) {
	p.Combination = CombinationBranch{
		Name:           opt.Name,
		Components:     append([]string(nil), opt.Components...),
		FrequencyLabel: opt.FrequencyLabel,
		Taper:          FromDefaults(opt.DefaultTaper),
	}
}

// ActiveTaper returns the taper belonging to the active protocol, or nil for
// the dropless protocol, which has none.
func (p *Plan) ActiveTaper() *Taper {
	switch p.ProtocolType {
	case ProtocolCombination:
		return &p.Combination.Taper
	case ProtocolDropless:
		return nil
	default:
		return &p.Standard.PostOp.Steroid.Taper
	}
}

// PreOpFrequencyLabel is the frequency driving the pre-op adherence
// tracker: the pre-op antibiotic for standard and dropless protocols, the
// combination drop otherwise.
func (p *Plan) PreOpFrequencyLabel() string {
	switch p.ProtocolType {
	case ProtocolCombination:
		return p.Combination.FrequencyLabel
	case ProtocolDropless:
		return p.Dropless.PreOp.FrequencyLabel
	default:
		return p.Standard.PreOp.FrequencyLabel
	}
}

// Normalize re-classifies taper types after a load, so schedules edited
// outside ApplyPreset/SetWeek still carry a consistent tag.
func (p *Plan) Normalize() {
	p.Standard.PostOp.Steroid.Taper.Normalize()
	p.Combination.Taper.Normalize()
}
