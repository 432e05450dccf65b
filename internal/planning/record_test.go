package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clearpath-health/cataract-planner/internal/candidacy"
	"github.com/clearpath-health/cataract-planner/internal/lenses"
	"github.com/clearpath-health/cataract-planner/internal/offering"
)

func TestNextSurgeryDate(t *testing.T) {
	rec := NewRecord("clinic-1", "patient-1")
	assert.Empty(t, rec.NextSurgeryDate(), "no orders scheduled")

	rec.SurgicalPlan.LensOrders.OD.SurgeryDate = "2026-05-20"
	rec.SurgicalPlan.LensOrders.OS.SurgeryDate = "2026-05-06"
	assert.Equal(t, "2026-05-06", rec.NextSurgeryDate(), "earliest scheduled eye wins")

	// The first eye's surgery is done; the tracker moves to the second.
	rec.SurgicalPlan.LensOrders.OS.Status = lenses.OrderCompleted
	assert.Equal(t, "2026-05-20", rec.NextSurgeryDate())

	rec.SurgicalPlan.LensOrders.OD.Status = lenses.OrderCompleted
	assert.Empty(t, rec.NextSurgeryDate())
}

func TestCandidacyForUnifiedCombines(t *testing.T) {
	rec := NewRecord("clinic-1", "patient-1")
	rec.SurgicalPlan.Candidacy.OD = candidacy.Profile{ToricEligible: true}
	rec.SurgicalPlan.Candidacy.OS = candidacy.Profile{EDOFEligible: true}

	rec.SurgicalPlan.Offering.SamePlanBothEyes = true
	combined := rec.CandidacyFor(offering.EyeOD)
	assert.True(t, combined.ToricEligible)
	assert.True(t, combined.EDOFEligible)

	rec.SurgicalPlan.Offering.SamePlanBothEyes = false
	od := rec.CandidacyFor(offering.EyeOD)
	assert.True(t, od.ToricEligible)
	assert.False(t, od.EDOFEligible)
}

func TestFrozenRules(t *testing.T) {
	rec := NewRecord("clinic-1", "patient-1")
	assert.NoError(t, rec.frozenFor(offering.EyeOD))
	assert.NoError(t, rec.frozenAny())

	rec.SurgicalPlan.LensOrders.OD.Status = lenses.OrderCompleted

	assert.ErrorIs(t, rec.frozenFor(offering.EyeOD), ErrPlanFrozen)
	assert.NoError(t, rec.frozenFor(offering.EyeOS), "the other eye is still plannable")
	assert.ErrorIs(t, rec.frozenAny(), ErrPlanFrozen)

	// Unified scope freezes on either completed eye.
	rec.SurgicalPlan.Offering.SamePlanBothEyes = true
	assert.ErrorIs(t, rec.frozenForScope(offering.EyeOS), ErrPlanFrozen)
}
