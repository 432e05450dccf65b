package medication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-health/cataract-planner/internal/catalog"
)

func clinicOptions() catalog.MedicationOptions {
	return catalog.DefaultCatalog("c").Medications
}

func TestSetProtocolValidation(t *testing.T) {
	var p Plan
	require.NoError(t, p.SetProtocol(ProtocolStandard))
	require.NoError(t, p.SetProtocol(ProtocolCombination))
	require.NoError(t, p.SetProtocol(ProtocolDropless))
	assert.ErrorIs(t, p.SetProtocol("TOPICAL"), ErrUnknownProtocol)
	assert.Equal(t, ProtocolDropless, p.ProtocolType, "failed switch leaves type unchanged")
}

func TestProtocolSwitchPreservesInactiveBranches(t *testing.T) {
	opts := clinicOptions()
	var p Plan
	require.NoError(t, p.SetProtocol(ProtocolStandard))

	steroid, ok := catalog.FindOption(opts.Steroids, "ster_prednisolone")
	require.True(t, ok)
	p.ApplySteroid(steroid)
	want := p.Standard.PostOp.Steroid.Schedule

	// Switch to combination, configure it, then switch back.
	require.NoError(t, p.SetProtocol(ProtocolCombination))
	combo, ok := catalog.FindOption(opts.Combinations, "combo_prednimoxigat")
	require.True(t, ok)
	p.ApplyCombination(combo)
	require.NoError(t, p.Combination.SetWeek(0, 2))

	require.NoError(t, p.SetProtocol(ProtocolStandard))
	assert.Equal(t, want, p.Standard.PostOp.Steroid.Schedule,
		"standard steroid taper must survive a round trip through combination")
	assert.Equal(t, TaperSchedule{2, 3, 2, 1}, p.Combination.Schedule,
		"combination edits survive as scratch-pad data")
}

func TestApplyPreOpAntibioticRoutesByProtocol(t *testing.T) {
	opts := clinicOptions()
	abx, ok := catalog.FindOption(opts.Antibiotics, "abx_moxifloxacin")
	require.True(t, ok)

	var p Plan
	require.NoError(t, p.SetProtocol(ProtocolStandard))
	p.ApplyPreOpAntibiotic(abx, opts.DefaultStartDaysBeforeSurgery)
	assert.Equal(t, "Moxifloxacin 0.5%", p.Standard.PreOp.AntibioticName)
	assert.Equal(t, 3, p.Standard.PreOp.DurationDays)
	assert.Empty(t, p.Dropless.PreOp.AntibioticName)

	require.NoError(t, p.SetProtocol(ProtocolDropless))
	p.ApplyPreOpAntibiotic(abx, 0)
	assert.Equal(t, "Moxifloxacin 0.5%", p.Dropless.PreOp.AntibioticName)
	assert.Equal(t, 3, p.Dropless.PreOp.DurationDays, "zero start days falls back to 3")
}

func TestApplyPostOpAntibioticConvention(t *testing.T) {
	opts := clinicOptions()
	abx, _ := catalog.FindOption(opts.Antibiotics, "abx_polytrim")

	var p Plan
	p.ApplyPostOpAntibiotic(abx)
	assert.Equal(t, "4 times a day", p.Standard.PostOp.Antibiotic.FrequencyLabel)
	assert.Equal(t, 1, p.Standard.PostOp.Antibiotic.Weeks)
}

func TestApplySteroidSeedsTaperFromDefaults(t *testing.T) {
	opts := clinicOptions()
	dexa, ok := catalog.FindOption(opts.Steroids, "ster_dexamethasone")
	require.True(t, ok)

	var p Plan
	p.ApplySteroid(dexa)
	assert.Equal(t, TaperShort, p.Standard.PostOp.Steroid.Type)
	assert.Equal(t, TaperSchedule{2, 1, 0, 0}, p.Standard.PostOp.Steroid.Schedule)
}

func TestActiveTaperByProtocol(t *testing.T) {
	var p Plan
	require.NoError(t, p.SetProtocol(ProtocolStandard))
	require.NotNil(t, p.ActiveTaper())
	require.NoError(t, p.ActiveTaper().ApplyPreset(TaperStandard))
	assert.Equal(t, TaperStandard, p.Standard.PostOp.Steroid.Type)

	require.NoError(t, p.SetProtocol(ProtocolCombination))
	require.NoError(t, p.ActiveTaper().ApplyPreset(TaperShort))
	assert.Equal(t, TaperShort, p.Combination.Type)
	// Standard branch untouched.
	assert.Equal(t, TaperStandard, p.Standard.PostOp.Steroid.Type)

	require.NoError(t, p.SetProtocol(ProtocolDropless))
	assert.Nil(t, p.ActiveTaper(), "dropless has no taper")
}

func TestPreOpFrequencyLabel(t *testing.T) {
	opts := clinicOptions()
	abx, _ := catalog.FindOption(opts.Antibiotics, "abx_moxifloxacin")
	combo, _ := catalog.FindOption(opts.Combinations, "combo_prednimoxigat")

	var p Plan
	require.NoError(t, p.SetProtocol(ProtocolStandard))
	p.ApplyPreOpAntibiotic(abx, 3)
	assert.Equal(t, "4 times a day", p.PreOpFrequencyLabel())

	require.NoError(t, p.SetProtocol(ProtocolCombination))
	p.ApplyCombination(combo)
	assert.Equal(t, "4 times a day", p.PreOpFrequencyLabel())

	require.NoError(t, p.SetProtocol(ProtocolDropless))
	p.ApplyPreOpAntibiotic(abx, 3)
	assert.Equal(t, "4 times a day", p.PreOpFrequencyLabel())
}
