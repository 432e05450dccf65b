package planning

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath-health/cataract-planner/internal/medication"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestStoreGetReturnsIntakeRecordWhenMissing(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Get(context.Background(), "clinic-a", "patient-1")
	require.NoError(t, err)
	assert.Equal(t, "clinic-a", rec.ClinicID)
	assert.Equal(t, "patient-1", rec.PatientID)
	assert.False(t, rec.SurgicalPlan.Offering.SamePlanBothEyes)
	assert.Empty(t, rec.NextSurgeryDate())
}

func TestStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := NewRecord("clinic-a", "patient-1")
	rec.SurgicalPlan.Candidacy.OD.ToricEligible = true
	rec.SurgicalPlan.LensOrders.OD.SurgeryDate = "2026-05-06"
	rec.Medications.PreOp.Progress = map[string][]string{"2026-05-03": {"morning"}}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "clinic-a", "patient-1")
	require.NoError(t, err)
	assert.True(t, got.SurgicalPlan.Candidacy.OD.ToricEligible)
	assert.Equal(t, "2026-05-06", got.SurgicalPlan.LensOrders.OD.SurgeryDate)
	assert.Equal(t, []string{"morning"}, got.Medications.PreOp.Progress["2026-05-03"])
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestStoreGetNormalizesTaperType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := NewRecord("clinic-a", "patient-1")
	// A schedule written without going through ApplyPreset/SetWeek.
	rec.Medications.Plan.Standard.PostOp.Steroid.Taper.Schedule = medication.TaperSchedule{4, 3, 2, 1}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "clinic-a", "patient-1")
	require.NoError(t, err)
	assert.Equal(t, medication.TaperStandard, got.Medications.Plan.Standard.PostOp.Steroid.Taper.Type)
}

func TestStoreIsolatesPatients(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := NewRecord("clinic-a", "patient-1")
	rec.SurgicalPlan.Candidacy.OD.LALEligible = true
	require.NoError(t, store.Save(ctx, rec))

	other, err := store.Get(ctx, "clinic-a", "patient-2")
	require.NoError(t, err)
	assert.False(t, other.SurgicalPlan.Candidacy.OD.LALEligible)
}
