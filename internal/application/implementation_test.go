package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/inventory"
	"venuehub/internal/storage/memory"
)

type fixture struct {
	apps      application.Service
	venues    calendar.Service
	materials inventory.Service
	store     *memory.Store
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	venues := calendar.NewService(store, store, clk)
	materials := inventory.NewService(store, clk)
	return &fixture{
		apps:      application.NewService(store, venues, materials, clk),
		venues:    venues,
		materials: materials,
		store:     store,
		now:       now,
	}
}

func (f *fixture) venue(t *testing.T) *calendar.Venue {
	t.Helper()
	v, err := f.venues.AddVenue(context.Background(), calendar.AddVenueInput{Name: "Hall", Capacity: 50})
	require.NoError(t, err)
	return v
}

func (f *fixture) material(t *testing.T, total int) *inventory.Material {
	t.Helper()
	m, err := f.materials.AddMaterial(context.Background(), inventory.AddMaterialInput{
		Name: "projector", Unit: "piece", TotalQuantity: total,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) input(v *calendar.Venue, m *inventory.Material) application.CreateInput {
	return application.CreateInput{
		ActivityName: "robotics workshop",
		VenueID:      v.ID,
		StartTime:    f.now.Add(24 * time.Hour),
		EndTime:      f.now.Add(26 * time.Hour),
		Materials:    []application.LineItem{{MaterialID: m.ID, Quantity: 1}},
	}
}

func TestCreateSubmitsPendingWithoutCommitting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t)
	m := f.material(t, 3)

	a, err := f.apps.Create(ctx, uuid.New(), f.input(v, m))
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, a.Status)

	// Submission holds nothing: stock and calendar stay untouched.
	got, err := f.materials.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CommittedQuantity)

	conflict, err := f.venues.CheckConflict(ctx, v.ID, a.StartTime, a.EndTime, uuid.Nil)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t)
	m := f.material(t, 3)
	requester := uuid.New()

	t.Run("missing activity name", func(t *testing.T) {
		in := f.input(v, m)
		in.ActivityName = ""
		_, err := f.apps.Create(ctx, requester, in)
		assert.Error(t, err)
	})

	t.Run("inverted interval", func(t *testing.T) {
		in := f.input(v, m)
		in.StartTime, in.EndTime = in.EndTime, in.StartTime
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, calendar.ErrInvalidInterval)
	})

	t.Run("start in the past", func(t *testing.T) {
		in := f.input(v, m)
		in.StartTime = f.now.Add(-time.Hour)
		in.EndTime = f.now.Add(time.Hour)
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, application.ErrPastStartTime)
	})

	t.Run("unknown venue", func(t *testing.T) {
		in := f.input(v, m)
		in.VenueID = uuid.New()
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, calendar.ErrVenueNotFound)
	})

	t.Run("no materials", func(t *testing.T) {
		in := f.input(v, m)
		in.Materials = nil
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, application.ErrNoMaterials)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		in := f.input(v, m)
		in.Materials = []application.LineItem{{MaterialID: m.ID, Quantity: 0}}
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, application.ErrInvalidQuantity)
	})

	t.Run("repeated material", func(t *testing.T) {
		in := f.input(v, m)
		in.Materials = []application.LineItem{
			{MaterialID: m.ID, Quantity: 1},
			{MaterialID: m.ID, Quantity: 2},
		}
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, application.ErrDuplicateMaterial)
	})

	t.Run("unknown material", func(t *testing.T) {
		in := f.input(v, m)
		in.Materials = []application.LineItem{{MaterialID: uuid.New(), Quantity: 1}}
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, inventory.ErrMaterialNotFound)
	})

	t.Run("retired material", func(t *testing.T) {
		retired := f.material(t, 2)
		require.NoError(t, f.materials.RemoveMaterial(ctx, retired.ID))
		in := f.input(v, retired)
		_, err := f.apps.Create(ctx, requester, in)
		assert.ErrorIs(t, err, inventory.ErrMaterialUnavailable)
	})

	t.Run("offline venue", func(t *testing.T) {
		require.NoError(t, f.venues.SetVenueStatus(ctx, v.ID, calendar.StatusMaintenance))
		_, err := f.apps.Create(ctx, requester, f.input(v, m))
		assert.ErrorIs(t, err, calendar.ErrVenueUnavailable)
	})
}

func TestListPendingNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t)
	m := f.material(t, 10)
	requester := uuid.New()

	// The fixed clock stamps every application identically, so vary created
	// as the store sees it by saving directly.
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		a, err := f.apps.Create(ctx, requester, f.input(v, m))
		require.NoError(t, err)
		a.CreatedAt = f.now.Add(time.Duration(i) * time.Minute)
		require.NoError(t, f.store.SaveApplication(ctx, a))
		ids = append(ids, a.ID)
	}

	pending, err := f.apps.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, ids[2], pending[0].ID)
	assert.Equal(t, ids[0], pending[2].ID)
}

func TestListByRequesterScopesResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t)
	m := f.material(t, 10)
	alice := uuid.New()
	bob := uuid.New()

	_, err := f.apps.Create(ctx, alice, f.input(v, m))
	require.NoError(t, err)
	_, err = f.apps.Create(ctx, bob, f.input(v, m))
	require.NoError(t, err)

	mine, err := f.apps.ListByRequester(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice, mine[0].RequesterID)
}
