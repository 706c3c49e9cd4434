package calendar_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/storage/memory"
)

var baseTime = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func at(h int) time.Time { return baseTime.Add(time.Duration(h) * time.Hour) }

func newCalendar(t *testing.T) calendar.Service {
	t.Helper()
	store := memory.NewStore()
	return calendar.NewService(store, store, clock.NewFixed(baseTime))
}

func addVenue(t *testing.T, svc calendar.Service, name string) *calendar.Venue {
	t.Helper()
	v, err := svc.AddVenue(context.Background(), calendar.AddVenueInput{
		Name:     name,
		Location: "building A",
		Capacity: 60,
	})
	require.NoError(t, err)
	return v
}

func TestIntervalOverlaps(t *testing.T) {
	iv := calendar.Interval{Start: at(10), End: at(12)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical", at(10), at(12), true},
		{"contained", at(10), at(11), true},
		{"containing", at(9), at(13), true},
		{"overlaps start", at(9), at(11), true},
		{"overlaps end", at(11), at(13), true},
		{"before", at(7), at(9), false},
		{"after", at(13), at(15), false},
		{"touching end", at(12), at(14), false},
		{"touching start", at(8), at(10), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, iv.Overlaps(tc.start, tc.end))
		})
	}
}

func TestCommitDetectsConflict(t *testing.T) {
	svc := newCalendar(t)
	ctx := context.Background()
	v := addVenue(t, svc, "Main Hall")

	require.NoError(t, svc.Commit(ctx, v.ID, uuid.New(), at(10), at(12)))

	err := svc.Commit(ctx, v.ID, uuid.New(), at(11), at(13))
	assert.ErrorIs(t, err, calendar.ErrTimeConflict)

	// Back-to-back bookings share an endpoint without conflicting.
	require.NoError(t, svc.Commit(ctx, v.ID, uuid.New(), at(12), at(14)))
}

func TestCommitRejectsInvalidInterval(t *testing.T) {
	svc := newCalendar(t)
	ctx := context.Background()
	v := addVenue(t, svc, "Main Hall")

	err := svc.Commit(ctx, v.ID, uuid.New(), at(12), at(12))
	assert.ErrorIs(t, err, calendar.ErrInvalidInterval)

	err = svc.Commit(ctx, v.ID, uuid.New(), at(12), at(10))
	assert.ErrorIs(t, err, calendar.ErrInvalidInterval)
}

func TestCommitRejectsUnavailableVenue(t *testing.T) {
	svc := newCalendar(t)
	ctx := context.Background()
	v := addVenue(t, svc, "Main Hall")

	require.NoError(t, svc.SetVenueStatus(ctx, v.ID, calendar.StatusMaintenance))

	err := svc.Commit(ctx, v.ID, uuid.New(), at(10), at(12))
	assert.ErrorIs(t, err, calendar.ErrVenueUnavailable)
}

func TestCheckConflictExcludesOwnInterval(t *testing.T) {
	svc := newCalendar(t)
	ctx := context.Background()
	v := addVenue(t, svc, "Main Hall")
	appID := uuid.New()

	require.NoError(t, svc.Commit(ctx, v.ID, appID, at(10), at(12)))

	conflict, err := svc.CheckConflict(ctx, v.ID, at(10), at(12), appID)
	require.NoError(t, err)
	assert.False(t, conflict, "an application never conflicts with itself")

	conflict, err = svc.CheckConflict(ctx, v.ID, at(10), at(12), uuid.Nil)
	require.NoError(t, err)
	assert.True(t, conflict)
}

func TestReleaseIsIdempotent(t *testing.T) {
	svc := newCalendar(t)
	ctx := context.Background()
	v := addVenue(t, svc, "Main Hall")
	appID := uuid.New()

	require.NoError(t, svc.Commit(ctx, v.ID, appID, at(10), at(12)))
	require.NoError(t, svc.Release(ctx, v.ID, appID))
	require.NoError(t, svc.Release(ctx, v.ID, appID))

	conflict, err := svc.CheckConflict(ctx, v.ID, at(10), at(12), uuid.Nil)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestAvailableVenuesFiltersBookedAndOffline(t *testing.T) {
	svc := newCalendar(t)
	ctx := context.Background()
	free := addVenue(t, svc, "Free Room")
	booked := addVenue(t, svc, "Booked Room")
	offline := addVenue(t, svc, "Offline Room")

	require.NoError(t, svc.Commit(ctx, booked.ID, uuid.New(), at(10), at(12)))
	require.NoError(t, svc.SetVenueStatus(ctx, offline.ID, calendar.StatusUnavailable))

	venues, err := svc.AvailableVenues(ctx, at(11), at(13))
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, free.ID, venues[0].ID)

	// The booked room frees up outside its interval.
	venues, err = svc.AvailableVenues(ctx, at(12), at(14))
	require.NoError(t, err)
	assert.Len(t, venues, 2)
}

func TestSetVenueStatusRejectsUnknown(t *testing.T) {
	svc := newCalendar(t)
	v := addVenue(t, svc, "Main Hall")

	err := svc.SetVenueStatus(context.Background(), v.ID, "closed-forever")
	assert.Error(t, err)
}

func TestCommittedIntervalsNeverOverlap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := memory.NewStore()
		svc := calendar.NewService(store, store, clock.NewFixed(baseTime))
		ctx := context.Background()

		v, err := svc.AddVenue(ctx, calendar.AddVenueInput{Name: "Hall", Capacity: 10})
		if err != nil {
			t.Fatalf("add venue: %v", err)
		}

		type booking struct{ start, end int }
		var committed []booking

		attempts := rapid.IntRange(1, 40).Draw(t, "attempts")
		for i := 0; i < attempts; i++ {
			start := rapid.IntRange(0, 46).Draw(t, "start")
			length := rapid.IntRange(1, 6).Draw(t, "length")
			end := start + length

			err := svc.Commit(ctx, v.ID, uuid.New(), at(start), at(end))
			if err == nil {
				committed = append(committed, booking{start, end})
			}
		}

		for i := range committed {
			for j := i + 1; j < len(committed); j++ {
				a, b := committed[i], committed[j]
				if a.start < b.end && b.start < a.end {
					t.Fatalf("accepted overlapping bookings [%d,%d) and [%d,%d)",
						a.start, a.end, b.start, b.end)
				}
			}
		}
	})
}
