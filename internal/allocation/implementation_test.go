package allocation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"venuehub/internal/allocation"
	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
	"venuehub/internal/storage/memory"
)

type fixture struct {
	store       *memory.Store
	coordinator allocation.Coordinator
	apps        application.Service
	venues      calendar.Service
	materials   inventory.Service
	now         time.Time

	member   identity.Principal
	reviewer identity.Principal
	admin    identity.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewFixed(now)
	venues := calendar.NewService(store, store, clk)
	materials := inventory.NewService(store, clk)
	return &fixture{
		store:       store,
		coordinator: allocation.NewCoordinator(store, venues, materials, clk, zap.NewNop()),
		apps:        application.NewService(store, venues, materials, clk),
		venues:      venues,
		materials:   materials,
		now:         now,
		member:      identity.Principal{ID: uuid.New(), Role: identity.RoleMember},
		reviewer:    identity.Principal{ID: uuid.New(), Role: identity.RoleReviewer},
		admin:       identity.Principal{ID: uuid.New(), Role: identity.RoleAdmin},
	}
}

func (f *fixture) venue(t *testing.T, name string) *calendar.Venue {
	t.Helper()
	v, err := f.venues.AddVenue(context.Background(), calendar.AddVenueInput{Name: name, Capacity: 50})
	require.NoError(t, err)
	return v
}

func (f *fixture) material(t *testing.T, name string, total int) *inventory.Material {
	t.Helper()
	m, err := f.materials.AddMaterial(context.Background(), inventory.AddMaterialInput{
		Name: name, Unit: "piece", TotalQuantity: total,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) submit(t *testing.T, v *calendar.Venue, startHour, endHour int, items ...application.LineItem) *application.Application {
	t.Helper()
	a, err := f.apps.Create(context.Background(), f.member.ID, application.CreateInput{
		ActivityName: "club meeting",
		VenueID:      v.ID,
		StartTime:    f.now.Add(time.Duration(startHour) * time.Hour),
		EndTime:      f.now.Add(time.Duration(endHour) * time.Hour),
		Materials:    items,
	})
	require.NoError(t, err)
	return a
}

func (f *fixture) committed(t *testing.T, materialID uuid.UUID) int {
	t.Helper()
	m, err := f.materials.GetMaterial(context.Background(), materialID)
	require.NoError(t, err)
	return m.CommittedQuantity
}

func (f *fixture) booked(t *testing.T, v *calendar.Venue, startHour, endHour int) bool {
	t.Helper()
	conflict, err := f.venues.CheckConflict(context.Background(), v.ID,
		f.now.Add(time.Duration(startHour)*time.Hour),
		f.now.Add(time.Duration(endHour)*time.Hour), uuid.Nil)
	require.NoError(t, err)
	return conflict
}

func TestApproveCommitsVenueAndMaterials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	projector := f.material(t, "projector", 2)
	chairs := f.material(t, "chairs", 40)

	a := f.submit(t, v, 24, 26,
		application.LineItem{MaterialID: projector.ID, Quantity: 1},
		application.LineItem{MaterialID: chairs.ID, Quantity: 30},
	)

	approved, err := f.coordinator.Approve(ctx, f.reviewer, a.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApproved, approved.Status)
	assert.Equal(t, f.reviewer.ID, approved.ReviewerID)

	assert.Equal(t, 1, f.committed(t, projector.ID))
	assert.Equal(t, 30, f.committed(t, chairs.ID))
	assert.True(t, f.booked(t, v, 24, 26))
}

func TestApproveRequiresReviewCapableRole(t *testing.T) {
	f := newFixture(t)
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Approve(context.Background(), f.member, a.ID)
	assert.ErrorIs(t, err, allocation.ErrNotPermitted)
	assert.Equal(t, 0, f.committed(t, m.ID))
}

func TestApproveRejectsNonPendingApplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Approve(ctx, f.reviewer, a.ID)
	require.NoError(t, err)

	_, err = f.coordinator.Approve(ctx, f.reviewer, a.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
	assert.Equal(t, 1, f.committed(t, m.ID), "double approval never double-commits")
}

func TestApproveConflictChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 5)

	first := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})
	second := f.submit(t, v, 25, 27, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Approve(ctx, f.reviewer, first.ID)
	require.NoError(t, err)

	_, err = f.coordinator.Approve(ctx, f.reviewer, second.ID)
	assert.ErrorIs(t, err, calendar.ErrTimeConflict)

	// The losing application holds nothing and stays pending for re-review.
	assert.Equal(t, 1, f.committed(t, m.ID))
	got, err := f.apps.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, got.Status)
}

func TestApproveInsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hallA := f.venue(t, "Hall A")
	hallB := f.venue(t, "Hall B")
	m := f.material(t, "projector", 1)

	first := f.submit(t, hallA, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})
	second := f.submit(t, hallB, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Approve(ctx, f.reviewer, first.ID)
	require.NoError(t, err)

	_, err = f.coordinator.Approve(ctx, f.reviewer, second.ID)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// The venue interval must not leak when the material check fails.
	assert.False(t, f.booked(t, hallB, 24, 26))
	got, err := f.apps.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusPending, got.Status)
}

// failingAppStore passes reads through and fails a configurable number of
// saves, standing in for a store outage mid-approval.
type failingAppStore struct {
	application.Store
	mu       sync.Mutex
	failures int
}

func (s *failingAppStore) SaveApplication(ctx context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("store unavailable")
	}
	return s.Store.SaveApplication(ctx, a)
}

func TestApproveRollsBackWhenSaveFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	flaky := &failingAppStore{Store: f.store, failures: 1}
	clk := clock.NewFixed(f.now)
	coordinator := allocation.NewCoordinator(flaky, f.venues, f.materials, clk, zap.NewNop())

	_, err := coordinator.Approve(ctx, f.reviewer, a.ID)
	require.Error(t, err)

	// Rollback returned the venue interval and the material commitment.
	assert.Equal(t, 0, f.committed(t, m.ID))
	assert.False(t, f.booked(t, v, 24, 26))

	// A retry against a recovered store succeeds cleanly.
	_, err = coordinator.Approve(ctx, f.reviewer, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.committed(t, m.ID))
}

func TestRejectRecordsReasonAndReviewer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	rejected, err := f.coordinator.Reject(ctx, f.reviewer, a.ID, "venue under renovation")
	require.NoError(t, err)
	assert.Equal(t, application.StatusRejected, rejected.Status)
	assert.Equal(t, "venue under renovation", rejected.RejectionReason)
	assert.Equal(t, f.reviewer.ID, rejected.ReviewerID)

	_, err = f.coordinator.Reject(ctx, f.member, a.ID, "nope")
	assert.ErrorIs(t, err, allocation.ErrNotPermitted)
}

func TestRejectApprovedApplicationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Approve(ctx, f.reviewer, a.ID)
	require.NoError(t, err)

	_, err = f.coordinator.Reject(ctx, f.reviewer, a.ID, "changed my mind")
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
	assert.Equal(t, 1, f.committed(t, m.ID))
}

func TestCancelPendingReleasesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	cancelled, err := f.coordinator.Cancel(ctx, f.member, a.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusCancelled, cancelled.Status)
	assert.Equal(t, 0, f.committed(t, m.ID))
}

func TestCancelApprovedReleasesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	projector := f.material(t, "projector", 2)
	chairs := f.material(t, "chairs", 40)
	a := f.submit(t, v, 24, 26,
		application.LineItem{MaterialID: projector.ID, Quantity: 1},
		application.LineItem{MaterialID: chairs.ID, Quantity: 30},
	)

	_, err := f.coordinator.Approve(ctx, f.reviewer, a.ID)
	require.NoError(t, err)

	cancelled, err := f.coordinator.Cancel(ctx, f.member, a.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusCancelled, cancelled.Status)

	assert.Equal(t, 0, f.committed(t, projector.ID))
	assert.Equal(t, 0, f.committed(t, chairs.ID))
	assert.False(t, f.booked(t, v, 24, 26))

	// The freed window is immediately usable by another application.
	b := f.submit(t, v, 24, 26, application.LineItem{MaterialID: projector.ID, Quantity: 2})
	_, err = f.coordinator.Approve(ctx, f.reviewer, b.ID)
	require.NoError(t, err)
}

func TestCancelPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)

	stranger := identity.Principal{ID: uuid.New(), Role: identity.RoleMember}
	reviewerNotOwner := f.reviewer

	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Cancel(ctx, stranger, a.ID)
	assert.ErrorIs(t, err, allocation.ErrNotPermitted)

	// Reviewer role alone does not grant cancellation of someone else's
	// application; admin does.
	_, err = f.coordinator.Cancel(ctx, reviewerNotOwner, a.ID)
	assert.ErrorIs(t, err, allocation.ErrNotPermitted)

	_, err = f.coordinator.Cancel(ctx, f.admin, a.ID)
	require.NoError(t, err)
}

func TestCancelTwiceFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 2)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})

	_, err := f.coordinator.Cancel(ctx, f.member, a.ID)
	require.NoError(t, err)

	_, err = f.coordinator.Cancel(ctx, f.member, a.ID)
	assert.ErrorIs(t, err, application.ErrInvalidTransition)
}

func TestUnknownApplication(t *testing.T) {
	f := newFixture(t)
	_, err := f.coordinator.Approve(context.Background(), f.reviewer, uuid.New())
	assert.ErrorIs(t, err, application.ErrApplicationNotFound)
}

func TestConcurrentApprovalsSingleMaterialWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.material(t, "the one projector", 1)

	const contenders = 8
	apps := make([]*application.Application, contenders)
	for i := 0; i < contenders; i++ {
		v := f.venue(t, "Hall")
		apps[i] = f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 1})
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for _, a := range apps {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.coordinator.Approve(ctx, f.reviewer, id)
			results <- err
		}(a.ID)
	}
	wg.Wait()
	close(results)

	var wins, stockouts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, inventory.ErrInsufficientStock):
			stockouts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one approval may claim the single unit")
	assert.Equal(t, contenders-1, stockouts)
	assert.Equal(t, 1, f.committed(t, m.ID))
}

func TestConcurrentApprovalsSingleVenueWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "chairs", 1000)

	const contenders = 8
	apps := make([]*application.Application, contenders)
	for i := 0; i < contenders; i++ {
		apps[i] = f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 10})
	}

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for _, a := range apps {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.coordinator.Approve(ctx, f.reviewer, id)
			results <- err
		}(a.ID)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, calendar.ErrTimeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one approval may claim the window")
	assert.Equal(t, contenders-1, conflicts)
	assert.Equal(t, 10, f.committed(t, m.ID))
}

// gatedAppStore releases reads only once the expected number of callers have
// loaded their snapshot, forcing concurrent decisions to start from the same
// stored state.
type gatedAppStore struct {
	application.Store
	mu      sync.Mutex
	waiting int
	gate    chan struct{}
}

func newGatedAppStore(store application.Store, callers int) *gatedAppStore {
	return &gatedAppStore{Store: store, waiting: callers, gate: make(chan struct{})}
}

func (s *gatedAppStore) GetApplication(ctx context.Context, id uuid.UUID) (*application.Application, error) {
	a, err := s.Store.GetApplication(ctx, id)
	s.mu.Lock()
	if s.waiting > 0 {
		s.waiting--
		last := s.waiting == 0
		s.mu.Unlock()
		if last {
			close(s.gate)
		}
		<-s.gate
	} else {
		s.mu.Unlock()
	}
	return a, err
}

func TestConcurrentApprovalsSameApplicationOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 10)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 4})

	gated := newGatedAppStore(f.store, 2)
	clk := clock.NewFixed(f.now)
	coordinator := allocation.NewCoordinator(gated, f.venues, f.materials, clk, zap.NewNop())

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coordinator.Approve(ctx, f.reviewer, a.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, repeats int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, application.ErrInvalidTransition):
			repeats++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "a second decision on the same application must lose")
	assert.Equal(t, 1, repeats)
	assert.Equal(t, 4, f.committed(t, m.ID), "stock is claimed exactly once")

	// Cancellation returns the single claim in full.
	_, err := coordinator.Cancel(ctx, f.member, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.committed(t, m.ID))
	assert.False(t, f.booked(t, v, 24, 26))
}

func TestConcurrentCancelAndApproveSettleCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.venue(t, "Main Hall")
	m := f.material(t, "projector", 10)
	a := f.submit(t, v, 24, 26, application.LineItem{MaterialID: m.ID, Quantity: 4})

	gated := newGatedAppStore(f.store, 2)
	clk := clock.NewFixed(f.now)
	coordinator := allocation.NewCoordinator(gated, f.venues, f.materials, clk, zap.NewNop())

	approveErrs := make(chan error, 1)
	cancelErrs := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := coordinator.Approve(ctx, f.reviewer, a.ID)
		approveErrs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := coordinator.Cancel(ctx, f.member, a.ID)
		cancelErrs <- err
	}()
	wg.Wait()

	// Cancel wins either order: a pending application cancels outright, a
	// freshly approved one is released. Approval only fails if cancel landed
	// first, and the cancelled status must never flip back.
	assert.NoError(t, <-cancelErrs)
	if err := <-approveErrs; err != nil {
		assert.ErrorIs(t, err, application.ErrInvalidTransition)
	}

	final, err := f.store.GetApplication(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, application.StatusCancelled, final.Status)
	assert.Equal(t, 0, f.committed(t, m.ID))
	assert.False(t, f.booked(t, v, 24, 26))
}
