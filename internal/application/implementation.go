// internal/application/implementation.go
package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/inventory"
)

// service implements the Service interface.
type service struct {
	store     Store
	venues    calendar.Service
	materials inventory.Service
	clock     clock.Clock
}

// NewService creates a new application service instance.
func NewService(store Store, venues calendar.Service, materials inventory.Service, clk clock.Clock) Service {
	return &service{store: store, venues: venues, materials: materials, clock: clk}
}

// Create submits a pending application. No venue interval or material
// quantity is committed until approval.
func (s *service) Create(ctx context.Context, requesterID uuid.UUID, in CreateInput) (*Application, error) {
	if in.ActivityName == "" {
		return nil, fmt.Errorf("activity name is required")
	}
	if !in.StartTime.Before(in.EndTime) {
		return nil, calendar.ErrInvalidInterval
	}
	now := s.clock.Now()
	if !in.StartTime.After(now) {
		return nil, ErrPastStartTime
	}

	venue, err := s.venues.GetVenue(ctx, in.VenueID)
	if err != nil {
		return nil, err
	}
	if !venue.IsAvailable() {
		return nil, calendar.ErrVenueUnavailable
	}

	if len(in.Materials) == 0 {
		return nil, ErrNoMaterials
	}
	seen := make(map[uuid.UUID]struct{}, len(in.Materials))
	for _, item := range in.Materials {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if _, dup := seen[item.MaterialID]; dup {
			return nil, fmt.Errorf("material %s: %w", item.MaterialID, ErrDuplicateMaterial)
		}
		seen[item.MaterialID] = struct{}{}
		m, err := s.materials.GetMaterial(ctx, item.MaterialID)
		if err != nil {
			return nil, err
		}
		if !m.IsAvailable() {
			return nil, fmt.Errorf("material %s: %w", m.Name, inventory.ErrMaterialUnavailable)
		}
	}

	a := &Application{
		ID:                  uuid.New(),
		RequesterID:         requesterID,
		ActivityName:        in.ActivityName,
		ActivityDescription: in.ActivityDescription,
		VenueID:             in.VenueID,
		StartTime:           in.StartTime,
		EndTime:             in.EndTime,
		Materials:           in.Materials,
		Status:              StatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.SaveApplication(ctx, a); err != nil {
		return nil, fmt.Errorf("save application: %w", err)
	}
	return a, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Application, error) {
	return s.store.GetApplication(ctx, id)
}

func (s *service) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*Application, error) {
	return s.store.ListApplicationsByRequester(ctx, requesterID)
}

func (s *service) ListPending(ctx context.Context) ([]*Application, error) {
	pending, err := s.store.ListApplicationsByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})
	return pending, nil
}
