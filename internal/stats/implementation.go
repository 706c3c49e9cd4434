// internal/stats/implementation.go
package stats

import (
	"context"
	"time"

	"github.com/google/uuid"

	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/clock"
	"venuehub/internal/inventory"
)

// service implements the Service interface.
type service struct {
	venues    calendar.Service
	materials inventory.Service
	apps      application.Store
	clock     clock.Clock
}

// NewService creates a new stats service instance.
func NewService(venues calendar.Service, materials inventory.Service, apps application.Store, clk clock.Clock) Service {
	return &service{venues: venues, materials: materials, apps: apps, clock: clk}
}

func (s *service) Usage(ctx context.Context) (*UsageStats, error) {
	venues, err := s.venues.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	materials, err := s.materials.ListMaterials(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := s.apps.ListApplications(ctx)
	if err != nil {
		return nil, err
	}

	out := &UsageStats{
		TotalVenues:    len(venues),
		TotalMaterials: len(materials),
	}

	today := s.clock.Now().Truncate(24 * time.Hour)
	approvedVenues := make(map[uuid.UUID]bool)
	for _, a := range apps {
		switch a.Status {
		case application.StatusPending:
			out.PendingApplications++
		case application.StatusApproved:
			out.ApprovedApplications++
			approvedVenues[a.VenueID] = true
		}
		if !a.CreatedAt.Before(today) {
			out.TodayApplications++
		}
	}

	var usedCapacity, totalCapacity int
	for _, v := range venues {
		if !v.IsAvailable() {
			continue
		}
		totalCapacity += v.Capacity
		if approvedVenues[v.ID] {
			usedCapacity += v.Capacity
		}
	}
	if totalCapacity > 0 {
		out.VenueUtilization = float64(usedCapacity) / float64(totalCapacity)
	}

	for _, m := range materials {
		if !m.IsAvailable() {
			continue
		}
		out.TotalMaterialStock += m.TotalQuantity
		out.CommittedStock += m.CommittedQuantity
	}
	if out.TotalMaterialStock > 0 {
		out.MaterialUtilization = float64(out.CommittedStock) / float64(out.TotalMaterialStock)
	}

	return out, nil
}

func (s *service) UserSummary(ctx context.Context, userID uuid.UUID) (*UserSummary, error) {
	apps, err := s.apps.ListApplicationsByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &UserSummary{Total: len(apps)}
	for _, a := range apps {
		switch a.Status {
		case application.StatusPending:
			out.Pending++
		case application.StatusApproved:
			out.Approved++
		case application.StatusRejected:
			out.Rejected++
		case application.StatusCancelled:
			out.Cancelled++
		}
	}
	return out, nil
}
