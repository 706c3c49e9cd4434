// internal/calendar/implementation.go
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"venuehub/internal/clock"
)

// service implements the Service interface.
type service struct {
	venues    VenueStore
	intervals IntervalStore
	clock     clock.Clock
}

// NewService creates a new calendar service instance.
func NewService(venues VenueStore, intervals IntervalStore, clk clock.Clock) Service {
	return &service{venues: venues, intervals: intervals, clock: clk}
}

func (s *service) AddVenue(ctx context.Context, in AddVenueInput) (*Venue, error) {
	now := s.clock.Now()
	v := &Venue{
		ID:          uuid.New(),
		Name:        in.Name,
		Location:    in.Location,
		Capacity:    in.Capacity,
		Description: in.Description,
		Equipment:   in.Equipment,
		Status:      StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.venues.SaveVenue(ctx, v); err != nil {
		return nil, fmt.Errorf("save venue: %w", err)
	}
	return v, nil
}

func (s *service) GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	return s.venues.GetVenue(ctx, id)
}

func (s *service) ListVenues(ctx context.Context) ([]*Venue, error) {
	return s.venues.ListVenues(ctx)
}

func (s *service) UpdateVenue(ctx context.Context, id uuid.UUID, in UpdateVenueInput) (*Venue, error) {
	v, err := s.venues.GetVenue(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		v.Name = in.Name
	}
	if in.Location != "" {
		v.Location = in.Location
	}
	if in.Capacity > 0 {
		v.Capacity = in.Capacity
	}
	if in.Description != "" {
		v.Description = in.Description
	}
	if in.Equipment != nil {
		v.Equipment = in.Equipment
	}
	v.UpdatedAt = s.clock.Now()
	if err := s.venues.SaveVenue(ctx, v); err != nil {
		return nil, fmt.Errorf("save venue: %w", err)
	}
	return v, nil
}

func (s *service) SetVenueStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != StatusAvailable && status != StatusUnavailable && status != StatusMaintenance {
		return fmt.Errorf("unknown venue status %q", status)
	}
	v, err := s.venues.GetVenue(ctx, id)
	if err != nil {
		return err
	}
	v.Status = status
	v.UpdatedAt = s.clock.Now()
	if err := s.venues.SaveVenue(ctx, v); err != nil {
		return fmt.Errorf("save venue: %w", err)
	}
	return nil
}

// AvailableVenues lists available venues with no committed interval
// overlapping [start, end).
func (s *service) AvailableVenues(ctx context.Context, start, end time.Time) ([]*Venue, error) {
	if !start.Before(end) {
		return nil, ErrInvalidInterval
	}
	venues, err := s.venues.ListVenues(ctx)
	if err != nil {
		return nil, err
	}
	var free []*Venue
	for _, v := range venues {
		if !v.IsAvailable() {
			continue
		}
		conflict, err := s.CheckConflict(ctx, v.ID, start, end, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if !conflict {
			free = append(free, v)
		}
	}
	return free, nil
}

func (s *service) CheckConflict(ctx context.Context, venueID uuid.UUID, start, end time.Time, excludeApplicationID uuid.UUID) (bool, error) {
	if !start.Before(end) {
		return false, ErrInvalidInterval
	}
	intervals, err := s.intervals.IntervalsByVenue(ctx, venueID)
	if err != nil {
		return false, err
	}
	for _, iv := range intervals {
		if iv.ApplicationID == excludeApplicationID {
			continue
		}
		if iv.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) Commit(ctx context.Context, venueID, applicationID uuid.UUID, start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidInterval
	}
	v, err := s.venues.GetVenue(ctx, venueID)
	if err != nil {
		return err
	}
	if !v.IsAvailable() {
		return ErrVenueUnavailable
	}
	conflict, err := s.CheckConflict(ctx, venueID, start, end, applicationID)
	if err != nil {
		return err
	}
	if conflict {
		return fmt.Errorf("venue %s [%s, %s): %w", v.Name,
			start.Format(time.RFC3339), end.Format(time.RFC3339), ErrTimeConflict)
	}
	iv := Interval{VenueID: venueID, ApplicationID: applicationID, Start: start, End: end}
	if err := s.intervals.SaveInterval(ctx, iv); err != nil {
		return fmt.Errorf("save interval: %w", err)
	}
	return nil
}

func (s *service) Release(ctx context.Context, venueID, applicationID uuid.UUID) error {
	if err := s.intervals.DeleteInterval(ctx, venueID, applicationID); err != nil {
		return fmt.Errorf("delete interval: %w", err)
	}
	return nil
}
