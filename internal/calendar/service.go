// internal/calendar/service.go
package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VenueStore is the persistence boundary for venue records.
type VenueStore interface {
	GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error)
	SaveVenue(ctx context.Context, v *Venue) error
	ListVenues(ctx context.Context) ([]*Venue, error)
}

// IntervalStore is the persistence boundary for committed intervals.
type IntervalStore interface {
	IntervalsByVenue(ctx context.Context, venueID uuid.UUID) ([]Interval, error)
	// IntervalByApplication returns nil when the application holds no interval.
	IntervalByApplication(ctx context.Context, applicationID uuid.UUID) (*Interval, error)
	SaveInterval(ctx context.Context, iv Interval) error
	// DeleteInterval is a no-op when no matching interval exists.
	DeleteInterval(ctx context.Context, venueID, applicationID uuid.UUID) error
}

// Service defines the interface for the venue calendar.
type Service interface {
	AddVenue(ctx context.Context, in AddVenueInput) (*Venue, error)
	GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error)
	ListVenues(ctx context.Context) ([]*Venue, error)
	UpdateVenue(ctx context.Context, id uuid.UUID, in UpdateVenueInput) (*Venue, error)
	SetVenueStatus(ctx context.Context, id uuid.UUID, status string) error
	// AvailableVenues lists venues free for the whole window [start, end).
	AvailableVenues(ctx context.Context, start, end time.Time) ([]*Venue, error)

	// CheckConflict reports whether a committed interval for the venue
	// overlaps [start, end). excludeApplicationID (uuid.Nil for none) lets a
	// re-approval ignore the application's own prior interval.
	CheckConflict(ctx context.Context, venueID uuid.UUID, start, end time.Time, excludeApplicationID uuid.UUID) (bool, error)
	// Commit stores the interval for an application.
	Commit(ctx context.Context, venueID, applicationID uuid.UUID, start, end time.Time) error
	// Release removes the application's interval; releasing a non-existent
	// interval is a no-op.
	Release(ctx context.Context, venueID, applicationID uuid.UUID) error
}

// AddVenueInput carries the fields needed to register a venue.
type AddVenueInput struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Equipment   []string `json:"equipment"`
}

// UpdateVenueInput updates descriptive fields; zero values are ignored.
type UpdateVenueInput struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Equipment   []string `json:"equipment"`
}
