// internal/calendar/domain.go
package calendar

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrVenueUnavailable = errors.New("venue is not available")
	ErrInvalidInterval  = errors.New("start time must be before end time")
	ErrTimeConflict     = errors.New("venue already booked for an overlapping interval")
)

// Venue statuses.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
	StatusMaintenance = "maintenance"
)

// Venue is a bookable physical space. The calendar owns it for scheduling;
// descriptive fields belong to the catalog side of this package.
type Venue struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description,omitempty"`
	Equipment   []string  `json:"equipment,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (v *Venue) IsAvailable() bool {
	return v.Status == StatusAvailable
}

// Interval is a committed half-open booking [Start, End) backed by an
// approved application. Touching endpoints do not conflict.
type Interval struct {
	VenueID       uuid.UUID `json:"venue_id"`
	ApplicationID uuid.UUID `json:"application_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
}

// Overlaps reports whether [start, end) intersects this interval.
func (iv Interval) Overlaps(start, end time.Time) bool {
	return iv.Start.Before(end) && start.Before(iv.End)
}
