// internal/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for applications.
type Store interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*Application, error)
	SaveApplication(ctx context.Context, a *Application) error
	ListApplications(ctx context.Context) ([]*Application, error)
	ListApplicationsByRequester(ctx context.Context, requesterID uuid.UUID) ([]*Application, error)
	ListApplicationsByStatus(ctx context.Context, status Status) ([]*Application, error)
}

// Service defines the interface for application submission and listing.
// Status transitions that touch resources go through the allocation
// coordinator, not this service.
type Service interface {
	Create(ctx context.Context, requesterID uuid.UUID, in CreateInput) (*Application, error)
	Get(ctx context.Context, id uuid.UUID) (*Application, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*Application, error)
	// ListPending returns applications awaiting review, newest first.
	ListPending(ctx context.Context) ([]*Application, error)
}

// CreateInput carries a new application's fields.
type CreateInput struct {
	ActivityName        string     `json:"activity_name"`
	ActivityDescription string     `json:"activity_description"`
	VenueID             uuid.UUID  `json:"venue_id"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             time.Time  `json:"end_time"`
	Materials           []LineItem `json:"materials"`
}
