// internal/allocation/service.go
package allocation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"venuehub/internal/application"
	"venuehub/internal/identity"
)

var (
	// ErrResourceBusy means lock acquisition timed out; retryable.
	ErrResourceBusy = errors.New("resources busy, retry later")
	ErrNotPermitted = errors.New("caller role does not permit this operation")
)

// Coordinator sequences multi-resource transitions (one venue + N materials)
// as a single atomic unit: approving an application either books the venue
// and decrements every material, or changes nothing.
type Coordinator interface {
	Approve(ctx context.Context, p identity.Principal, applicationID uuid.UUID) (*application.Application, error)
	Reject(ctx context.Context, p identity.Principal, applicationID uuid.UUID, reason string) (*application.Application, error)
	Cancel(ctx context.Context, p identity.Principal, applicationID uuid.UUID) (*application.Application, error)
}
