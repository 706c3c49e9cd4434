// internal/application/domain.go
package application

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidTransition   = errors.New("invalid application status transition")
	ErrNoMaterials         = errors.New("application must request at least one material")
	ErrInvalidQuantity     = errors.New("material quantity must be a positive integer")
	ErrDuplicateMaterial   = errors.New("material listed more than once")
	ErrPastStartTime       = errors.New("start time must be in the future")
)

// Status is an application's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CanTransition reports whether from → to is a legal move.
// pending → approved|rejected|cancelled; approved → cancelled.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCancelled
	default:
		return false
	}
}

// LineItem is one requested material quantity.
type LineItem struct {
	MaterialID uuid.UUID `json:"material_id"`
	Quantity   int       `json:"quantity"`
}

// Application is a request to use a venue plus materials for an activity.
// The lifecycle package owns its status; the ledger and calendar hold only
// commitments keyed by its id.
type Application struct {
	ID                  uuid.UUID  `json:"id"`
	RequesterID         uuid.UUID  `json:"requester_id"`
	ActivityName        string     `json:"activity_name"`
	ActivityDescription string     `json:"activity_description,omitempty"`
	VenueID             uuid.UUID  `json:"venue_id"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             time.Time  `json:"end_time"`
	Materials           []LineItem `json:"materials"`
	Status              Status     `json:"status"`
	RejectionReason     string     `json:"rejection_reason,omitempty"`
	ReviewerID          uuid.UUID  `json:"reviewer_id,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	ReviewedAt          *time.Time `json:"reviewed_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Approve moves pending → approved.
func (a *Application) Approve(reviewerID uuid.UUID, now time.Time) error {
	if !CanTransition(a.Status, StatusApproved) {
		return transitionErr(a.Status, StatusApproved)
	}
	a.Status = StatusApproved
	a.ReviewerID = reviewerID
	a.ReviewedAt = &now
	a.UpdatedAt = now
	return nil
}

// Reject moves pending → rejected, recording the reason.
func (a *Application) Reject(reviewerID uuid.UUID, reason string, now time.Time) error {
	if !CanTransition(a.Status, StatusRejected) {
		return transitionErr(a.Status, StatusRejected)
	}
	a.Status = StatusRejected
	a.ReviewerID = reviewerID
	a.RejectionReason = reason
	a.ReviewedAt = &now
	a.UpdatedAt = now
	return nil
}

// Cancel moves pending or approved → cancelled.
func (a *Application) Cancel(now time.Time) error {
	if !CanTransition(a.Status, StatusCancelled) {
		return transitionErr(a.Status, StatusCancelled)
	}
	a.Status = StatusCancelled
	a.UpdatedAt = now
	return nil
}

func transitionErr(from, to Status) error {
	return &TransitionError{From: from, To: to}
}

// TransitionError reports an illegal state-machine move.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return "cannot move application from " + string(e.From) + " to " + string(e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
