// internal/allocation/policy.go
package allocation

import (
	"venuehub/internal/application"
	"venuehub/internal/identity"
)

// Role policy for lifecycle events, checked before any state mutation:
// approve/reject require a review-capable role; cancel is open to the
// original requester and admins.

func canReview(p identity.Principal) bool {
	return p.Role.CanReview()
}

func canCancel(p identity.Principal, a *application.Application) bool {
	return p.Role == identity.RoleAdmin || p.ID == a.RequesterID
}
