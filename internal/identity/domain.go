// internal/identity/domain.go
package identity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// Role determines which operations a caller may trigger.
type Role string

const (
	RoleMember   Role = "member"
	RoleReviewer Role = "reviewer"
	RoleAdmin    Role = "admin"
)

// CanReview reports whether the role may approve or reject applications.
func (r Role) CanReview() bool {
	return r == RoleReviewer || r == RoleAdmin
}

// Principal is the caller identity asserted by the authentication layer.
// The allocation engine trusts it and only checks role-appropriateness.
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// User is a registered account.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	RealName     string    `json:"real_name,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
