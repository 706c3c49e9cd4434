// internal/identity/service.go
package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserStore is the persistence boundary for accounts.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	SaveUser(ctx context.Context, u *User) error
}

// Service defines the interface for registration and authentication.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	// Authenticate verifies credentials and returns a signed bearer token.
	Authenticate(ctx context.Context, username, password string) (string, *User, error)
	// Verify checks a bearer token and returns the principal it asserts.
	Verify(tokenStr string) (Principal, error)
	// GetUser looks up an account by id.
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
}

// RegisterInput carries a new account's fields.
type RegisterInput struct {
	Username string `json:"username"`
	RealName string `json:"real_name"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
