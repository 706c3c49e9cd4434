// internal/identity/implementation.go
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"venuehub/internal/clock"
)

const tokenTTL = 12 * time.Hour

// service implements the Service interface.
type service struct {
	store       UserStore
	secret      []byte
	clock       clock.Clock
	rateLimiter *rate.Limiter
}

// NewService creates a new identity service instance.
func NewService(store UserStore, secret []byte, clk clock.Clock) Service {
	return &service{
		store:       store,
		secret:      secret,
		clock:       clk,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// Register creates a new account. An empty role defaults to member.
func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	if existing, err := s.store.GetUserByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = RoleMember
	}

	passwordHash, salt, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New(),
		Username:     in.Username,
		RealName:     in.RealName,
		Role:         role,
		PasswordHash: passwordHash,
		Salt:         salt,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// Authenticate verifies credentials and issues a bearer token.
func (s *service) Authenticate(ctx context.Context, username, password string) (string, *User, error) {
	if !s.rateLimiter.Allow() {
		return "", nil, ErrRateLimited
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	ok, err := verifyPassword(password, u.Salt, u.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}
	token, err := signToken(s.secret, u, s.clock.Now(), tokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

func (s *service) Verify(tokenStr string) (Principal, error) {
	return parseToken(s.secret, tokenStr)
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.store.GetUser(ctx, id)
}
