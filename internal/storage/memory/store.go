// Package memory provides an in-memory implementation of every store
// interface the domain packages declare. Values are copied in and out so
// services always operate on snapshots and write back explicitly.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"venuehub/internal/application"
	"venuehub/internal/calendar"
	"venuehub/internal/identity"
	"venuehub/internal/inventory"
)

type commitmentKey struct {
	applicationID uuid.UUID
	materialID    uuid.UUID
}

type intervalKey struct {
	venueID       uuid.UUID
	applicationID uuid.UUID
}

// Store holds all state behind one lock. Suitable for the target scale
// (tens of venues/materials, thousands of applications).
type Store struct {
	mu           sync.RWMutex
	materials    map[uuid.UUID]inventory.Material
	commitments  map[commitmentKey]inventory.Commitment
	venues       map[uuid.UUID]calendar.Venue
	intervals    map[intervalKey]calendar.Interval
	applications map[uuid.UUID]application.Application
	users        map[uuid.UUID]identity.User
	usernames    map[string]uuid.UUID
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		materials:    make(map[uuid.UUID]inventory.Material),
		commitments:  make(map[commitmentKey]inventory.Commitment),
		venues:       make(map[uuid.UUID]calendar.Venue),
		intervals:    make(map[intervalKey]calendar.Interval),
		applications: make(map[uuid.UUID]application.Application),
		users:        make(map[uuid.UUID]identity.User),
		usernames:    make(map[string]uuid.UUID),
	}
}

// --- inventory.MaterialStore ---

func (s *Store) GetMaterial(_ context.Context, id uuid.UUID) (*inventory.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.materials[id]
	if !ok {
		return nil, inventory.ErrMaterialNotFound
	}
	copied := m
	return &copied, nil
}

func (s *Store) SaveMaterial(_ context.Context, m *inventory.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials[m.ID] = *m
	return nil
}

func (s *Store) ListMaterials(_ context.Context) ([]*inventory.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*inventory.Material, 0, len(s.materials))
	for _, m := range s.materials {
		copied := m
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) GetCommitment(_ context.Context, applicationID, materialID uuid.UUID) (*inventory.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.commitments[commitmentKey{applicationID, materialID}]
	if !ok {
		return nil, nil
	}
	copied := c
	return &copied, nil
}

func (s *Store) CommitmentsByApplication(_ context.Context, applicationID uuid.UUID) ([]inventory.Commitment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []inventory.Commitment
	for key, c := range s.commitments {
		if key.applicationID == applicationID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) SaveCommitment(_ context.Context, c inventory.Commitment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitments[commitmentKey{c.ApplicationID, c.MaterialID}] = c
	return nil
}

func (s *Store) DeleteCommitment(_ context.Context, applicationID, materialID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.commitments, commitmentKey{applicationID, materialID})
	return nil
}

// --- calendar.VenueStore ---

func (s *Store) GetVenue(_ context.Context, id uuid.UUID) (*calendar.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.venues[id]
	if !ok {
		return nil, calendar.ErrVenueNotFound
	}
	copied := v
	copied.Equipment = append([]string(nil), v.Equipment...)
	return &copied, nil
}

func (s *Store) SaveVenue(_ context.Context, v *calendar.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *v
	copied.Equipment = append([]string(nil), v.Equipment...)
	s.venues[v.ID] = copied
	return nil
}

func (s *Store) ListVenues(_ context.Context) ([]*calendar.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*calendar.Venue, 0, len(s.venues))
	for _, v := range s.venues {
		copied := v
		copied.Equipment = append([]string(nil), v.Equipment...)
		out = append(out, &copied)
	}
	return out, nil
}

// --- calendar.IntervalStore ---

func (s *Store) IntervalsByVenue(_ context.Context, venueID uuid.UUID) ([]calendar.Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []calendar.Interval
	for key, iv := range s.intervals {
		if key.venueID == venueID {
			out = append(out, iv)
		}
	}
	return out, nil
}

func (s *Store) IntervalByApplication(_ context.Context, applicationID uuid.UUID) (*calendar.Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, iv := range s.intervals {
		if key.applicationID == applicationID {
			copied := iv
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *Store) SaveInterval(_ context.Context, iv calendar.Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intervals[intervalKey{iv.VenueID, iv.ApplicationID}] = iv
	return nil
}

func (s *Store) DeleteInterval(_ context.Context, venueID, applicationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.intervals, intervalKey{venueID, applicationID})
	return nil
}

// --- application.Store ---

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, application.ErrApplicationNotFound
	}
	return copyApplication(a), nil
}

func (s *Store) SaveApplication(_ context.Context, a *application.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[a.ID] = *copyApplication(*a)
	return nil
}

func (s *Store) ListApplications(_ context.Context) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*application.Application, 0, len(s.applications))
	for _, a := range s.applications {
		out = append(out, copyApplication(a))
	}
	return out, nil
}

func (s *Store) ListApplicationsByRequester(_ context.Context, requesterID uuid.UUID) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*application.Application
	for _, a := range s.applications {
		if a.RequesterID == requesterID {
			out = append(out, copyApplication(a))
		}
	}
	return out, nil
}

func (s *Store) ListApplicationsByStatus(_ context.Context, status application.Status) ([]*application.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*application.Application
	for _, a := range s.applications {
		if a.Status == status {
			out = append(out, copyApplication(a))
		}
	}
	return out, nil
}

func copyApplication(a application.Application) *application.Application {
	copied := a
	copied.Materials = append([]application.LineItem(nil), a.Materials...)
	if a.ReviewedAt != nil {
		t := *a.ReviewedAt
		copied.ReviewedAt = &t
	}
	return &copied
}

// --- identity.UserStore ---

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	copied := u
	return &copied, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernames[username]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	u := s.users[id]
	copied := u
	return &copied, nil
}

func (s *Store) SaveUser(_ context.Context, u *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = *u
	s.usernames[u.Username] = u.ID
	return nil
}
