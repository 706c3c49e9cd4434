// internal/inventory/implementation.go
package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"venuehub/internal/clock"
)

// service implements the Service interface.
type service struct {
	store MaterialStore
	clock clock.Clock
}

// NewService creates a new inventory service instance.
func NewService(store MaterialStore, clk clock.Clock) Service {
	return &service{store: store, clock: clk}
}

// AddMaterial registers a new material with its full quantity uncommitted.
func (s *service) AddMaterial(ctx context.Context, in AddMaterialInput) (*Material, error) {
	if in.TotalQuantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	now := s.clock.Now()
	m := &Material{
		ID:            uuid.New(),
		Name:          in.Name,
		Category:      in.Category,
		Unit:          in.Unit,
		Description:   in.Description,
		TotalQuantity: in.TotalQuantity,
		Status:        StatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("save material: %w", err)
	}
	return m, nil
}

func (s *service) GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error) {
	return s.store.GetMaterial(ctx, id)
}

func (s *service) ListMaterials(ctx context.Context) ([]*Material, error) {
	return s.store.ListMaterials(ctx)
}

// UpdateMaterial changes descriptive fields. Capacity is immutable once set.
func (s *service) UpdateMaterial(ctx context.Context, id uuid.UUID, in UpdateMaterialInput) (*Material, error) {
	m, err := s.store.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		m.Name = in.Name
	}
	if in.Category != "" {
		m.Category = in.Category
	}
	if in.Unit != "" {
		m.Unit = in.Unit
	}
	if in.Description != "" {
		m.Description = in.Description
	}
	if in.Status == StatusAvailable || in.Status == StatusUnavailable {
		m.Status = in.Status
	}
	m.UpdatedAt = s.clock.Now()
	if err := s.store.SaveMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("save material: %w", err)
	}
	return m, nil
}

// RemoveMaterial retires a material so no new reservations can target it.
// Existing commitments stay on the books until released.
func (s *service) RemoveMaterial(ctx context.Context, id uuid.UUID) error {
	m, err := s.store.GetMaterial(ctx, id)
	if err != nil {
		return err
	}
	m.Status = StatusUnavailable
	m.UpdatedAt = s.clock.Now()
	if err := s.store.SaveMaterial(ctx, m); err != nil {
		return fmt.Errorf("save material: %w", err)
	}
	return nil
}

// CheckAvailability reports whether quantity fits within the uncommitted stock.
func (s *service) CheckAvailability(ctx context.Context, materialID uuid.UUID, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, ErrInvalidQuantity
	}
	m, err := s.store.GetMaterial(ctx, materialID)
	if err != nil {
		return false, err
	}
	if !m.IsAvailable() {
		return false, nil
	}
	return quantity <= m.AvailableQuantity(), nil
}

// Reserve commits quantity for an application and records the commitment.
func (s *service) Reserve(ctx context.Context, applicationID, materialID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	m, err := s.store.GetMaterial(ctx, materialID)
	if err != nil {
		return err
	}
	if !m.IsAvailable() {
		return ErrMaterialUnavailable
	}
	if quantity > m.AvailableQuantity() {
		return fmt.Errorf("material %s: %w", m.Name, ErrInsufficientStock)
	}
	m.CommittedQuantity += quantity
	m.UpdatedAt = s.clock.Now()
	if err := s.store.SaveMaterial(ctx, m); err != nil {
		return fmt.Errorf("save material: %w", err)
	}
	c := Commitment{ApplicationID: applicationID, MaterialID: materialID, Quantity: quantity}
	if err := s.store.SaveCommitment(ctx, c); err != nil {
		return fmt.Errorf("save commitment: %w", err)
	}
	return nil
}

// Release returns one commitment. A missing commitment record is a no-op so
// that compensating retries after a crash are safe.
func (s *service) Release(ctx context.Context, applicationID, materialID uuid.UUID) error {
	c, err := s.store.GetCommitment(ctx, applicationID, materialID)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	return s.release(ctx, *c)
}

// ReleaseAll returns every commitment held by an application.
func (s *service) ReleaseAll(ctx context.Context, applicationID uuid.UUID) error {
	commitments, err := s.store.CommitmentsByApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	for _, c := range commitments {
		if err := s.release(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) release(ctx context.Context, c Commitment) error {
	m, err := s.store.GetMaterial(ctx, c.MaterialID)
	if err != nil {
		return err
	}
	if m.CommittedQuantity < c.Quantity {
		return fmt.Errorf("material %s: committed %d, releasing %d: %w",
			m.Name, m.CommittedQuantity, c.Quantity, ErrInvalidRelease)
	}
	m.CommittedQuantity -= c.Quantity
	m.UpdatedAt = s.clock.Now()
	if err := s.store.SaveMaterial(ctx, m); err != nil {
		return fmt.Errorf("save material: %w", err)
	}
	if err := s.store.DeleteCommitment(ctx, c.ApplicationID, c.MaterialID); err != nil {
		return fmt.Errorf("delete commitment: %w", err)
	}
	return nil
}
