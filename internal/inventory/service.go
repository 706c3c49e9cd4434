// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/google/uuid"
)

// MaterialStore is the persistence boundary the ledger operates against.
type MaterialStore interface {
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	SaveMaterial(ctx context.Context, m *Material) error
	ListMaterials(ctx context.Context) ([]*Material, error)
	GetCommitment(ctx context.Context, applicationID, materialID uuid.UUID) (*Commitment, error)
	CommitmentsByApplication(ctx context.Context, applicationID uuid.UUID) ([]Commitment, error)
	SaveCommitment(ctx context.Context, c Commitment) error
	DeleteCommitment(ctx context.Context, applicationID, materialID uuid.UUID) error
}

// Service defines the interface for the inventory ledger.
type Service interface {
	AddMaterial(ctx context.Context, in AddMaterialInput) (*Material, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	ListMaterials(ctx context.Context) ([]*Material, error)
	UpdateMaterial(ctx context.Context, id uuid.UUID, in UpdateMaterialInput) (*Material, error)
	RemoveMaterial(ctx context.Context, id uuid.UUID) error

	// CheckAvailability reports whether quantity can currently be reserved.
	// Pure read, no side effect.
	CheckAvailability(ctx context.Context, materialID uuid.UUID, quantity int) (bool, error)
	// Reserve commits quantity for an application.
	Reserve(ctx context.Context, applicationID, materialID uuid.UUID, quantity int) error
	// Release returns a single application's commitment on one material.
	// Releasing an application that holds no commitment is a no-op.
	Release(ctx context.Context, applicationID, materialID uuid.UUID) error
	// ReleaseAll returns every commitment held by an application.
	ReleaseAll(ctx context.Context, applicationID uuid.UUID) error
}

// AddMaterialInput carries the fields needed to register a material.
type AddMaterialInput struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	Unit          string `json:"unit"`
	Description   string `json:"description"`
	TotalQuantity int    `json:"total_quantity"`
}

// UpdateMaterialInput updates descriptive fields; zero values are ignored.
type UpdateMaterialInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	Status      string `json:"status"`
}
