// internal/inventory/domain.go
package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMaterialNotFound  = errors.New("material not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	// ErrInvalidRelease signals a bookkeeping defect upstream, not a user error.
	ErrInvalidRelease      = errors.New("release would drive committed quantity negative")
	ErrMaterialUnavailable = errors.New("material is not available")
)

// Material statuses.
const (
	StatusAvailable   = "available"
	StatusUnavailable = "unavailable"
)

// Stock status relative to a requested quantity.
const (
	StockSufficient   = "sufficient"
	StockLow          = "low"
	StockInsufficient = "insufficient"
)

// Material is a finite-stock item that applications may borrow.
type Material struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	Unit              string    `json:"unit"`
	Description       string    `json:"description,omitempty"`
	TotalQuantity     int       `json:"total_quantity"`
	CommittedQuantity int       `json:"committed_quantity"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AvailableQuantity is derived, never stored independently.
func (m *Material) AvailableQuantity() int {
	return m.TotalQuantity - m.CommittedQuantity
}

func (m *Material) IsAvailable() bool {
	return m.Status == StatusAvailable
}

// StockStatus classifies the stock level against a requested quantity.
func (m *Material) StockStatus(requested int) string {
	switch {
	case m.AvailableQuantity() >= requested:
		return StockSufficient
	case m.AvailableQuantity() > 0:
		return StockLow
	default:
		return StockInsufficient
	}
}

// Commitment records quantity reserved for one application, keyed by
// application id so compensating releases stay idempotent.
type Commitment struct {
	ApplicationID uuid.UUID `json:"application_id"`
	MaterialID    uuid.UUID `json:"material_id"`
	Quantity      int       `json:"quantity"`
}
