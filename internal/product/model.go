package product

import (
	"time"

	"github.com/google/uuid"
)

// Statuses a product may hold. Validated at the API boundary.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDraft    = "draft"
)

// Product represents a row in the products table. Optional fields are
// pointers: a nil field is stored as NULL and round-trips as absent.
type Product struct {
	ID          uuid.UUID
	TeamID      uuid.UUID
	Name        string
	Description *string
	Price       *float64
	SKU         *string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields holds user-updatable fields on a product record. Nil fields
// are not updated.
type UpdateFields struct {
	Name        *string
	Description *string
	Price       *float64
	SKU         *string
	Status      *string
}
