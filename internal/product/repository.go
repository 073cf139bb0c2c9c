package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrProductNotFound is returned when a product record is not found.
var ErrProductNotFound = errors.New("product not found")

// Repository provides CRUD operations on the products table.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Product, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
