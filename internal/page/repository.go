package page

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrPageNotFound is returned when a page record is not found.
var ErrPageNotFound = errors.New("page not found")

// ErrDuplicateSubdomain is returned when a page with the same subdomain
// already exists.
var ErrDuplicateSubdomain = errors.New("subdomain already taken")

// Repository provides CRUD operations on the pages table.
type Repository interface {
	Create(ctx context.Context, p *Page) error
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	// GetBySubdomain resolves a published page by its subdomain label.
	// Draft and archived pages read as absent.
	GetBySubdomain(ctx context.Context, subdomain string) (*Page, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Page, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
