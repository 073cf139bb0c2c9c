package page

import (
	"time"

	"github.com/google/uuid"
)

// Statuses a page may hold. Only published pages are served on subdomains.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Visibility values. Private pages require team membership to view.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Page represents a row in the pages table. Optional fields are pointers:
// a nil field is stored as NULL and round-trips as absent.
type Page struct {
	ID              uuid.UUID
	TeamID          uuid.UUID
	Subdomain       string
	Title           string
	Content         *string
	Status          string
	Visibility      string
	MetaTitle       *string
	MetaDescription *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UpdateFields holds user-updatable fields on a page record. Nil fields are
// not updated. TeamID is deliberately absent: a page cannot move between
// teams.
type UpdateFields struct {
	Subdomain       *string
	Title           *string
	Content         *string
	Status          *string
	Visibility      *string
	MetaTitle       *string
	MetaDescription *string
}
