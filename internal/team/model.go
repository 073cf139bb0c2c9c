package team

import (
	"time"

	"github.com/google/uuid"
)

// Role classifies a user's standing within one team.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether the role is one of the three permitted values.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// Team represents a row in the teams table.
type Team struct {
	ID          uuid.UUID
	DisplayName string
	Slug        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Member represents a row in the team_members table. UserEmail and
// UserDisplayName are denormalized from the users table on list queries.
type Member struct {
	ID              uuid.UUID
	TeamID          uuid.UUID
	UserID          uuid.UUID
	Role            Role
	CreatedAt       time.Time
	UserEmail       string
	UserDisplayName string
}

// UpdateFields holds user-updatable fields on a team record. Nil fields are
// not updated.
type UpdateFields struct {
	DisplayName *string
	Slug        *string
}
