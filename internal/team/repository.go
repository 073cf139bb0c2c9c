package team

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrDuplicateSlug is returned when a team with the same slug already exists.
var ErrDuplicateSlug = errors.New("team slug already exists")

// ErrMemberNotFound is returned when a membership record is not found.
var ErrMemberNotFound = errors.New("team member not found")

// ErrAlreadyMember is returned when adding a user who is already a member
// of the team.
var ErrAlreadyMember = errors.New("user is already a team member")

// Repository provides operations on the teams and team_members tables.
type Repository interface {
	// Create inserts the team and the creator's owner membership in one
	// transaction; a team never exists without an owner.
	Create(ctx context.Context, t *Team, ownerID uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Team, error)
	GetBySlug(ctx context.Context, slug string) (*Team, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Team, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error)
	// Delete removes the team and cascades to its products, pages and
	// memberships in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error

	Members(ctx context.Context, teamID uuid.UUID) ([]Member, error)
	AddMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
	SetRole(ctx context.Context, teamID, userID uuid.UUID, role Role) error
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
}
