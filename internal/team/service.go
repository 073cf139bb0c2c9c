package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// maxCreateAttempts bounds the retry loop when a concurrent creation wins
// the probed slug. The unique index on teams.slug backs the race window.
const maxCreateAttempts = 3

// Service provides team operations that span more than one repository call.
type Service struct {
	repo Repository
}

// NewService creates a new team Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateWithOwner creates a team with a unique slug derived from the
// display name and inserts the creator as its owner. Slug collisions are
// resolved by probing base, base-1, base-2, ... and the insert is retried
// when a concurrent creation takes the probed slug first.
func (s *Service) CreateWithOwner(ctx context.Context, displayName string, ownerID uuid.UUID) (*Team, error) {
	base := Slugify(displayName)

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		slug, err := s.nextFreeSlug(ctx, base)
		if err != nil {
			return nil, err
		}

		t := &Team{DisplayName: displayName, Slug: slug}
		err = s.repo.Create(ctx, t, ownerID)
		if errors.Is(err, ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	return nil, ErrDuplicateSlug
}

// nextFreeSlug probes the store for the first unused slug in the sequence
// base, base-1, base-2, ...
func (s *Service) nextFreeSlug(ctx context.Context, base string) (string, error) {
	slug := base
	for counter := 1; ; counter++ {
		_, err := s.repo.GetBySlug(ctx, slug)
		if errors.Is(err, ErrTeamNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("probing slug: %w", err)
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}
