package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new team together with the creator's owner membership.
// Both rows commit or neither does.
func (r *PostgresRepository) Create(ctx context.Context, t *Team, ownerID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO teams (display_name, slug)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query, t.DisplayName, t.Slug).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)`,
		t.ID, ownerID, RoleOwner)
	if err != nil {
		return fmt.Errorf("inserting owner membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing team creation: %w", err)
	}

	return nil
}

// GetByID retrieves a single team by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Team, error) {
	query := `
		SELECT id, display_name, slug, created_at, updated_at
		FROM teams
		WHERE id = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.DisplayName, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// GetBySlug retrieves a single team by its slug.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Team, error) {
	query := `
		SELECT id, display_name, slug, created_at, updated_at
		FROM teams
		WHERE slug = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, slug).Scan(&t.ID, &t.DisplayName, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team by slug: %w", err)
	}

	return &t, nil
}

// ListByUser retrieves the teams a user belongs to, ordered by creation time.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Team, error) {
	query := `
		SELECT t.id, t.display_name, t.slug, t.created_at, t.updated_at
		FROM teams t
		INNER JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY t.created_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing teams by user: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		err := rows.Scan(&t.ID, &t.DisplayName, &t.Slug, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	if teams == nil {
		teams = []Team{}
	}

	return teams, nil
}

// Update modifies display name and/or slug on a team record.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Team, error) {
	query := `
		UPDATE teams
		SET display_name = COALESCE($2, display_name),
		    slug = COALESCE($3, slug),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, display_name, slug, created_at, updated_at`

	var t Team
	err := r.pool.QueryRow(ctx, query, id, fields.DisplayName, fields.Slug).Scan(
		&t.ID, &t.DisplayName, &t.Slug, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("updating team: %w", err)
	}

	return &t, nil
}

// Delete removes a team and everything it owns: products, pages and
// memberships go in the same transaction as the team row.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range []string{
		`DELETE FROM products WHERE team_id = $1`,
		`DELETE FROM pages WHERE team_id = $1`,
		`DELETE FROM team_members WHERE team_id = $1`,
	} {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("cascading team delete: %w", err)
		}
	}

	result, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrTeamNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing team delete: %w", err)
	}

	return nil
}

// Members retrieves a team's members with user display fields attached,
// ordered by join time.
func (r *PostgresRepository) Members(ctx context.Context, teamID uuid.UUID) ([]Member, error) {
	query := `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.created_at,
		       u.email, u.display_name
		FROM team_members tm
		INNER JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
		ORDER BY tm.created_at ASC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.CreatedAt,
			&m.UserEmail, &m.UserDisplayName)
		if err != nil {
			return nil, fmt.Errorf("scanning member row: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}

	if members == nil {
		members = []Member{}
	}

	return members, nil
}

// AddMember inserts a new membership row. Returns ErrAlreadyMember when the
// (team, user) pair already exists.
func (r *PostgresRepository) AddMember(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query, m.TeamID, m.UserID, m.Role).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyMember
		}
		return fmt.Errorf("inserting team member: %w", err)
	}

	return nil
}

// RemoveMember deletes a membership row. Idempotent: removing an absent
// member is not an error. No last-owner protection is applied.
func (r *PostgresRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	query := `DELETE FROM team_members WHERE team_id = $1 AND user_id = $2`

	if _, err := r.pool.Exec(ctx, query, teamID, userID); err != nil {
		return fmt.Errorf("removing team member: %w", err)
	}
	return nil
}

// SetRole overwrites the role on a membership row. Returns
// ErrMemberNotFound when the target membership does not exist.
func (r *PostgresRepository) SetRole(ctx context.Context, teamID, userID uuid.UUID, role Role) error {
	query := `UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, teamID, userID, role)
	if err != nil {
		return fmt.Errorf("updating member role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// IsMember reports whether the user holds a membership row for the team.
func (r *PostgresRepository) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, teamID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking team membership: %w", err)
	}
	return exists, nil
}
