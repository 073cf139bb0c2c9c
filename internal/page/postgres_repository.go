package page

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

const pageColumns = `id, team_id, subdomain, title, content, status, visibility,
	meta_title, meta_description, created_at, updated_at`

func scanPage(row pgx.Row) (*Page, error) {
	var p Page
	err := row.Scan(
		&p.ID, &p.TeamID, &p.Subdomain, &p.Title, &p.Content,
		&p.Status, &p.Visibility, &p.MetaTitle, &p.MetaDescription,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new page record.
func (r *PostgresRepository) Create(ctx context.Context, p *Page) error {
	query := `
		INSERT INTO pages (team_id, subdomain, title, content, status, visibility, meta_title, meta_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		p.TeamID,
		p.Subdomain,
		p.Title,
		p.Content,
		p.Status,
		p.Visibility,
		p.MetaTitle,
		p.MetaDescription,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateSubdomain
		}
		return fmt.Errorf("inserting page: %w", err)
	}

	return nil
}

// GetByID retrieves a single page by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	p, err := scanPage(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("querying page: %w", err)
	}

	return p, nil
}

// GetBySubdomain retrieves the published page for a subdomain label.
func (r *PostgresRepository) GetBySubdomain(ctx context.Context, subdomain string) (*Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE subdomain = $1 AND status = $2`

	p, err := scanPage(r.pool.QueryRow(ctx, query, subdomain, StatusPublished))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("querying page by subdomain: %w", err)
	}

	return p, nil
}

// ListByTeam retrieves a team's pages, newest first.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE team_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		pages = append(pages, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating page rows: %w", err)
	}

	if pages == nil {
		pages = []Page{}
	}

	return pages, nil
}

// Update modifies user-updatable fields on a page record.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Page, error) {
	query := `
		UPDATE pages
		SET subdomain = COALESCE($2, subdomain),
		    title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    status = COALESCE($5, status),
		    visibility = COALESCE($6, visibility),
		    meta_title = COALESCE($7, meta_title),
		    meta_description = COALESCE($8, meta_description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + pageColumns

	p, err := scanPage(r.pool.QueryRow(ctx, query, id,
		fields.Subdomain,
		fields.Title,
		fields.Content,
		fields.Status,
		fields.Visibility,
		fields.MetaTitle,
		fields.MetaDescription,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateSubdomain
		}
		return nil, fmt.Errorf("updating page: %w", err)
	}

	return p, nil
}

// Delete removes a page by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPageNotFound
	}

	return nil
}
