package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

// Create inserts a new product record.
func (r *PostgresRepository) Create(ctx context.Context, p *Product) error {
	query := `
		INSERT INTO products (team_id, name, description, price, sku, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		p.TeamID,
		p.Name,
		p.Description,
		p.Price,
		p.SKU,
		p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}

	return nil
}

// GetByID retrieves a single product by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `
		SELECT id, team_id, name, description, price, sku, status, created_at, updated_at
		FROM products
		WHERE id = $1`

	var p Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Description,
		&p.Price, &p.SKU, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("querying product: %w", err)
	}

	return &p, nil
}

// ListByTeam retrieves a team's products, newest first.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]Product, error) {
	query := `
		SELECT id, team_id, name, description, price, sku, status, created_at, updated_at
		FROM products
		WHERE team_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID, &p.TeamID, &p.Name, &p.Description,
			&p.Price, &p.SKU, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	if products == nil {
		products = []Product{}
	}

	return products, nil
}

// Update modifies user-updatable fields on a product record.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Product, error) {
	query := `
		UPDATE products
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    price = COALESCE($4, price),
		    sku = COALESCE($5, sku),
		    status = COALESCE($6, status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, team_id, name, description, price, sku, status, created_at, updated_at`

	var p Product
	err := r.pool.QueryRow(ctx, query, id,
		fields.Name,
		fields.Description,
		fields.Price,
		fields.SKU,
		fields.Status,
	).Scan(
		&p.ID, &p.TeamID, &p.Name, &p.Description,
		&p.Price, &p.SKU, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return &p, nil
}

// Delete removes a product by its UUID.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}
