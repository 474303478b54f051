package organizations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
)

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new organization.
func (r *Repository) Create(ctx context.Context, o *models.Organization) error {
	const q = `INSERT INTO organizations (id, name, description)
		VALUES (gen_random_uuid(), $1, NULLIF($2, ''))
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, o.Name, o.Description).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

// GetByID returns an organization by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, COALESCE(description, ''), created_at, updated_at FROM organizations WHERE id = $1`
	var o models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&o.ID, &o.Name, &o.Description, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// List returns all organizations, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(description, ''), created_at, updated_at FROM organizations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Update updates name and description.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, description string) error {
	const q = `UPDATE organizations SET name = COALESCE(NULLIF($1, ''), name), description = COALESCE(NULLIF($2, ''), description), updated_at = NOW() WHERE id = $3`
	_, err := r.pool.Exec(ctx, q, name, description, id)
	return err
}

// Delete removes an organization. Users, events and non-global resources of
// the tenant go with it via ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	return err
}
