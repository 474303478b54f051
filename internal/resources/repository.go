package resources

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
)

const resourceColumns = `id, name, COALESCE(description, ''), type, organization_id, is_global, max_concurrent_usage, available_quantity, created_at, updated_at`

// Repository handles resource persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a resources repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	var res models.Resource
	err := row.Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.OrganizationID,
		&res.IsGlobal, &res.MaxConcurrentUsage, &res.AvailableQuantity, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Create inserts a new resource.
func (r *Repository) Create(ctx context.Context, res *models.Resource) error {
	const q = `INSERT INTO resources (id, name, description, type, organization_id, is_global, max_concurrent_usage, available_quantity)
		VALUES (gen_random_uuid(), $1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, res.Name, res.Description, res.Type, res.OrganizationID,
		res.IsGlobal, res.MaxConcurrentUsage, res.AvailableQuantity).
		Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
}

// GetByID returns a resource by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	return scanResource(r.pool.QueryRow(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id))
}

// List returns resources, newest first. With an organization filter it
// returns the organization's own resources plus all global ones.
func (r *Repository) List(ctx context.Context, organizationID *uuid.UUID) ([]models.Resource, error) {
	q := `SELECT ` + resourceColumns + ` FROM resources`
	var args []interface{}
	if organizationID != nil {
		q += ` WHERE organization_id = $1 OR is_global`
		args = append(args, *organizationID)
	}
	rows, err := r.pool.Query(ctx, q+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Resource
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.OrganizationID,
			&res.IsGlobal, &res.MaxConcurrentUsage, &res.AvailableQuantity, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

// Update persists resource field changes.
func (r *Repository) Update(ctx context.Context, res *models.Resource) error {
	const q = `UPDATE resources SET name = $1, description = NULLIF($2, ''), type = $3, organization_id = $4,
		is_global = $5, max_concurrent_usage = $6, available_quantity = $7, updated_at = NOW() WHERE id = $8`
	_, err := r.pool.Exec(ctx, q, res.Name, res.Description, res.Type, res.OrganizationID,
		res.IsGlobal, res.MaxConcurrentUsage, res.AvailableQuantity, res.ID)
	return err
}

// Delete removes a resource. Its allocations go with it via cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	return err
}
