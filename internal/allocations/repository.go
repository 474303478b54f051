package allocations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
)

const allocationColumns = `id, event_id, resource_id, quantity_used, allocated_at, created_at, updated_at`

// Repository handles allocation persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an allocations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAllocation(row pgx.Row) (*models.Allocation, error) {
	var a models.Allocation
	err := row.Scan(&a.ID, &a.EventID, &a.ResourceID, &a.QuantityUsed, &a.AllocatedAt, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAllocations(rows pgx.Rows) ([]models.Allocation, error) {
	defer rows.Close()
	var list []models.Allocation
	for rows.Next() {
		var a models.Allocation
		if err := rows.Scan(&a.ID, &a.EventID, &a.ResourceID, &a.QuantityUsed, &a.AllocatedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// CreateAllocation inserts an allocation.
func (r *Repository) CreateAllocation(ctx context.Context, a *models.Allocation) error {
	const q = `INSERT INTO resource_allocations (id, event_id, resource_id, quantity_used)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, allocated_at, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, a.EventID, a.ResourceID, a.QuantityUsed).
		Scan(&a.ID, &a.AllocatedAt, &a.CreatedAt, &a.UpdatedAt)
}

// GetAllocation returns an allocation by ID, or nil when absent.
func (r *Repository) GetAllocation(ctx context.Context, id uuid.UUID) (*models.Allocation, error) {
	return scanAllocation(r.pool.QueryRow(ctx, `SELECT `+allocationColumns+` FROM resource_allocations WHERE id = $1`, id))
}

// GetByEventAndResource returns the allocation for (event, resource), or nil.
func (r *Repository) GetByEventAndResource(ctx context.Context, eventID, resourceID uuid.UUID) (*models.Allocation, error) {
	return scanAllocation(r.pool.QueryRow(ctx,
		`SELECT `+allocationColumns+` FROM resource_allocations WHERE event_id = $1 AND resource_id = $2`, eventID, resourceID))
}

// ListByEvent returns an event's allocations, earliest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Allocation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+allocationColumns+` FROM resource_allocations WHERE event_id = $1 ORDER BY allocated_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	return collectAllocations(rows)
}

// ListByResource returns a resource's allocations, earliest first.
func (r *Repository) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.Allocation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+allocationColumns+` FROM resource_allocations WHERE resource_id = $1 ORDER BY allocated_at ASC`, resourceID)
	if err != nil {
		return nil, err
	}
	return collectAllocations(rows)
}

// ListForResourceWithEvents returns all allocations of a resource joined
// with their events, as the conflict rules consume them.
func (r *Repository) ListForResourceWithEvents(ctx context.Context, resourceID uuid.UUID) ([]rules.AllocatedEvent, error) {
	const q = `SELECT a.id, a.event_id, a.resource_id, a.quantity_used, a.allocated_at, a.created_at, a.updated_at,
		e.id, e.name, COALESCE(e.description, ''), e.start_time, e.end_time, e.capacity, e.organization_id, e.parent_event_id, e.created_at, e.updated_at
		FROM resource_allocations a
		INNER JOIN events e ON e.id = a.event_id
		WHERE a.resource_id = $1`
	rows, err := r.pool.Query(ctx, q, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []rules.AllocatedEvent
	for rows.Next() {
		var ae rules.AllocatedEvent
		if err := rows.Scan(
			&ae.Allocation.ID, &ae.Allocation.EventID, &ae.Allocation.ResourceID, &ae.Allocation.QuantityUsed,
			&ae.Allocation.AllocatedAt, &ae.Allocation.CreatedAt, &ae.Allocation.UpdatedAt,
			&ae.Event.ID, &ae.Event.Name, &ae.Event.Description, &ae.Event.StartTime, &ae.Event.EndTime,
			&ae.Event.Capacity, &ae.Event.OrganizationID, &ae.Event.ParentEventID, &ae.Event.CreatedAt, &ae.Event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, ae)
	}
	return list, rows.Err()
}

// DeleteAllocation removes an allocation.
func (r *Repository) DeleteAllocation(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM resource_allocations WHERE id = $1`, id)
	return err
}

// GetEvent returns an event by ID, or nil when absent.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, name, COALESCE(description, ''), start_time, end_time, capacity, organization_id, parent_event_id, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	err := r.pool.QueryRow(ctx, q, id).Scan(&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.OrganizationID, &e.ParentEventID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetResource returns a resource by ID, or nil when absent.
func (r *Repository) GetResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	const q = `SELECT id, name, COALESCE(description, ''), type, organization_id, is_global, max_concurrent_usage, available_quantity, created_at, updated_at
		FROM resources WHERE id = $1`
	var res models.Resource
	err := r.pool.QueryRow(ctx, q, id).Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.OrganizationID,
		&res.IsGlobal, &res.MaxConcurrentUsage, &res.AvailableQuantity, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}
