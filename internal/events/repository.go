package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
)

const eventColumns = `id, name, COALESCE(description, ''), start_time, end_time, capacity, organization_id, parent_event_id, created_at, updated_at`

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Capacity,
		&e.OrganizationID, &e.ParentEventID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]models.Event, error) {
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Capacity,
			&e.OrganizationID, &e.ParentEventID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CreateEvent inserts a new event.
func (r *Repository) CreateEvent(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, name, description, start_time, end_time, capacity, organization_id, parent_event_id)
		VALUES (gen_random_uuid(), $1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Name, e.Description, e.StartTime, e.EndTime, e.Capacity,
		e.OrganizationID, e.ParentEventID).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetEvent returns an event by ID, or nil when absent.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// ListFilter narrows ListEvents by organization and time window.
type ListFilter struct {
	OrganizationID *uuid.UUID
	From           *time.Time // events starting at or after
	To             *time.Time // events ending at or before
}

// ListEvents returns events matching the filter, ordered by start time ascending.
func (r *Repository) ListEvents(ctx context.Context, f ListFilter) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	var args []interface{}
	var cond string
	add := func(clause string, arg interface{}) {
		args = append(args, arg)
		if cond == "" {
			cond = " WHERE "
		} else {
			cond += " AND "
		}
		cond += fmt.Sprintf(clause, len(args))
	}
	if f.OrganizationID != nil {
		add("organization_id = $%d", *f.OrganizationID)
	}
	if f.From != nil {
		add("start_time >= $%d", *f.From)
	}
	if f.To != nil {
		add("end_time <= $%d", *f.To)
	}
	rows, err := r.pool.Query(ctx, q+cond+` ORDER BY start_time ASC`, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// ListChildren returns direct children of an event, ordered by start time.
func (r *Repository) ListChildren(ctx context.Context, parentID uuid.UUID) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events WHERE parent_event_id = $1 ORDER BY start_time ASC`, parentID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

// UpdateEvent persists event field changes.
func (r *Repository) UpdateEvent(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET name = $1, description = NULLIF($2, ''), start_time = $3, end_time = $4,
		capacity = $5, parent_event_id = $6, updated_at = NOW() WHERE id = $7`
	_, err := r.pool.Exec(ctx, q, e.Name, e.Description, e.StartTime, e.EndTime, e.Capacity, e.ParentEventID, e.ID)
	return err
}

// DeleteEvent removes an event. Children, registrations and allocations go
// with it via ON DELETE CASCADE.
func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// OrganizationExists reports whether the organization row exists.
func (r *Repository) OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM organizations WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
