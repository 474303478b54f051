package reports

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
)

// Repository loads report datasets from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadDataset reads a snapshot of the tables the reports scan. With an
// organization id, rows are scoped to that tenant; resources additionally
// include globals since any tenant's events may hold them. Reports run over
// the snapshot without further queries.
func (r *Repository) LoadDataset(ctx context.Context, orgID *uuid.UUID) (*Dataset, error) {
	d := &Dataset{}

	if err := r.loadOrganizations(ctx, d, orgID); err != nil {
		return nil, fmt.Errorf("load organizations: %w", err)
	}
	if err := r.loadUsers(ctx, d, orgID); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := r.loadResources(ctx, d, orgID); err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	if err := r.loadEvents(ctx, d, orgID); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if err := r.loadRegistrations(ctx, d, orgID); err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	if err := r.loadAllocations(ctx, d, orgID); err != nil {
		return nil, fmt.Errorf("load allocations: %w", err)
	}
	return d, nil
}

func (r *Repository) loadOrganizations(ctx context.Context, d *Dataset, orgID *uuid.UUID) error {
	q := `SELECT id, name, COALESCE(description, ''), created_at, updated_at FROM organizations`
	args := []any{}
	if orgID != nil {
		q += ` WHERE id = $1`
		args = append(args, *orgID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return err
		}
		d.Organizations = append(d.Organizations, o)
	}
	return rows.Err()
}

func (r *Repository) loadUsers(ctx context.Context, d *Dataset, orgID *uuid.UUID) error {
	q := `SELECT id, email, name, password_hash, organization_id, created_at, updated_at FROM users`
	args := []any{}
	if orgID != nil {
		q += ` WHERE organization_id = $1`
		args = append(args, *orgID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.OrganizationID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		d.Users = append(d.Users, u)
	}
	return rows.Err()
}

func (r *Repository) loadResources(ctx context.Context, d *Dataset, orgID *uuid.UUID) error {
	q := `SELECT id, name, COALESCE(description, ''), type, organization_id, is_global, max_concurrent_usage, available_quantity, created_at, updated_at FROM resources`
	args := []any{}
	if orgID != nil {
		q += ` WHERE organization_id = $1 OR is_global`
		args = append(args, *orgID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.Name, &res.Description, &res.Type, &res.OrganizationID,
			&res.IsGlobal, &res.MaxConcurrentUsage, &res.AvailableQuantity, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return err
		}
		d.Resources = append(d.Resources, res)
	}
	return rows.Err()
}

func (r *Repository) loadEvents(ctx context.Context, d *Dataset, orgID *uuid.UUID) error {
	q := `SELECT id, name, COALESCE(description, ''), start_time, end_time, capacity, organization_id, parent_event_id, created_at, updated_at FROM events`
	args := []any{}
	if orgID != nil {
		q += ` WHERE organization_id = $1`
		args = append(args, *orgID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.StartTime, &e.EndTime, &e.Capacity,
			&e.OrganizationID, &e.ParentEventID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		d.Events = append(d.Events, e)
	}
	return rows.Err()
}

func (r *Repository) loadRegistrations(ctx context.Context, d *Dataset, orgID *uuid.UUID) error {
	q := `SELECT r.id, r.event_id, r.user_id, r.external_email, r.checkin_time, r.registered_at, r.created_at, r.updated_at
		FROM event_registrations r`
	args := []any{}
	if orgID != nil {
		q += ` JOIN events e ON e.id = r.event_id WHERE e.organization_id = $1`
		args = append(args, *orgID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.ExternalEmail,
			&reg.CheckinTime, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return err
		}
		d.Registrations = append(d.Registrations, reg)
	}
	return rows.Err()
}

func (r *Repository) loadAllocations(ctx context.Context, d *Dataset, orgID *uuid.UUID) error {
	q := `SELECT a.id, a.event_id, a.resource_id, a.quantity_used, a.allocated_at, a.created_at, a.updated_at
		FROM resource_allocations a`
	args := []any{}
	if orgID != nil {
		q += ` JOIN events e ON e.id = a.event_id WHERE e.organization_id = $1`
		args = append(args, *orgID)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var a models.Allocation
		if err := rows.Scan(&a.ID, &a.EventID, &a.ResourceID, &a.QuantityUsed,
			&a.AllocatedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return err
		}
		d.Allocations = append(d.Allocations, a)
	}
	return rows.Err()
}
