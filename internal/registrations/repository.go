package registrations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
)

const registrationColumns = `id, event_id, user_id, external_email, checkin_time, registered_at, created_at, updated_at`

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.ExternalEmail,
		&reg.CheckinTime, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// CreateRegistration inserts a registration.
func (r *Repository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO event_registrations (id, event_id, user_id, external_email)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, registered_at, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, reg.EventID, reg.UserID, reg.ExternalEmail).
		Scan(&reg.ID, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt)
}

// GetRegistration returns a registration by ID, or nil when absent.
func (r *Repository) GetRegistration(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx, `SELECT `+registrationColumns+` FROM event_registrations WHERE id = $1`, id))
}

// GetByEventAndUser returns the registration for (event, user), or nil.
func (r *Repository) GetByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID))
}

// GetByEventAndEmail returns the registration for (event, external email), or nil.
func (r *Repository) GetByEventAndEmail(ctx context.Context, eventID uuid.UUID, email string) (*models.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id = $1 AND external_email = $2`, eventID, email))
}

// CountByEvent returns the number of registrations for an event.
func (r *Repository) CountByEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

// ListByEvent returns all registrations for an event, earliest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+registrationColumns+` FROM event_registrations WHERE event_id = $1 ORDER BY registered_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		var reg models.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.ExternalEmail,
			&reg.CheckinTime, &reg.RegisteredAt, &reg.CreatedAt, &reg.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}

// ListEventsForUser returns every event the user is registered for. Used by
// the double-booking check.
func (r *Repository) ListEventsForUser(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT e.id, e.name, COALESCE(e.description, ''), e.start_time, e.end_time, e.capacity, e.organization_id, e.parent_event_id, e.created_at, e.updated_at
		FROM events e
		INNER JOIN event_registrations r ON r.event_id = e.id
		WHERE r.user_id = $1`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
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

// SetCheckin records the check-in timestamp, only if not already set.
func (r *Repository) SetCheckin(ctx context.Context, id uuid.UUID, at time.Time) error {
	const q = `UPDATE event_registrations SET checkin_time = $1, updated_at = NOW() WHERE id = $2 AND checkin_time IS NULL`
	_, err := r.pool.Exec(ctx, q, at, id)
	return err
}

// DeleteRegistration removes a registration.
func (r *Repository) DeleteRegistration(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM event_registrations WHERE id = $1`, id)
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

// UserExists reports whether the user row exists.
func (r *Repository) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM users WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
