package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration records an attendee for an event. Exactly one of UserID and
// ExternalEmail is set: members register by user, guests by email. Unique per
// (event, user) and per (event, external email).
type Registration struct {
	ID            uuid.UUID  `json:"id"`
	EventID       uuid.UUID  `json:"event_id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	ExternalEmail *string    `json:"external_email,omitempty"`
	CheckinTime   *time.Time `json:"checkin_time,omitempty"`
	RegisteredAt  time.Time  `json:"registered_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsExternal reports whether the registration is for an external guest.
func (r *Registration) IsExternal() bool {
	return r.ExternalEmail != nil
}
