package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled happening within an organization. Events form a
// self-referential tree via ParentEventID; deleting a parent cascades to
// children. StartTime is strictly before EndTime.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Capacity       int        `json:"capacity"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	ParentEventID  *uuid.UUID `json:"parent_event_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
