package models

import (
	"time"

	"github.com/google/uuid"
)

// Allocation links one event to one resource, unique per (event, resource).
// QuantityUsed is required and positive for CONSUMABLE resources and unused
// otherwise.
type Allocation struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"event_id"`
	ResourceID   uuid.UUID `json:"resource_id"`
	QuantityUsed *int      `json:"quantity_used,omitempty"`
	AllocatedAt  time.Time `json:"allocated_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
