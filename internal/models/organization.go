package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization represents a tenant. Deleting an organization cascades to its
// users, events and non-global resources.
type Organization struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
