package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType classifies how a resource may be shared between events.
type ResourceType string

const (
	// ResourceExclusive is usable by at most one event at any instant.
	ResourceExclusive ResourceType = "EXCLUSIVE"
	// ResourceShareable is usable by up to MaxConcurrentUsage events concurrently.
	ResourceShareable ResourceType = "SHAREABLE"
	// ResourceConsumable has a finite quantity consumed across all allocations.
	ResourceConsumable ResourceType = "CONSUMABLE"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceExclusive, ResourceShareable, ResourceConsumable:
		return true
	}
	return false
}

// Resource is a bookable room, piece of equipment or consumable stock.
// Global resources are usable by any organization's events; non-global
// resources only by their own organization's events.
type Resource struct {
	ID                 uuid.UUID    `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description,omitempty"`
	Type               ResourceType `json:"type"`
	OrganizationID     *uuid.UUID   `json:"organization_id,omitempty"`
	IsGlobal           bool         `json:"is_global"`
	MaxConcurrentUsage *int         `json:"max_concurrent_usage,omitempty"`
	AvailableQuantity  *int         `json:"available_quantity,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
