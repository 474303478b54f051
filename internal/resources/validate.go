package resources

import (
	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

// Validate checks the resource invariants before any write: a known type,
// SHAREABLE resources carry maxConcurrentUsage >= 1, CONSUMABLE resources
// carry availableQuantity >= 0, and isGlobal contradicts having an owning
// organization.
func Validate(r *models.Resource) error {
	if !r.Type.Valid() {
		return apperror.InvalidRequest("resource_type", "unknown resource type %q", r.Type)
	}
	if r.Type == models.ResourceShareable {
		if r.MaxConcurrentUsage == nil || *r.MaxConcurrentUsage < 1 {
			return apperror.InvalidRequest("max_concurrent_usage_required",
				"shareable resources must have maxConcurrentUsage >= 1")
		}
	}
	if r.Type == models.ResourceConsumable {
		if r.AvailableQuantity == nil || *r.AvailableQuantity < 0 {
			return apperror.InvalidRequest("available_quantity_required",
				"consumable resources must have availableQuantity >= 0")
		}
	}
	if r.IsGlobal && r.OrganizationID != nil {
		return apperror.InvalidRequest("global_scope", "global resources cannot belong to an organization")
	}
	if !r.IsGlobal && r.OrganizationID == nil {
		return apperror.InvalidRequest("organization_required", "non-global resources must belong to an organization")
	}
	return nil
}
