// Package rules implements the conflict-detection and allocation-validation
// engine: stateless decision functions over candidate rows and the competing
// rows fetched by the caller. Functions either return nil (allow) or a typed
// *apperror.Error describing the specific violation. No side effects.
package rules

import (
	"time"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

// Violation codes carried on rejections.
const (
	CodeInvalidTimeRange  = "invalid_time_range"
	CodeCapacityExceeded  = "capacity_exceeded"
	CodeDoubleBooking     = "double_booking"
	CodeResourceScope     = "resource_scope"
	CodeExclusiveConflict = "exclusive_conflict"
	CodeShareableCapacity = "shareable_capacity"
	CodeQuantityRequired  = "quantity_required"
	CodeInsufficientStock = "insufficient_quantity"
	CodeParentWindow      = "parent_window"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Back-to-back intervals (aEnd == bStart) do not
// overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// EventsOverlap reports whether two events' time windows overlap.
func EventsOverlap(a, b *models.Event) bool {
	return Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
}

// ValidateEventTimes rejects windows whose end is not strictly after start.
func ValidateEventTimes(start, end time.Time) error {
	if !end.After(start) {
		return apperror.InvalidRequest(CodeInvalidTimeRange, "end time must be after start time")
	}
	return nil
}

// CheckCapacity rejects a registration candidate when the event is full.
func CheckCapacity(event *models.Event, registrationCount int) error {
	if registrationCount >= event.Capacity {
		return apperror.Conflict(CodeCapacityExceeded,
			"event %q is at full capacity (%d)", event.Name, event.Capacity)
	}
	return nil
}

// CheckDoubleBooking rejects a user registration candidate when any event the
// user is already registered for overlaps the candidate event. Only member
// registrations are checked; external emails carry no cross-event identity.
func CheckDoubleBooking(candidate *models.Event, registered []models.Event) error {
	for i := range registered {
		other := &registered[i]
		if other.ID == candidate.ID {
			continue
		}
		if EventsOverlap(candidate, other) {
			return apperror.Conflict(CodeDoubleBooking,
				"user is already registered for overlapping event %q (%s - %s)",
				other.Name, other.StartTime.Format(time.RFC3339), other.EndTime.Format(time.RFC3339))
		}
	}
	return nil
}

// CheckResourceScope rejects an allocation candidate unless the resource is
// global or owned by the event's organization.
func CheckResourceScope(event *models.Event, resource *models.Resource) error {
	if resource.IsGlobal {
		return nil
	}
	if resource.OrganizationID == nil || *resource.OrganizationID != event.OrganizationID {
		return apperror.InvalidRequest(CodeResourceScope,
			"resource %q does not belong to the event organization", resource.Name)
	}
	return nil
}

// AllocatedEvent pairs an existing allocation of a resource with the event it
// is allocated to, as fetched by the caller.
type AllocatedEvent struct {
	Allocation models.Allocation
	Event      models.Event
}

// ValidateAllocation dispatches on the resource type and rejects candidates
// that would break exclusivity, shareable concurrency or consumable quantity
// rules. existing holds all current allocations of the resource with their
// events.
func ValidateAllocation(event *models.Event, resource *models.Resource, quantityUsed *int, existing []AllocatedEvent) error {
	switch resource.Type {
	case models.ResourceExclusive:
		return validateExclusive(event, resource, existing)
	case models.ResourceShareable:
		return validateShareable(event, resource, existing)
	case models.ResourceConsumable:
		return validateConsumable(resource, quantityUsed, existing)
	}
	return apperror.InvalidRequest("resource_type", "unknown resource type %q", resource.Type)
}

func validateExclusive(event *models.Event, resource *models.Resource, existing []AllocatedEvent) error {
	for i := range existing {
		other := &existing[i].Event
		if EventsOverlap(event, other) {
			return apperror.Conflict(CodeExclusiveConflict,
				"exclusive resource %q is already allocated to %q during this time", resource.Name, other.Name)
		}
	}
	return nil
}

func validateShareable(event *models.Event, resource *models.Resource, existing []AllocatedEvent) error {
	concurrent := 0
	for i := range existing {
		if EventsOverlap(event, &existing[i].Event) {
			concurrent++
		}
	}
	max := 0
	if resource.MaxConcurrentUsage != nil {
		max = *resource.MaxConcurrentUsage
	}
	if concurrent+1 > max {
		return apperror.Conflict(CodeShareableCapacity,
			"shareable resource %q has reached max concurrent usage (%d)", resource.Name, max)
	}
	return nil
}

func validateConsumable(resource *models.Resource, quantityUsed *int, existing []AllocatedEvent) error {
	if quantityUsed == nil || *quantityUsed <= 0 {
		return apperror.InvalidRequest(CodeQuantityRequired,
			"quantity must be specified for consumable resources")
	}
	totalUsed := 0
	for i := range existing {
		if q := existing[i].Allocation.QuantityUsed; q != nil {
			totalUsed += *q
		}
	}
	available := 0
	if resource.AvailableQuantity != nil {
		available = *resource.AvailableQuantity
	}
	if totalUsed+*quantityUsed > available {
		return apperror.Conflict(CodeInsufficientStock,
			"insufficient quantity for %q: available %d, requested %d", resource.Name, available-totalUsed, *quantityUsed)
	}
	return nil
}

// CheckParentWindow rejects a child window not fully nested in the parent's
// window. Boundaries are inclusive: a child sharing the parent's start or end
// is legal.
func CheckParentWindow(parent *models.Event, childStart, childEnd time.Time) error {
	if childStart.Before(parent.StartTime) || childEnd.After(parent.EndTime) {
		return apperror.InvalidRequest(CodeParentWindow,
			"child event must be fully contained within parent event %q (%s - %s)",
			parent.Name, parent.StartTime.Format(time.RFC3339), parent.EndTime.Format(time.RFC3339))
	}
	return nil
}
