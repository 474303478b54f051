// Package reports implements the retrospective violation reporting engine:
// whole-dataset scans that surface rule violations already present in stored
// data, regardless of how the data got there. Each report is a pure function
// over a Dataset so the scans are testable without a database.
package reports

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
)

// DefaultExternalThreshold is the external-attendee count above which an
// event is flagged when the caller supplies no threshold.
const DefaultExternalThreshold = 5

// Peak concurrency statuses.
const (
	PeakStatusExceeded   = "EXCEEDED"
	PeakStatusAtCapacity = "AT_CAPACITY"
	PeakStatusOK         = "OK"
)

// Parent/child violation classifications.
const (
	ViolationChildStartsBeforeParent = "CHILD_STARTS_BEFORE_PARENT"
	ViolationChildEndsAfterParent    = "CHILD_ENDS_AFTER_PARENT"
)

// Utilization statuses.
const (
	UtilizationUnused        = "UNUSED"
	UtilizationUnderutilized = "UNDERUTILIZED"
	UtilizationActive        = "ACTIVE"
)

// Dataset is the in-memory snapshot a report run scans. Loaders fill it
// scoped to one organization or to the whole system.
type Dataset struct {
	Organizations []models.Organization
	Users         []models.User
	Resources     []models.Resource
	Events        []models.Event
	Registrations []models.Registration
	Allocations   []models.Allocation
}

func (d *Dataset) eventIndex() map[uuid.UUID]*models.Event {
	idx := make(map[uuid.UUID]*models.Event, len(d.Events))
	for i := range d.Events {
		idx[d.Events[i].ID] = &d.Events[i]
	}
	return idx
}

func (d *Dataset) organizationIndex() map[uuid.UUID]*models.Organization {
	idx := make(map[uuid.UUID]*models.Organization, len(d.Organizations))
	for i := range d.Organizations {
		idx[d.Organizations[i].ID] = &d.Organizations[i]
	}
	return idx
}

// allocationsByResource groups allocations with their events per resource.
func (d *Dataset) allocationsByResource() map[uuid.UUID][]rules.AllocatedEvent {
	events := d.eventIndex()
	out := make(map[uuid.UUID][]rules.AllocatedEvent)
	for _, a := range d.Allocations {
		ev, ok := events[a.EventID]
		if !ok {
			continue
		}
		out[a.ResourceID] = append(out[a.ResourceID], rules.AllocatedEvent{Allocation: a, Event: *ev})
	}
	return out
}

func lessUUID(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// EventWindow is the event slice every conflict row carries.
type EventWindow struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func window(e models.Event) EventWindow {
	return EventWindow{ID: e.ID, Name: e.Name, StartTime: e.StartTime, EndTime: e.EndTime}
}

// DoubleBookedUser is one user registered for two overlapping events.
type DoubleBookedUser struct {
	UserID    uuid.UUID   `json:"user_id"`
	UserName  string      `json:"user_name"`
	UserEmail string      `json:"user_email"`
	Event1    EventWindow `json:"event1"`
	Event2    EventWindow `json:"event2"`
}

// DoubleBookedUsers scans every pair of distinct overlapping events sharing a
// registered user. Pairs are emitted once, with the lower event id first.
func DoubleBookedUsers(d *Dataset) []DoubleBookedUser {
	events := d.eventIndex()

	byUser := make(map[uuid.UUID][]*models.Event)
	for _, r := range d.Registrations {
		if r.UserID == nil {
			continue
		}
		if ev, ok := events[r.EventID]; ok {
			byUser[*r.UserID] = append(byUser[*r.UserID], ev)
		}
	}

	var out []DoubleBookedUser
	for _, u := range d.Users {
		regs := byUser[u.ID]
		for i := 0; i < len(regs); i++ {
			for j := i + 1; j < len(regs); j++ {
				e1, e2 := regs[i], regs[j]
				if lessUUID(e2.ID, e1.ID) {
					e1, e2 = e2, e1
				}
				if !rules.EventsOverlap(e1, e2) {
					continue
				}
				out = append(out, DoubleBookedUser{
					UserID:    u.ID,
					UserName:  u.Name,
					UserEmail: u.Email,
					Event1:    window(*e1),
					Event2:    window(*e2),
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UserName != out[j].UserName {
			return out[i].UserName < out[j].UserName
		}
		return out[i].Event1.StartTime.Before(out[j].Event1.StartTime)
	})
	return out
}

// ExclusiveConflict is a pair of overlapping events both holding the same
// exclusive resource.
type ExclusiveConflict struct {
	ResourceID   uuid.UUID   `json:"resource_id"`
	ResourceName string      `json:"resource_name"`
	Event1       EventWindow `json:"event1"`
	Event2       EventWindow `json:"event2"`
}

// ExclusiveConflicts reports every overlapping event pair allocated the same
// EXCLUSIVE resource.
func ExclusiveConflicts(d *Dataset) []ExclusiveConflict {
	byResource := d.allocationsByResource()

	var out []ExclusiveConflict
	for _, r := range d.Resources {
		if r.Type != models.ResourceExclusive {
			continue
		}
		allocated := byResource[r.ID]
		for i := 0; i < len(allocated); i++ {
			for j := i + 1; j < len(allocated); j++ {
				e1, e2 := allocated[i].Event, allocated[j].Event
				if lessUUID(e2.ID, e1.ID) {
					e1, e2 = e2, e1
				}
				if !rules.EventsOverlap(&e1, &e2) {
					continue
				}
				out = append(out, ExclusiveConflict{
					ResourceID:   r.ID,
					ResourceName: r.Name,
					Event1:       window(e1),
					Event2:       window(e2),
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ResourceName != out[j].ResourceName {
			return out[i].ResourceName < out[j].ResourceName
		}
		return out[i].Event1.StartTime.Before(out[j].Event1.StartTime)
	})
	return out
}

// ShareableOverAllocation is one event whose concurrent neighbour count on a
// shareable resource meets or exceeds its limit.
type ShareableOverAllocation struct {
	ResourceID         uuid.UUID   `json:"resource_id"`
	ResourceName       string      `json:"resource_name"`
	MaxConcurrentUsage int         `json:"max_concurrent_usage"`
	Event              EventWindow `json:"event"`
	ConcurrentCount    int         `json:"concurrent_count"`
}

// ShareableOverAllocations reports, per SHAREABLE resource and allocated
// event, the count of other allocated events overlapping it, emitting rows
// where the count reaches max_concurrent_usage. This threshold is one
// stricter than the creation-time admission check and is kept that way.
func ShareableOverAllocations(d *Dataset) []ShareableOverAllocation {
	byResource := d.allocationsByResource()

	var out []ShareableOverAllocation
	for _, r := range d.Resources {
		if r.Type != models.ResourceShareable || r.MaxConcurrentUsage == nil {
			continue
		}
		allocated := byResource[r.ID]
		for i := range allocated {
			count := 0
			for j := range allocated {
				if i == j {
					continue
				}
				if rules.EventsOverlap(&allocated[i].Event, &allocated[j].Event) {
					count++
				}
			}
			if count >= *r.MaxConcurrentUsage {
				out = append(out, ShareableOverAllocation{
					ResourceID:         r.ID,
					ResourceName:       r.Name,
					MaxConcurrentUsage: *r.MaxConcurrentUsage,
					Event:              window(allocated[i].Event),
					ConcurrentCount:    count,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ResourceName != out[j].ResourceName {
			return out[i].ResourceName < out[j].ResourceName
		}
		return out[i].Event.StartTime.Before(out[j].Event.StartTime)
	})
	return out
}

// ConsumableOverAllocation is a consumable resource whose summed consumption
// exceeds its stock.
type ConsumableOverAllocation struct {
	ResourceID        uuid.UUID `json:"resource_id"`
	ResourceName      string    `json:"resource_name"`
	AvailableQuantity int       `json:"available_quantity"`
	TotalAllocated    int       `json:"total_allocated"`
	Overage           int       `json:"overage"`
}

// ConsumableOverAllocations sums quantity_used per CONSUMABLE resource and
// reports resources allocated past their available quantity, largest overage
// first.
func ConsumableOverAllocations(d *Dataset) []ConsumableOverAllocation {
	totals := make(map[uuid.UUID]int)
	for _, a := range d.Allocations {
		if a.QuantityUsed != nil {
			totals[a.ResourceID] += *a.QuantityUsed
		}
	}

	var out []ConsumableOverAllocation
	for _, r := range d.Resources {
		if r.Type != models.ResourceConsumable || r.AvailableQuantity == nil {
			continue
		}
		total := totals[r.ID]
		if total > *r.AvailableQuantity {
			out = append(out, ConsumableOverAllocation{
				ResourceID:        r.ID,
				ResourceName:      r.Name,
				AvailableQuantity: *r.AvailableQuantity,
				TotalAllocated:    total,
				Overage:           total - *r.AvailableQuantity,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Overage > out[j].Overage })
	return out
}

// ResourceViolations bundles the three resource constraint reports.
type ResourceViolations struct {
	ShareableViolations  []ShareableOverAllocation  `json:"shareable_violations"`
	ExclusiveViolations  []ExclusiveConflict        `json:"exclusive_violations"`
	ConsumableViolations []ConsumableOverAllocation `json:"consumable_violations"`
}

// AllResourceViolations runs the shareable, exclusive and consumable reports
// over one dataset and returns them as a single payload.
func AllResourceViolations(d *Dataset) ResourceViolations {
	return ResourceViolations{
		ShareableViolations:  ShareableOverAllocations(d),
		ExclusiveViolations:  ExclusiveConflicts(d),
		ConsumableViolations: ConsumableOverAllocations(d),
	}
}

// PeakUsage is the sweep result for one shareable resource.
type PeakUsage struct {
	ResourceID         uuid.UUID `json:"resource_id"`
	ResourceName       string    `json:"resource_name"`
	MaxConcurrentUsage int       `json:"max_concurrent_usage"`
	Peak               int       `json:"peak_concurrent_usage"`
	Status             string    `json:"status"`
}

// PeakConcurrentUsage computes, per SHAREABLE resource, the maximum number of
// simultaneously allocated events via a +1/-1 boundary sweep. At equal
// timestamps starts apply before ends, so back-to-back events count as
// concurrent at the boundary instant. Every shareable resource gets a row,
// allocated or not, ordered by peak descending.
func PeakConcurrentUsage(d *Dataset) []PeakUsage {
	byResource := d.allocationsByResource()

	type boundary struct {
		at    time.Time
		delta int
	}

	var out []PeakUsage
	for _, r := range d.Resources {
		if r.Type != models.ResourceShareable {
			continue
		}
		var bounds []boundary
		for _, ae := range byResource[r.ID] {
			bounds = append(bounds, boundary{at: ae.Event.StartTime, delta: 1})
			bounds = append(bounds, boundary{at: ae.Event.EndTime, delta: -1})
		}
		sort.Slice(bounds, func(i, j int) bool {
			if !bounds[i].at.Equal(bounds[j].at) {
				return bounds[i].at.Before(bounds[j].at)
			}
			return bounds[i].delta > bounds[j].delta
		})

		peak, running := 0, 0
		for _, b := range bounds {
			running += b.delta
			if running > peak {
				peak = running
			}
		}

		max := 0
		if r.MaxConcurrentUsage != nil {
			max = *r.MaxConcurrentUsage
		}
		status := PeakStatusOK
		switch {
		case peak > max:
			status = PeakStatusExceeded
		case peak == max:
			status = PeakStatusAtCapacity
		}
		out = append(out, PeakUsage{
			ResourceID:         r.ID,
			ResourceName:       r.Name,
			MaxConcurrentUsage: max,
			Peak:               peak,
			Status:             status,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Peak > out[j].Peak })
	return out
}

// ParentChildViolation is a descendant event escaping its root ancestor's
// time window.
type ParentChildViolation struct {
	ParentID      uuid.UUID `json:"parent_id"`
	ParentName    string    `json:"parent_name"`
	ParentStart   time.Time `json:"parent_start"`
	ParentEnd     time.Time `json:"parent_end"`
	ChildID       uuid.UUID `json:"child_id"`
	ChildName     string    `json:"child_name"`
	ChildStart    time.Time `json:"child_start"`
	ChildEnd      time.Time `json:"child_end"`
	Depth         int       `json:"hierarchy_depth"`
	ViolationType string    `json:"violation_type"`
}

// ParentChildViolations climbs each descendant's ancestry to its root event
// and flags descendants whose window escapes the root's. Intermediate
// ancestors are deliberately not checked: only the top of the hierarchy
// bounds its subtree.
func ParentChildViolations(d *Dataset) []ParentChildViolation {
	events := d.eventIndex()

	var out []ParentChildViolation
	for i := range d.Events {
		child := &d.Events[i]
		if child.ParentEventID == nil {
			continue
		}

		root := child
		depth := 0
		for root.ParentEventID != nil {
			parent, ok := events[*root.ParentEventID]
			if !ok {
				break
			}
			root = parent
			depth++
			if depth > len(d.Events) { // cycle guard
				break
			}
		}
		if root == child {
			continue
		}

		var violation string
		switch {
		case child.StartTime.Before(root.StartTime):
			violation = ViolationChildStartsBeforeParent
		case child.EndTime.After(root.EndTime):
			violation = ViolationChildEndsAfterParent
		default:
			continue
		}
		out = append(out, ParentChildViolation{
			ParentID:      root.ID,
			ParentName:    root.Name,
			ParentStart:   root.StartTime,
			ParentEnd:     root.EndTime,
			ChildID:       child.ID,
			ChildName:     child.Name,
			ChildStart:    child.StartTime,
			ChildEnd:      child.EndTime,
			Depth:         depth,
			ViolationType: violation,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ParentName != out[j].ParentName {
			return out[i].ParentName < out[j].ParentName
		}
		return out[i].ChildName < out[j].ChildName
	})
	return out
}

// ExternalAttendeeViolation is an event whose external-guest registrations
// exceed the requested threshold.
type ExternalAttendeeViolation struct {
	EventID            uuid.UUID `json:"event_id"`
	EventName          string    `json:"event_name"`
	StartTime          time.Time `json:"start_time"`
	EndTime            time.Time `json:"end_time"`
	Capacity           int       `json:"capacity"`
	OrganizationID     uuid.UUID `json:"organization_id"`
	OrganizationName   string    `json:"organization_name"`
	ExternalCount      int       `json:"external_attendee_count"`
	UserCount          int       `json:"registered_user_count"`
	TotalRegistrations int       `json:"total_registrations"`
}

// ExternalAttendeeViolations counts external vs member registrations per
// event and reports events strictly above the threshold, largest external
// count first. Pass threshold < 0 to use DefaultExternalThreshold.
func ExternalAttendeeViolations(d *Dataset, threshold int) []ExternalAttendeeViolation {
	if threshold < 0 {
		threshold = DefaultExternalThreshold
	}
	orgs := d.organizationIndex()

	type counts struct{ external, users, total int }
	byEvent := make(map[uuid.UUID]*counts)
	for _, r := range d.Registrations {
		c := byEvent[r.EventID]
		if c == nil {
			c = &counts{}
			byEvent[r.EventID] = c
		}
		c.total++
		if r.IsExternal() {
			c.external++
		} else if r.UserID != nil {
			c.users++
		}
	}

	var out []ExternalAttendeeViolation
	for _, e := range d.Events {
		c := byEvent[e.ID]
		if c == nil || c.external <= threshold {
			continue
		}
		orgName := ""
		if org, ok := orgs[e.OrganizationID]; ok {
			orgName = org.Name
		}
		out = append(out, ExternalAttendeeViolation{
			EventID:            e.ID,
			EventName:          e.Name,
			StartTime:          e.StartTime,
			EndTime:            e.EndTime,
			Capacity:           e.Capacity,
			OrganizationID:     e.OrganizationID,
			OrganizationName:   orgName,
			ExternalCount:      c.external,
			UserCount:          c.users,
			TotalRegistrations: c.total,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ExternalCount > out[j].ExternalCount })
	return out
}

// ResourceUtilization aggregates one resource's booked hours and allocation
// count into a coarse status.
type ResourceUtilization struct {
	ResourceID       uuid.UUID  `json:"resource_id"`
	ResourceName     string     `json:"resource_name"`
	ResourceType     string     `json:"resource_type"`
	OrganizationID   *uuid.UUID `json:"organization_id,omitempty"`
	OrganizationName string     `json:"organization_name,omitempty"`
	IsGlobal         bool       `json:"is_global"`
	TotalHours       float64    `json:"total_hours_used"`
	AllocationCount  int        `json:"total_allocations"`
	Capacity         int        `json:"capacity"`
	Status           string     `json:"utilization_status"`
}

// ResourceUtilizations sums allocated event durations per resource. Hours are
// summed across allocations regardless of overlap; the capacity column is the
// type-appropriate limit (1 for exclusive). Resources with no allocations are
// UNUSED, under three are UNDERUTILIZED, else ACTIVE. Ordered by hours
// descending.
func ResourceUtilizations(d *Dataset) []ResourceUtilization {
	byResource := d.allocationsByResource()
	orgs := d.organizationIndex()

	var out []ResourceUtilization
	for _, r := range d.Resources {
		allocated := byResource[r.ID]
		hours := 0.0
		for _, ae := range allocated {
			hours += ae.Event.EndTime.Sub(ae.Event.StartTime).Hours()
		}

		capacity := 1
		switch r.Type {
		case models.ResourceShareable:
			if r.MaxConcurrentUsage != nil {
				capacity = *r.MaxConcurrentUsage
			}
		case models.ResourceConsumable:
			if r.AvailableQuantity != nil {
				capacity = *r.AvailableQuantity
			}
		}

		status := UtilizationActive
		switch {
		case len(allocated) == 0:
			status = UtilizationUnused
		case len(allocated) < 3:
			status = UtilizationUnderutilized
		}

		orgName := ""
		if r.OrganizationID != nil {
			if org, ok := orgs[*r.OrganizationID]; ok {
				orgName = org.Name
			}
		}
		out = append(out, ResourceUtilization{
			ResourceID:       r.ID,
			ResourceName:     r.Name,
			ResourceType:     string(r.Type),
			OrganizationID:   r.OrganizationID,
			OrganizationName: orgName,
			IsGlobal:         r.IsGlobal,
			TotalHours:       hours,
			AllocationCount:  len(allocated),
			Capacity:         capacity,
			Status:           status,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TotalHours > out[j].TotalHours })
	return out
}
