package rules

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

var base = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func eventAt(startOffset, endOffset time.Duration) *models.Event {
	return &models.Event{
		ID:             uuid.New(),
		Name:           "event",
		StartTime:      base.Add(startOffset),
		EndTime:        base.Add(endOffset),
		Capacity:       10,
		OrganizationID: uuid.New(),
	}
}

func intPtr(n int) *int { return &n }

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Duration
		want                           bool
	}{
		{"identical", 0, time.Hour, 0, time.Hour, true},
		{"contained", 0, 4 * time.Hour, time.Hour, 2 * time.Hour, true},
		{"partial", 0, 2 * time.Hour, time.Hour, 3 * time.Hour, true},
		{"back_to_back", 0, time.Hour, time.Hour, 2 * time.Hour, false},
		{"disjoint", 0, time.Hour, 2 * time.Hour, 3 * time.Hour, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(base.Add(tt.aStart), base.Add(tt.aEnd), base.Add(tt.bStart), base.Add(tt.bEnd))
			if got != tt.want {
				t.Fatalf("Overlaps = %v, want %v", got, tt.want)
			}
			// symmetry
			rev := Overlaps(base.Add(tt.bStart), base.Add(tt.bEnd), base.Add(tt.aStart), base.Add(tt.aEnd))
			if rev != got {
				t.Fatalf("Overlaps is not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	if !Overlaps(base, base.Add(time.Hour), base, base.Add(time.Hour)) {
		t.Fatalf("an interval with positive duration must overlap itself")
	}
}

func TestValidateEventTimes(t *testing.T) {
	if err := ValidateEventTimes(base, base.Add(time.Hour)); err != nil {
		t.Fatalf("valid window rejected: %v", err)
	}
	if err := ValidateEventTimes(base, base); err == nil {
		t.Fatalf("zero-length window accepted")
	} else if apperror.KindOf(err) != apperror.KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", apperror.KindOf(err))
	}
	if err := ValidateEventTimes(base.Add(time.Hour), base); err == nil {
		t.Fatalf("inverted window accepted")
	}
}

func TestCheckCapacity(t *testing.T) {
	e := eventAt(0, time.Hour)
	e.Capacity = 3

	if err := CheckCapacity(e, 2); err != nil {
		t.Fatalf("capacity-1 registrations should admit one more: %v", err)
	}
	err := CheckCapacity(e, 3)
	if err == nil {
		t.Fatalf("full event accepted a registration")
	}
	if apperror.KindOf(err) != apperror.KindConflict || apperror.CodeOf(err) != CodeCapacityExceeded {
		t.Fatalf("got %v/%s, want conflict/%s", apperror.KindOf(err), apperror.CodeOf(err), CodeCapacityExceeded)
	}
	if err := CheckCapacity(e, 4); err == nil {
		t.Fatalf("over-full event accepted a registration")
	}
}

func TestCheckDoubleBooking(t *testing.T) {
	candidate := eventAt(0, 2*time.Hour)

	overlapping := eventAt(time.Hour, 3*time.Hour)
	err := CheckDoubleBooking(candidate, []models.Event{*overlapping})
	if err == nil {
		t.Fatalf("overlapping registration accepted")
	}
	if apperror.CodeOf(err) != CodeDoubleBooking {
		t.Fatalf("code = %s, want %s", apperror.CodeOf(err), CodeDoubleBooking)
	}

	// Half-open boundary: an event starting exactly when the candidate ends
	// is not a double-booking.
	backToBack := eventAt(2*time.Hour, 3*time.Hour)
	if err := CheckDoubleBooking(candidate, []models.Event{*backToBack}); err != nil {
		t.Fatalf("back-to-back events flagged as double-booking: %v", err)
	}

	disjoint := eventAt(5*time.Hour, 6*time.Hour)
	if err := CheckDoubleBooking(candidate, []models.Event{*disjoint}); err != nil {
		t.Fatalf("non-overlapping registration rejected: %v", err)
	}

	if err := CheckDoubleBooking(candidate, nil); err != nil {
		t.Fatalf("empty registration set rejected: %v", err)
	}
}

func TestCheckResourceScope(t *testing.T) {
	event := eventAt(0, time.Hour)
	otherOrg := uuid.New()

	global := &models.Resource{Name: "projector", Type: models.ResourceExclusive, IsGlobal: true}
	if err := CheckResourceScope(event, global); err != nil {
		t.Fatalf("global resource rejected: %v", err)
	}

	owned := &models.Resource{Name: "room", Type: models.ResourceExclusive, OrganizationID: &event.OrganizationID}
	if err := CheckResourceScope(event, owned); err != nil {
		t.Fatalf("same-org resource rejected: %v", err)
	}

	foreign := &models.Resource{Name: "room", Type: models.ResourceExclusive, OrganizationID: &otherOrg}
	err := CheckResourceScope(event, foreign)
	if err == nil {
		t.Fatalf("foreign-org resource accepted")
	}
	if apperror.KindOf(err) != apperror.KindInvalidRequest {
		t.Fatalf("kind = %v, want invalid_request", apperror.KindOf(err))
	}
}

func TestValidateExclusive(t *testing.T) {
	resource := &models.Resource{ID: uuid.New(), Name: "room-a", Type: models.ResourceExclusive, IsGlobal: true}
	first := eventAt(0, 2*time.Hour)
	existing := []AllocatedEvent{{
		Allocation: models.Allocation{ID: uuid.New(), EventID: first.ID, ResourceID: resource.ID},
		Event:      *first,
	}}

	overlapping := eventAt(time.Hour, 3*time.Hour)
	err := ValidateAllocation(overlapping, resource, nil, existing)
	if err == nil {
		t.Fatalf("second overlapping allocation of exclusive resource accepted")
	}
	if apperror.KindOf(err) != apperror.KindConflict || apperror.CodeOf(err) != CodeExclusiveConflict {
		t.Fatalf("got %v/%s, want conflict/%s", apperror.KindOf(err), apperror.CodeOf(err), CodeExclusiveConflict)
	}

	disjoint := eventAt(3*time.Hour, 4*time.Hour)
	if err := ValidateAllocation(disjoint, resource, nil, existing); err != nil {
		t.Fatalf("non-overlapping allocation rejected: %v", err)
	}
}

func TestValidateShareable(t *testing.T) {
	const maxUsage = 2
	resource := &models.Resource{
		ID: uuid.New(), Name: "lab", Type: models.ResourceShareable,
		IsGlobal: true, MaxConcurrentUsage: intPtr(maxUsage),
	}
	candidate := eventAt(0, 4*time.Hour)

	var existing []AllocatedEvent
	for i := 0; i < maxUsage-1; i++ {
		e := eventAt(time.Duration(i)*time.Hour, 4*time.Hour)
		existing = append(existing, AllocatedEvent{
			Allocation: models.Allocation{ID: uuid.New(), EventID: e.ID, ResourceID: resource.ID},
			Event:      *e,
		})
	}

	// N-th concurrent allocation is admitted.
	if err := ValidateAllocation(candidate, resource, nil, existing); err != nil {
		t.Fatalf("allocation within max concurrent usage rejected: %v", err)
	}

	// (N+1)-th is rejected.
	e := eventAt(time.Hour, 3*time.Hour)
	existing = append(existing, AllocatedEvent{
		Allocation: models.Allocation{ID: uuid.New(), EventID: e.ID, ResourceID: resource.ID},
		Event:      *e,
	})
	err := ValidateAllocation(candidate, resource, nil, existing)
	if err == nil {
		t.Fatalf("allocation beyond max concurrent usage accepted")
	}
	if apperror.CodeOf(err) != CodeShareableCapacity {
		t.Fatalf("code = %s, want %s", apperror.CodeOf(err), CodeShareableCapacity)
	}

	// Non-overlapping existing allocations never count.
	disjoint := []AllocatedEvent{}
	for i := 0; i < 5; i++ {
		e := eventAt(time.Duration(10+i)*time.Hour, time.Duration(11+i)*time.Hour)
		disjoint = append(disjoint, AllocatedEvent{Event: *e})
	}
	if err := ValidateAllocation(candidate, resource, nil, disjoint); err != nil {
		t.Fatalf("disjoint allocations counted against concurrency: %v", err)
	}
}

func TestValidateConsumable(t *testing.T) {
	const available = 10
	resource := &models.Resource{
		ID: uuid.New(), Name: "markers", Type: models.ResourceConsumable,
		IsGlobal: true, AvailableQuantity: intPtr(available),
	}
	event := eventAt(0, time.Hour)

	err := ValidateAllocation(event, resource, nil, nil)
	if err == nil {
		t.Fatalf("consumable allocation without quantity accepted")
	}
	if apperror.KindOf(err) != apperror.KindInvalidRequest || apperror.CodeOf(err) != CodeQuantityRequired {
		t.Fatalf("got %v/%s, want invalid_request/%s", apperror.KindOf(err), apperror.CodeOf(err), CodeQuantityRequired)
	}
	if err := ValidateAllocation(event, resource, intPtr(0), nil); err == nil {
		t.Fatalf("zero quantity accepted")
	}
	if err := ValidateAllocation(event, resource, intPtr(-2), nil); err == nil {
		t.Fatalf("negative quantity accepted")
	}

	existing := []AllocatedEvent{
		{Allocation: models.Allocation{QuantityUsed: intPtr(4)}},
		{Allocation: models.Allocation{QuantityUsed: intPtr(3)}},
	}
	// Exactly exhausting the stock succeeds.
	if err := ValidateAllocation(event, resource, intPtr(3), existing); err != nil {
		t.Fatalf("allocation summing to available quantity rejected: %v", err)
	}
	// One over is rejected.
	err = ValidateAllocation(event, resource, intPtr(4), existing)
	if err == nil {
		t.Fatalf("allocation exceeding available quantity accepted")
	}
	if apperror.KindOf(err) != apperror.KindConflict || apperror.CodeOf(err) != CodeInsufficientStock {
		t.Fatalf("got %v/%s, want conflict/%s", apperror.KindOf(err), apperror.CodeOf(err), CodeInsufficientStock)
	}
}

func TestCheckParentWindow(t *testing.T) {
	parent := eventAt(0, 8*time.Hour)

	tests := []struct {
		name       string
		start, end time.Duration
		wantErr    bool
	}{
		{"fully_inside", time.Hour, 2 * time.Hour, false},
		{"exact_bounds", 0, 8 * time.Hour, false},
		{"starts_before", -time.Hour, 2 * time.Hour, true},
		{"ends_after", 6 * time.Hour, 9 * time.Hour, true},
		{"outside_both", -time.Hour, 9 * time.Hour, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckParentWindow(parent, base.Add(tt.start), base.Add(tt.end))
			if tt.wantErr && err == nil {
				t.Fatalf("containment violation accepted")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("contained child rejected: %v", err)
			}
			if err != nil && apperror.CodeOf(err) != CodeParentWindow {
				t.Fatalf("code = %s, want %s", apperror.CodeOf(err), CodeParentWindow)
			}
		})
	}
}
