package allocations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
	"github.com/yug49/multi-tenant-event-booking-system/pkg/apperror"
)

type fakeStore struct {
	events      map[uuid.UUID]*models.Event
	resources   map[uuid.UUID]*models.Resource
	allocations map[uuid.UUID]*models.Allocation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:      make(map[uuid.UUID]*models.Event),
		resources:   make(map[uuid.UUID]*models.Resource),
		allocations: make(map[uuid.UUID]*models.Allocation),
	}
}

func (f *fakeStore) addEvent(e models.Event) *models.Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	f.events[e.ID] = &e
	return &e
}

func (f *fakeStore) addResource(r models.Resource) *models.Resource {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	f.resources[r.ID] = &r
	return &r
}

func (f *fakeStore) GetEvent(_ context.Context, id uuid.UUID) (*models.Event, error) {
	return f.events[id], nil
}

func (f *fakeStore) GetResource(_ context.Context, id uuid.UUID) (*models.Resource, error) {
	return f.resources[id], nil
}

func (f *fakeStore) GetByEventAndResource(_ context.Context, eventID, resourceID uuid.UUID) (*models.Allocation, error) {
	for _, a := range f.allocations {
		if a.EventID == eventID && a.ResourceID == resourceID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListForResourceWithEvents(_ context.Context, resourceID uuid.UUID) ([]rules.AllocatedEvent, error) {
	var out []rules.AllocatedEvent
	for _, a := range f.allocations {
		if a.ResourceID != resourceID {
			continue
		}
		out = append(out, rules.AllocatedEvent{Allocation: *a, Event: *f.events[a.EventID]})
	}
	return out, nil
}

func (f *fakeStore) CreateAllocation(_ context.Context, a *models.Allocation) error {
	a.ID = uuid.New()
	a.AllocatedAt = time.Now()
	cp := *a
	f.allocations[a.ID] = &cp
	return nil
}

func (f *fakeStore) GetAllocation(_ context.Context, id uuid.UUID) (*models.Allocation, error) {
	return f.allocations[id], nil
}

func (f *fakeStore) ListByEvent(_ context.Context, eventID uuid.UUID) ([]models.Allocation, error) {
	var out []models.Allocation
	for _, a := range f.allocations {
		if a.EventID == eventID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByResource(_ context.Context, resourceID uuid.UUID) ([]models.Allocation, error) {
	var out []models.Allocation
	for _, a := range f.allocations {
		if a.ResourceID == resourceID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteAllocation(_ context.Context, id uuid.UUID) error {
	delete(f.allocations, id)
	return nil
}

func intPtr(v int) *int { return &v }

func at(hour int) time.Time {
	return time.Date(2025, time.June, 10, hour, 0, 0, 0, time.UTC)
}

func testEvent(orgID uuid.UUID, startHour, endHour int) models.Event {
	return models.Event{
		Name:           "event",
		StartTime:      at(startHour),
		EndTime:        at(endHour),
		Capacity:       50,
		OrganizationID: orgID,
	}
}

func TestCreateMissingEventAndResource(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	res := store.addResource(models.Resource{Name: "room", Type: models.ResourceExclusive, IsGlobal: true})

	if _, err := svc.Create(context.Background(), uuid.New(), res.ID, nil); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("missing event: got %v, want not found", err)
	}
	ev := store.addEvent(testEvent(orgID, 9, 11))
	if _, err := svc.Create(context.Background(), ev.ID, uuid.New(), nil); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("missing resource: got %v, want not found", err)
	}
}

func TestCreateScopeRejected(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	ownerOrg := uuid.New()
	otherOrg := uuid.New()
	res := store.addResource(models.Resource{
		Name:           "projector",
		Type:           models.ResourceExclusive,
		OrganizationID: &ownerOrg,
	})
	ev := store.addEvent(testEvent(otherOrg, 9, 11))

	_, err := svc.Create(context.Background(), ev.ID, res.ID, nil)
	if apperror.CodeOf(err) != rules.CodeResourceScope {
		t.Fatalf("foreign-org resource: got %v, want %s", err, rules.CodeResourceScope)
	}

	globalRes := store.addResource(models.Resource{Name: "shared hall", Type: models.ResourceExclusive, IsGlobal: true})
	if _, err := svc.Create(context.Background(), ev.ID, globalRes.ID, nil); err != nil {
		t.Fatalf("global resource: %v", err)
	}
}

func TestCreateDuplicateAllocation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	res := store.addResource(models.Resource{Name: "room", Type: models.ResourceExclusive, IsGlobal: true})
	ev := store.addEvent(testEvent(orgID, 9, 11))

	if _, err := svc.Create(context.Background(), ev.ID, res.ID, nil); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	_, err := svc.Create(context.Background(), ev.ID, res.ID, nil)
	if apperror.CodeOf(err) != "duplicate_allocation" {
		t.Fatalf("duplicate allocation: got %v, want duplicate_allocation", err)
	}
}

func TestCreateExclusiveConflict(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	res := store.addResource(models.Resource{Name: "stage", Type: models.ResourceExclusive, IsGlobal: true})

	first := store.addEvent(testEvent(orgID, 9, 12))
	overlapping := store.addEvent(testEvent(orgID, 11, 14))
	disjoint := store.addEvent(testEvent(orgID, 12, 14))

	if _, err := svc.Create(context.Background(), first.ID, res.ID, nil); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	_, err := svc.Create(context.Background(), overlapping.ID, res.ID, nil)
	if apperror.CodeOf(err) != rules.CodeExclusiveConflict {
		t.Fatalf("overlapping allocation: got %v, want %s", err, rules.CodeExclusiveConflict)
	}
	// Back-to-back windows do not overlap under half-open semantics.
	if _, err := svc.Create(context.Background(), disjoint.ID, res.ID, nil); err != nil {
		t.Fatalf("back-to-back allocation: %v", err)
	}
}

func TestCreateShareableBoundary(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	res := store.addResource(models.Resource{
		Name:               "lab",
		Type:               models.ResourceShareable,
		IsGlobal:           true,
		MaxConcurrentUsage: intPtr(2),
	})

	a := store.addEvent(testEvent(orgID, 9, 12))
	b := store.addEvent(testEvent(orgID, 10, 13))
	c := store.addEvent(testEvent(orgID, 11, 14))
	disjoint := store.addEvent(testEvent(orgID, 14, 16))

	if _, err := svc.Create(context.Background(), a.ID, res.ID, nil); err != nil {
		t.Fatalf("first allocation: %v", err)
	}
	if _, err := svc.Create(context.Background(), b.ID, res.ID, nil); err != nil {
		t.Fatalf("second allocation within limit: %v", err)
	}
	_, err := svc.Create(context.Background(), c.ID, res.ID, nil)
	if apperror.CodeOf(err) != rules.CodeShareableCapacity {
		t.Fatalf("third concurrent allocation: got %v, want %s", err, rules.CodeShareableCapacity)
	}
	// An event outside every existing window never counts toward the limit.
	if _, err := svc.Create(context.Background(), disjoint.ID, res.ID, nil); err != nil {
		t.Fatalf("disjoint allocation: %v", err)
	}
}

func TestCreateConsumableQuantity(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	res := store.addResource(models.Resource{
		Name:              "chairs",
		Type:              models.ResourceConsumable,
		IsGlobal:          true,
		AvailableQuantity: intPtr(100),
	})

	first := store.addEvent(testEvent(orgID, 9, 11))
	second := store.addEvent(testEvent(orgID, 13, 15))

	if _, err := svc.Create(context.Background(), first.ID, res.ID, nil); apperror.CodeOf(err) != rules.CodeQuantityRequired {
		t.Fatalf("missing quantity: got %v, want %s", err, rules.CodeQuantityRequired)
	}
	if _, err := svc.Create(context.Background(), first.ID, res.ID, intPtr(0)); apperror.CodeOf(err) != rules.CodeQuantityRequired {
		t.Fatalf("zero quantity: got %v, want %s", err, rules.CodeQuantityRequired)
	}

	if _, err := svc.Create(context.Background(), first.ID, res.ID, intPtr(60)); err != nil {
		t.Fatalf("first consumable allocation: %v", err)
	}
	if _, err := svc.Create(context.Background(), second.ID, res.ID, intPtr(41)); apperror.CodeOf(err) != rules.CodeInsufficientStock {
		t.Fatalf("over-consuming allocation should fail")
	}
	// Exactly the remaining stock is allowed.
	a, err := svc.Create(context.Background(), second.ID, res.ID, intPtr(40))
	if err != nil {
		t.Fatalf("exact remaining quantity: %v", err)
	}
	if a.QuantityUsed == nil || *a.QuantityUsed != 40 {
		t.Fatalf("quantity used = %v, want 40", a.QuantityUsed)
	}
}

func TestRemoveRestoresConsumedQuantity(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	res := store.addResource(models.Resource{
		Name:              "cables",
		Type:              models.ResourceConsumable,
		IsGlobal:          true,
		AvailableQuantity: intPtr(10),
	})
	first := store.addEvent(testEvent(orgID, 9, 11))
	second := store.addEvent(testEvent(orgID, 13, 15))

	a, err := svc.Create(context.Background(), first.ID, res.ID, intPtr(10))
	if err != nil {
		t.Fatalf("allocate full quantity: %v", err)
	}
	if _, err := svc.Create(context.Background(), second.ID, res.ID, intPtr(1)); apperror.CodeOf(err) != rules.CodeInsufficientStock {
		t.Fatalf("exhausted stock should reject further allocation")
	}
	if err := svc.Remove(context.Background(), a.ID); err != nil {
		t.Fatalf("remove allocation: %v", err)
	}
	if _, err := svc.Create(context.Background(), second.ID, res.ID, intPtr(10)); err != nil {
		t.Fatalf("re-allocate after removal: %v", err)
	}
}

func TestRemoveMissing(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	if err := svc.Remove(context.Background(), uuid.New()); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("remove missing allocation: got %v, want not found", err)
	}
}

func TestListByEventAndResource(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	orgID := uuid.New()
	room := store.addResource(models.Resource{Name: "room", Type: models.ResourceExclusive, IsGlobal: true})
	lab := store.addResource(models.Resource{Name: "lab", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(5)})
	ev := store.addEvent(testEvent(orgID, 9, 11))

	if _, err := svc.Create(context.Background(), ev.ID, room.ID, nil); err != nil {
		t.Fatalf("allocate room: %v", err)
	}
	if _, err := svc.Create(context.Background(), ev.ID, lab.ID, nil); err != nil {
		t.Fatalf("allocate lab: %v", err)
	}

	byEvent, err := svc.ListByEvent(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("list by event: %v", err)
	}
	if len(byEvent) != 2 {
		t.Fatalf("allocations for event = %d, want 2", len(byEvent))
	}
	byResource, err := svc.ListByResource(context.Background(), room.ID)
	if err != nil {
		t.Fatalf("list by resource: %v", err)
	}
	if len(byResource) != 1 {
		t.Fatalf("allocations for resource = %d, want 1", len(byResource))
	}

	if _, err := svc.ListByEvent(context.Background(), uuid.New()); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("list for missing event: got %v, want not found", err)
	}
	if _, err := svc.ListByResource(context.Background(), uuid.New()); apperror.KindOf(err) != apperror.KindNotFound {
		t.Fatalf("list for missing resource: got %v, want not found", err)
	}
}
