package reports

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yug49/multi-tenant-event-booking-system/internal/models"
	"github.com/yug49/multi-tenant-event-booking-system/internal/rules"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.June, 10, hour, min, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

type builder struct {
	d Dataset
}

func (b *builder) org(name string) uuid.UUID {
	id := uuid.New()
	b.d.Organizations = append(b.d.Organizations, models.Organization{ID: id, Name: name})
	return id
}

func (b *builder) user(orgID uuid.UUID, name, email string) uuid.UUID {
	id := uuid.New()
	b.d.Users = append(b.d.Users, models.User{ID: id, Name: name, Email: email, OrganizationID: orgID})
	return id
}

func (b *builder) event(orgID uuid.UUID, name string, start, end time.Time) uuid.UUID {
	id := uuid.New()
	b.d.Events = append(b.d.Events, models.Event{
		ID: id, Name: name, StartTime: start, EndTime: end, Capacity: 100, OrganizationID: orgID,
	})
	return id
}

func (b *builder) childEvent(orgID, parentID uuid.UUID, name string, start, end time.Time) uuid.UUID {
	id := uuid.New()
	b.d.Events = append(b.d.Events, models.Event{
		ID: id, Name: name, StartTime: start, EndTime: end, Capacity: 100,
		OrganizationID: orgID, ParentEventID: &parentID,
	})
	return id
}

func (b *builder) resource(r models.Resource) uuid.UUID {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	b.d.Resources = append(b.d.Resources, r)
	return r.ID
}

func (b *builder) register(eventID, userID uuid.UUID) {
	b.d.Registrations = append(b.d.Registrations, models.Registration{
		ID: uuid.New(), EventID: eventID, UserID: &userID,
	})
}

func (b *builder) registerExternal(eventID uuid.UUID, email string) {
	b.d.Registrations = append(b.d.Registrations, models.Registration{
		ID: uuid.New(), EventID: eventID, ExternalEmail: &email,
	})
}

func (b *builder) allocate(eventID, resourceID uuid.UUID, quantity *int) {
	b.d.Allocations = append(b.d.Allocations, models.Allocation{
		ID: uuid.New(), EventID: eventID, ResourceID: resourceID, QuantityUsed: quantity,
	})
}

func TestDoubleBookedUsers(t *testing.T) {
	var b builder
	org := b.org("acme")
	alice := b.user(org, "alice", "alice@acme.test")
	bob := b.user(org, "bob", "bob@acme.test")

	morning := b.event(org, "morning", at(9, 0), at(11, 0))
	overlap := b.event(org, "overlap", at(10, 0), at(12, 0))
	afternoon := b.event(org, "afternoon", at(11, 0), at(13, 0))

	// alice holds two overlapping registrations, bob's are back-to-back.
	b.register(morning, alice)
	b.register(overlap, alice)
	b.register(morning, bob)
	b.register(afternoon, bob)

	rows := DoubleBookedUsers(&b.d)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].UserName != "alice" {
		t.Fatalf("user = %s, want alice", rows[0].UserName)
	}
	want1, want2 := morning, overlap
	if want2.String() < want1.String() {
		want1, want2 = want2, want1
	}
	if rows[0].Event1.ID != want1 || rows[0].Event2.ID != want2 {
		t.Fatalf("pair not ordered by event id: %s / %s", rows[0].Event1.ID, rows[0].Event2.ID)
	}
}

func TestDoubleBookedUsersOrdering(t *testing.T) {
	var b builder
	org := b.org("acme")
	zoe := b.user(org, "zoe", "zoe@acme.test")
	amy := b.user(org, "amy", "amy@acme.test")

	e1 := b.event(org, "first", at(9, 0), at(11, 0))
	e2 := b.event(org, "second", at(10, 0), at(12, 0))
	for _, u := range []uuid.UUID{zoe, amy} {
		b.register(e1, u)
		b.register(e2, u)
	}

	rows := DoubleBookedUsers(&b.d)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].UserName != "amy" || rows[1].UserName != "zoe" {
		t.Fatalf("rows not ordered by user name: %s, %s", rows[0].UserName, rows[1].UserName)
	}
}

func TestExclusiveConflicts(t *testing.T) {
	var b builder
	org := b.org("acme")
	stage := b.resource(models.Resource{Name: "stage", Type: models.ResourceExclusive, IsGlobal: true})
	hall := b.resource(models.Resource{Name: "hall", Type: models.ResourceExclusive, IsGlobal: true})

	e1 := b.event(org, "keynote", at(9, 0), at(12, 0))
	e2 := b.event(org, "panel", at(11, 0), at(13, 0))
	e3 := b.event(org, "workshop", at(12, 0), at(14, 0))

	b.allocate(e1, stage, nil)
	b.allocate(e2, stage, nil)
	b.allocate(e3, stage, nil) // back-to-back with keynote, overlaps panel
	b.allocate(e1, hall, nil)  // alone on hall

	rows := ExclusiveConflicts(&b.d)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if row.ResourceName != "stage" {
			t.Fatalf("unexpected resource %s", row.ResourceName)
		}
		if !rules.Overlaps(row.Event1.StartTime, row.Event1.EndTime, row.Event2.StartTime, row.Event2.EndTime) {
			t.Fatalf("reported pair does not overlap")
		}
	}
}

// TestShareableReportStricterThanAdmission documents the deliberate gap
// between the admission check (count+1 > max) and the report threshold
// (count >= max): data written out of order can pass every admission check
// and still be flagged retrospectively.
func TestShareableReportStricterThanAdmission(t *testing.T) {
	var b builder
	org := b.org("acme")
	lab := b.resource(models.Resource{
		Name: "lab", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(5),
	})

	// Six events all overlapping 10:00-11:00. Each sees five others.
	var events []uuid.UUID
	for i := 0; i < 6; i++ {
		ev := b.event(org, "session", at(9, i*10), at(11, i*10))
		b.allocate(ev, lab, nil)
		events = append(events, ev)
	}

	rows := ShareableOverAllocations(&b.d)
	if len(rows) != len(events) {
		t.Fatalf("rows = %d, want %d", len(rows), len(events))
	}
	for _, row := range rows {
		if row.ConcurrentCount != 5 {
			t.Fatalf("concurrent count = %d, want 5", row.ConcurrentCount)
		}
	}

	// Five overlapping events stay below the report threshold (each sees
	// four others) even though a sixth admission would have been refused.
	var c builder
	org2 := c.org("acme")
	lab2 := c.resource(models.Resource{
		Name: "lab", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(5),
	})
	for i := 0; i < 5; i++ {
		ev := c.event(org2, "session", at(9, i*10), at(11, i*10))
		c.allocate(ev, lab2, nil)
	}
	if rows := ShareableOverAllocations(&c.d); len(rows) != 0 {
		t.Fatalf("five concurrent events flagged, want none")
	}
}

func TestConsumableOverAllocations(t *testing.T) {
	var b builder
	org := b.org("acme")
	chairs := b.resource(models.Resource{
		Name: "chairs", Type: models.ResourceConsumable, IsGlobal: true, AvailableQuantity: intPtr(100),
	})
	cables := b.resource(models.Resource{
		Name: "cables", Type: models.ResourceConsumable, IsGlobal: true, AvailableQuantity: intPtr(10),
	})
	fine := b.resource(models.Resource{
		Name: "badges", Type: models.ResourceConsumable, IsGlobal: true, AvailableQuantity: intPtr(50),
	})

	e1 := b.event(org, "a", at(9, 0), at(11, 0))
	e2 := b.event(org, "b", at(12, 0), at(14, 0))
	b.allocate(e1, chairs, intPtr(80))
	b.allocate(e2, chairs, intPtr(70)) // total 150, overage 50
	b.allocate(e1, cables, intPtr(15)) // overage 5
	b.allocate(e1, fine, intPtr(50))   // exactly at stock, not over

	rows := ConsumableOverAllocations(&b.d)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ResourceName != "chairs" || rows[0].Overage != 50 {
		t.Fatalf("first row = %s overage %d, want chairs 50", rows[0].ResourceName, rows[0].Overage)
	}
	if rows[1].ResourceName != "cables" || rows[1].Overage != 5 {
		t.Fatalf("second row = %s overage %d, want cables 5", rows[1].ResourceName, rows[1].Overage)
	}
}

func TestPeakConcurrentUsageSweep(t *testing.T) {
	var b builder
	org := b.org("acme")
	lab := b.resource(models.Resource{
		Name: "lab", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(2),
	})
	b.resource(models.Resource{
		Name: "idle", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(3),
	})

	// 9-11, 10-12 and 11-13: one ends at 11:00 exactly as another starts.
	// Starts sort before ends at equal timestamps, so the boundary instant
	// counts all three as concurrent.
	for _, w := range [][2]time.Time{
		{at(9, 0), at(11, 0)},
		{at(10, 0), at(12, 0)},
		{at(11, 0), at(13, 0)},
	} {
		ev := b.event(org, "session", w[0], w[1])
		b.allocate(ev, lab, nil)
	}

	rows := PeakConcurrentUsage(&b.d)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].ResourceName != "lab" {
		t.Fatalf("first row = %s, want lab (highest peak first)", rows[0].ResourceName)
	}
	if rows[0].Peak != 3 {
		t.Fatalf("peak = %d, want 3 (start counted before end at equal time)", rows[0].Peak)
	}
	if rows[0].Status != PeakStatusExceeded {
		t.Fatalf("status = %s, want %s", rows[0].Status, PeakStatusExceeded)
	}
	if rows[1].ResourceName != "idle" || rows[1].Peak != 0 || rows[1].Status != PeakStatusOK {
		t.Fatalf("idle resource row = %+v, want peak 0 OK", rows[1])
	}
}

func TestPeakStatusAtCapacity(t *testing.T) {
	var b builder
	org := b.org("acme")
	lab := b.resource(models.Resource{
		Name: "lab", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(2),
	})
	a := b.event(org, "a", at(9, 0), at(11, 0))
	c := b.event(org, "b", at(10, 0), at(12, 0))
	b.allocate(a, lab, nil)
	b.allocate(c, lab, nil)

	rows := PeakConcurrentUsage(&b.d)
	if len(rows) != 1 || rows[0].Peak != 2 || rows[0].Status != PeakStatusAtCapacity {
		t.Fatalf("rows = %+v, want single AT_CAPACITY row with peak 2", rows)
	}
}

func TestParentChildViolations(t *testing.T) {
	var b builder
	org := b.org("acme")

	// Conference 9:00-17:00 with a session running to 18:00.
	conference := b.event(org, "conference", at(9, 0), at(17, 0))
	b.childEvent(org, conference, "late session", at(15, 0), at(18, 0))
	b.childEvent(org, conference, "fits", at(10, 0), at(12, 0))

	rows := ParentChildViolations(&b.d)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want exactly 1", len(rows))
	}
	row := rows[0]
	if row.ViolationType != ViolationChildEndsAfterParent {
		t.Fatalf("violation = %s, want %s", row.ViolationType, ViolationChildEndsAfterParent)
	}
	if row.ParentID != conference || row.ChildName != "late session" || row.Depth != 1 {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestParentChildViolationsStartBeforeWins(t *testing.T) {
	var b builder
	org := b.org("acme")
	parent := b.event(org, "parent", at(9, 0), at(17, 0))
	// Escapes on both ends; classified by the start first.
	b.childEvent(org, parent, "runaway", at(8, 0), at(18, 0))

	rows := ParentChildViolations(&b.d)
	if len(rows) != 1 || rows[0].ViolationType != ViolationChildStartsBeforeParent {
		t.Fatalf("rows = %+v, want single CHILD_STARTS_BEFORE_PARENT", rows)
	}
}

// TestParentChildRootOnly pins the root-only semantics: a grandchild inside
// its immediate parent but outside the root is flagged against the root, and
// one outside its immediate parent but inside the root is not flagged at all.
func TestParentChildRootOnly(t *testing.T) {
	var b builder
	org := b.org("acme")
	root := b.event(org, "root", at(9, 0), at(17, 0))
	mid := b.childEvent(org, root, "mid", at(10, 0), at(18, 0)) // itself violating
	b.childEvent(org, mid, "inside mid outside root", at(17, 0), at(18, 0))
	b.childEvent(org, mid, "outside mid inside root", at(9, 30), at(10, 30))

	rows := ParentChildViolations(&b.d)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (mid and its first child, both against root)", len(rows))
	}
	for _, row := range rows {
		if row.ParentID != root {
			t.Fatalf("checked against %s, want root only", row.ParentName)
		}
	}
	var deep *ParentChildViolation
	for i := range rows {
		if rows[i].ChildName == "inside mid outside root" {
			deep = &rows[i]
		}
	}
	if deep == nil {
		t.Fatalf("grandchild escaping root not flagged")
	}
	if deep.Depth != 2 {
		t.Fatalf("depth = %d, want 2", deep.Depth)
	}
}

func TestExternalAttendeeThreshold(t *testing.T) {
	var b builder
	org := b.org("acme")
	alice := b.user(org, "alice", "alice@acme.test")

	crowded := b.event(org, "crowded", at(9, 0), at(11, 0))
	quiet := b.event(org, "quiet", at(12, 0), at(14, 0))

	for i := 0; i < 6; i++ {
		b.registerExternal(crowded, string(rune('a'+i))+"@guest.test")
	}
	b.register(crowded, alice)
	for i := 0; i < 5; i++ {
		b.registerExternal(quiet, string(rune('a'+i))+"@guest.test")
	}

	// Default threshold 5: six externals exceed it, five do not.
	rows := ExternalAttendeeViolations(&b.d, -1)
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].EventName != "crowded" || rows[0].ExternalCount != 6 || rows[0].UserCount != 1 || rows[0].TotalRegistrations != 7 {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if rows[0].OrganizationName != "acme" {
		t.Fatalf("organization name = %q, want acme", rows[0].OrganizationName)
	}

	// Explicit threshold 4 pulls in the quiet event too, ordered by count.
	rows = ExternalAttendeeViolations(&b.d, 4)
	if len(rows) != 2 || rows[0].EventName != "crowded" || rows[1].EventName != "quiet" {
		t.Fatalf("rows = %+v, want crowded then quiet", rows)
	}
}

func TestResourceUtilizations(t *testing.T) {
	var b builder
	org := b.org("acme")
	room := b.resource(models.Resource{Name: "room", Type: models.ResourceExclusive, OrganizationID: &org})
	lab := b.resource(models.Resource{Name: "lab", Type: models.ResourceShareable, IsGlobal: true, MaxConcurrentUsage: intPtr(4)})
	b.resource(models.Resource{Name: "idle", Type: models.ResourceConsumable, IsGlobal: true, AvailableQuantity: intPtr(20)})

	// lab: three allocations totalling 7 hours; room: one 2-hour allocation.
	for _, w := range [][2]time.Time{
		{at(9, 0), at(12, 0)},
		{at(12, 0), at(14, 0)},
		{at(14, 0), at(16, 0)},
	} {
		ev := b.event(org, "session", w[0], w[1])
		b.allocate(ev, lab, nil)
	}
	meeting := b.event(org, "meeting", at(9, 0), at(11, 0))
	b.allocate(meeting, room, nil)

	rows := ResourceUtilizations(&b.d)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].ResourceName != "lab" || rows[0].TotalHours != 7 || rows[0].Status != UtilizationActive || rows[0].Capacity != 4 {
		t.Fatalf("lab row = %+v", rows[0])
	}
	if rows[1].ResourceName != "room" || rows[1].TotalHours != 2 || rows[1].Status != UtilizationUnderutilized || rows[1].Capacity != 1 {
		t.Fatalf("room row = %+v", rows[1])
	}
	if rows[1].OrganizationName != "acme" {
		t.Fatalf("room organization = %q, want acme", rows[1].OrganizationName)
	}
	if rows[2].ResourceName != "idle" || rows[2].Status != UtilizationUnused || rows[2].Capacity != 20 {
		t.Fatalf("idle row = %+v", rows[2])
	}
}

func TestReportsEmptyDataset(t *testing.T) {
	d := &Dataset{}
	if rows := DoubleBookedUsers(d); len(rows) != 0 {
		t.Fatalf("double-booked users on empty dataset: %d rows", len(rows))
	}
	if rows := ExclusiveConflicts(d); len(rows) != 0 {
		t.Fatalf("exclusive conflicts on empty dataset: %d rows", len(rows))
	}
	if rows := PeakConcurrentUsage(d); len(rows) != 0 {
		t.Fatalf("peak usage on empty dataset: %d rows", len(rows))
	}
	if rows := ParentChildViolations(d); len(rows) != 0 {
		t.Fatalf("parent/child on empty dataset: %d rows", len(rows))
	}
	v := AllResourceViolations(d)
	if len(v.ShareableViolations)+len(v.ExclusiveViolations)+len(v.ConsumableViolations) != 0 {
		t.Fatalf("resource violations on empty dataset: %+v", v)
	}
}
