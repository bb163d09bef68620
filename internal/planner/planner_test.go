package planner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// setupPlanner builds a planner over a mock backend seeded with
// "Computer Lab 2" (19 computers, 5 seats) and class "11 NM C"
// (3 students, 2 groups), then selects both.
func setupPlanner(t *testing.T) (*Planner, *mockBackend, *mockConfirmer, *mockNotifier) {
	t.Helper()
	backend := newMockBackend()

	lab := Lab{ID: 2, Name: "Computer Lab 2", Code: "CL2", ComputerCount: 19, SeatCount: 5}
	detail := LabDetail{Lab: lab}
	for i := uint32(1); i <= 19; i++ {
		detail.Computers = append(detail.Computers, Computer{
			ID:           uint64(100 + i),
			LabID:        lab.ID,
			Name:         fmt.Sprintf("CL2-PC-%03d", i),
			SeqNumber:    i,
			IsFunctional: true,
		})
	}
	for i := uint32(1); i <= 5; i++ {
		detail.Seats = append(detail.Seats, Seat{
			ID:          uint64(200 + i),
			LabID:       lab.ID,
			SeqNumber:   i,
			IsAvailable: true,
		})
	}
	backend.labs[lab.ID] = detail

	students := []Student{
		{ID: 301, FullName: "Aicha Benali"},
		{ID: 302, FullName: "Karim Haddad"},
		{ID: 303, FullName: "Lina Mansour"},
	}
	backend.classes = []ClassSummary{{ID: 7, Name: "11 NM C", GroupCount: 2, StudentCount: 3}}
	backend.rosters[7] = Roster{
		Students: students,
		Groups: []Group{
			{ID: 401, ClassID: 7, Name: "Group A", MaxMembers: 4},
			{ID: 402, ClassID: 7, Name: "Group B", MaxMembers: 4},
		},
	}
	backend.enrolled[7] = students

	confirmer := &mockConfirmer{answer: true}
	notifier := &mockNotifier{}
	p := New(backend, backend, backend, backend, confirmer, notifier)

	ctx := context.Background()
	if err := p.SelectLab(ctx, 2); err != nil {
		t.Fatalf("SelectLab: %v", err)
	}
	if err := p.SelectClass(ctx, 7); err != nil {
		t.Fatalf("SelectClass: %v", err)
	}
	return p, backend, confirmer, notifier
}

func TestResolveIsIdempotentAcrossMutations(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("first AssignSeat: %v", err)
	}
	if err := p.AssignSeat(ctx, 302, 202); err != nil {
		t.Fatalf("second AssignSeat: %v", err)
	}
	if len(backend.schedules) != 1 {
		t.Fatalf("expected exactly one schedule, got %d", len(backend.schedules))
	}

	// A fresh planner session for the same pair must reuse the schedule.
	confirmer := &mockConfirmer{answer: true}
	notifier := &mockNotifier{}
	p2 := New(backend, backend, backend, backend, confirmer, notifier)
	if err := p2.SelectLab(ctx, 2); err != nil {
		t.Fatalf("SelectLab: %v", err)
	}
	if err := p2.SelectClass(ctx, 7); err != nil {
		t.Fatalf("SelectClass: %v", err)
	}
	if err := p2.AssignSeat(ctx, 303, 203); err != nil {
		t.Fatalf("AssignSeat in second session: %v", err)
	}
	if len(backend.schedules) != 1 {
		t.Fatalf("second session created a duplicate schedule, got %d", len(backend.schedules))
	}
}

func TestResolvedScheduleDefaults(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)

	if err := p.AssignSeat(context.Background(), 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	if len(backend.schedules) != 1 {
		t.Fatalf("expected one schedule, got %d", len(backend.schedules))
	}
	s := backend.schedules[0]
	if s.StartTime != "09:00" || s.EndTime != "17:00" {
		t.Errorf("expected working window 09:00-17:00, got %s-%s", s.StartTime, s.EndTime)
	}
	today := time.Now().UTC().Format("2006-01-02")
	if s.ScheduledDate != today {
		t.Errorf("expected scheduled date %s, got %s", today, s.ScheduledDate)
	}
}

func TestSeatStatusMaintenanceBeatsAssignment(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	if got := p.SeatStatus(201); got != StatusReserved {
		t.Fatalf("expected reserved before maintenance, got %s", got)
	}

	// Flag the seat unavailable and re-select the lab to pick it up.
	detail := backend.labs[2]
	detail.Seats[0].IsAvailable = false
	backend.labs[2] = detail
	if err := p.SelectLab(ctx, 2); err != nil {
		t.Fatalf("SelectLab: %v", err)
	}
	if err := p.SelectClass(ctx, 7); err != nil {
		t.Fatalf("SelectClass: %v", err)
	}

	if got := p.SeatStatus(201); got != StatusMaintenance {
		t.Errorf("maintenance must win over an existing assignment, got %s", got)
	}
	if got := p.SeatStatus(202); got != StatusAvailable {
		t.Errorf("untouched seat should be available, got %s", got)
	}
}

func TestUnassignedStudentsSetDifference(t *testing.T) {
	p, _, _, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	students, err := p.UnassignedStudents(ctx)
	if err != nil {
		t.Fatalf("UnassignedStudents: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("enrolled 3, assigned 1, expected 2 unassigned, got %d", len(students))
	}
	for _, s := range students {
		if s.ID == 301 {
			t.Errorf("assigned student %d must not appear in the unassigned set", s.ID)
		}
	}
}

func TestUnassignRemovesFromView(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	a, ok := p.SeatAssignments()[201]
	if !ok {
		t.Fatal("expected seat 201 to be assigned")
	}
	if err := p.UnassignSeat(ctx, a.ID); err != nil {
		t.Fatalf("UnassignSeat: %v", err)
	}
	if _, still := p.SeatAssignments()[201]; still {
		t.Error("released assignment still present in the view")
	}
	if _, still := backend.seatAssignments[a.ID]; still {
		t.Error("released assignment still present in the backend")
	}
}

func TestAvailableComputersExcludesAssigned(t *testing.T) {
	p, _, _, _ := setupPlanner(t)
	ctx := context.Background()

	// CL2-PC-003 has id 103 in the fixture.
	if err := p.AssignComputerToGroup(ctx, 401, 103); err != nil {
		t.Fatalf("AssignComputerToGroup: %v", err)
	}
	available := p.AvailableComputers()
	if len(available) != 18 {
		t.Fatalf("19 computers with 1 assigned should leave 18, got %d", len(available))
	}
	for _, cp := range available {
		if cp.ID == 103 || cp.Name == "CL2-PC-003" {
			t.Errorf("assigned computer %s must not be available", cp.Name)
		}
	}
}

func TestAvailableComputersExcludesBroken(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)

	detail := backend.labs[2]
	detail.Computers[4].IsFunctional = false
	backend.labs[2] = detail
	if err := p.SelectLab(context.Background(), 2); err != nil {
		t.Fatalf("SelectLab: %v", err)
	}
	if len(p.AvailableComputers()) != 18 {
		t.Errorf("expected 18 available with one broken computer, got %d", len(p.AvailableComputers()))
	}
}

func TestDeclinedConfirmationIssuesNoDelete(t *testing.T) {
	p, backend, confirmer, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	a := p.SeatAssignments()[201]

	confirmer.answer = false
	backend.deleteCalls = 0
	if err := p.UnassignSeat(ctx, a.ID); err != nil {
		t.Fatalf("declined UnassignSeat should not error: %v", err)
	}
	if backend.deleteCalls != 0 {
		t.Errorf("declining the confirmation must issue no delete, got %d calls", backend.deleteCalls)
	}
	if _, still := p.SeatAssignments()[201]; !still {
		t.Error("assignment vanished from the view without a delete")
	}
}

func TestDeleteNotFoundTreatedAsResolved(t *testing.T) {
	p, _, _, notifier := setupPlanner(t)

	// 9999 does not exist; someone else already released it.
	if err := p.UnassignSeat(context.Background(), 9999); err != nil {
		t.Fatalf("404 on delete must not be fatal: %v", err)
	}
	if len(notifier.errors) != 0 {
		t.Errorf("already-released assignment should not surface an error, got %v", notifier.errors)
	}
}

func TestServerErrorSurfacedVerbatim(t *testing.T) {
	p, _, _, notifier := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	before := p.SeatAssignments()

	// Same seat again: the backend rejects with 409.
	err := p.AssignSeat(ctx, 302, 201)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServerError, got %T", err)
	}
	want := "seat is already assigned in this schedule"
	if len(notifier.errors) == 0 || notifier.errors[len(notifier.errors)-1] != want {
		t.Errorf("server message must be surfaced verbatim, got %v", notifier.errors)
	}
	after := p.SeatAssignments()
	if len(after) != len(before) {
		t.Errorf("view must stay unchanged after a failed mutation: before=%d after=%d", len(before), len(after))
	}
}

func TestAssignSeatUnderMaintenanceRejected(t *testing.T) {
	p, backend, _, notifier := setupPlanner(t)
	ctx := context.Background()

	detail := backend.labs[2]
	detail.Seats[0].IsAvailable = false
	backend.labs[2] = detail

	err := p.AssignSeat(ctx, 301, 201)
	if err == nil {
		t.Fatal("expected maintenance rejection")
	}
	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ServerError, got %T", err)
	}
	if se.Status != 422 || se.Message != "seat is under maintenance" {
		t.Errorf("got %d %q", se.Status, se.Message)
	}
	if len(notifier.errors) == 0 || notifier.errors[len(notifier.errors)-1] != "seat is under maintenance" {
		t.Errorf("rejection must be surfaced verbatim, got %v", notifier.errors)
	}
	if len(backend.seatAssignments) != 0 {
		t.Errorf("no assignment may be recorded for a maintenance seat, got %d", len(backend.seatAssignments))
	}
}

func TestNetworkErrorShownAsGenericNotice(t *testing.T) {
	p, backend, _, notifier := setupPlanner(t)

	backend.err = errors.New("dial tcp: connection refused")
	if err := p.AssignSeat(context.Background(), 301, 201); err == nil {
		t.Fatal("expected network error")
	}
	if len(notifier.errors) == 0 || notifier.errors[len(notifier.errors)-1] != "Unable to connect" {
		t.Errorf("network failures collapse to a generic notice, got %v", notifier.errors)
	}
}

func TestStaleRefreshDiscarded(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}

	// While a refresh is in flight, the operator re-selects the lab.
	// The refresh result belongs to the superseded view and must be
	// dropped instead of overwriting the fresh (empty) selection.
	rearmed := false
	backend.onComputerAssignments = func() {
		if rearmed {
			return
		}
		rearmed = true
		backend.onComputerAssignments = nil
		if err := p.SelectLab(ctx, 2); err != nil {
			t.Fatalf("SelectLab during refresh: %v", err)
		}
	}
	if err := p.RefreshAssignments(ctx); err != nil {
		t.Fatalf("RefreshAssignments: %v", err)
	}
	if got := len(p.SeatAssignments()); got != 0 {
		t.Errorf("stale refresh result applied after re-selection, %d assignments visible", got)
	}
}

func TestSelectClassLooksUpExistingSchedule(t *testing.T) {
	p, backend, _, _ := setupPlanner(t)
	ctx := context.Background()

	if p.Schedule() != nil {
		t.Fatal("no schedule should exist before the first mutation")
	}
	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	want := backend.schedules[0].ID

	// Re-selecting finds the schedule through lookup, not creation.
	if err := p.SelectClass(ctx, 7); err != nil {
		t.Fatalf("SelectClass: %v", err)
	}
	s := p.Schedule()
	if s == nil || s.ID != want {
		t.Fatalf("expected schedule %d from lookup, got %+v", want, s)
	}
	if len(backend.schedules) != 1 {
		t.Errorf("selection must never create schedules, got %d", len(backend.schedules))
	}
}

func TestSelectLabResetsClassState(t *testing.T) {
	p, _, _, _ := setupPlanner(t)
	ctx := context.Background()

	if err := p.AssignSeat(ctx, 301, 201); err != nil {
		t.Fatalf("AssignSeat: %v", err)
	}
	if err := p.SelectLab(ctx, 2); err != nil {
		t.Fatalf("SelectLab: %v", err)
	}
	if p.Class() != nil {
		t.Error("lab selection must reset the class selection")
	}
	if p.Schedule() != nil {
		t.Error("lab selection must clear the resolved schedule")
	}
	if len(p.SeatAssignments()) != 0 || len(p.ComputerAssignments()) != 0 {
		t.Error("lab selection must clear derived assignment views")
	}
}
