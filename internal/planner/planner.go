// Package planner implements the capacity planning controller: the
// explicit state machine behind the terminal client.  All view state
// lives in one struct, is mutated only by action methods under a
// mutex, and is never updated unless the server confirmed success.
package planner

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Planner orchestrates lab/class selection and assignment mutations
// against the read and write collaborators.  A zero Planner is not
// usable; construct with New.
type Planner struct {
	catalog   Catalog
	directory Directory
	scheduler Scheduler
	ledger    Ledger
	confirmer Confirmer
	notifier  Notifier

	mu sync.Mutex
	// gen increases on every selection transition.  A refresh captures
	// gen before fetching and discards its result if the planner moved
	// on while the request was in flight.
	gen uint64

	lab       *Lab
	computers []Computer
	seatsByID map[uint64]Seat
	seats     []Seat
	classes   []ClassSummary
	class     *ClassSummary
	roster    Roster
	schedule  *Schedule

	seatAssignments     map[uint64]SeatAssignment     // seat id → assignment
	computerAssignments map[uint64]ComputerAssignment // computer id → assignment
}

// New constructs a Planner.  Every collaborator must be non-nil.
func New(catalog Catalog, directory Directory, scheduler Scheduler, ledger Ledger, confirmer Confirmer, notifier Notifier) *Planner {
	if catalog == nil || directory == nil || scheduler == nil || ledger == nil || confirmer == nil || notifier == nil {
		panic("nil collaborator passed to planner.New")
	}
	return &Planner{
		catalog:             catalog,
		directory:           directory,
		scheduler:           scheduler,
		ledger:              ledger,
		confirmer:           confirmer,
		notifier:            notifier,
		seatsByID:           map[uint64]Seat{},
		seatAssignments:     map[uint64]SeatAssignment{},
		computerAssignments: map[uint64]ComputerAssignment{},
	}
}

// fail reports the error to the user.  Server messages are surfaced
// verbatim; anything else collapses to a generic connectivity notice.
func (p *Planner) fail(err error) error {
	var se *ServerError
	if errors.As(err, &se) {
		p.notifier.Error(se.Message)
	} else {
		p.notifier.Error("Unable to connect")
	}
	return err
}

// Labs lists the lab catalog.  Listing does not change the selection.
func (p *Planner) Labs(ctx context.Context) ([]Lab, error) {
	labs, err := p.catalog.ListLabs(ctx)
	if err != nil {
		return nil, p.fail(err)
	}
	return labs, nil
}

// SelectLab loads the lab's computers and seats and the classes
// scheduled in it, resets any class selection, and clears the derived
// assignment views.  On failure the previous selection stays intact.
func (p *Planner) SelectLab(ctx context.Context, labID uint64) error {
	detail, err := p.catalog.GetLab(ctx, labID)
	if err != nil {
		return p.fail(err)
	}
	classes, err := p.directory.ListClasses(ctx, labID)
	if err != nil {
		return p.fail(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	lab := detail.Lab
	p.lab = &lab
	p.computers = detail.Computers
	p.seats = detail.Seats
	p.seatsByID = make(map[uint64]Seat, len(detail.Seats))
	for _, s := range detail.Seats {
		p.seatsByID[s.ID] = s
	}
	p.classes = classes
	p.class = nil
	p.roster = Roster{}
	p.schedule = nil
	p.seatAssignments = map[uint64]SeatAssignment{}
	p.computerAssignments = map[uint64]ComputerAssignment{}
	return nil
}

// SelectClass loads the class roster and both assignment views.  The
// schedule is looked up, never created: selection is a read-only path
// and a missing schedule simply means nothing is assigned yet.
func (p *Planner) SelectClass(ctx context.Context, classID uint64) error {
	p.mu.Lock()
	if p.lab == nil {
		p.mu.Unlock()
		return errors.New("no lab selected")
	}
	labID := p.lab.ID
	p.mu.Unlock()

	roster, err := p.directory.Roster(ctx, classID)
	if err != nil {
		return p.fail(err)
	}
	schedules, err := p.scheduler.FindSchedules(ctx, classID, labID)
	if err != nil {
		return p.fail(err)
	}
	var sched *Schedule
	if len(schedules) > 0 {
		s := schedules[0] // newest first
		sched = &s
	}
	computerAssignments, err := p.ledger.ComputerAssignments(ctx, classID, labID)
	if err != nil {
		return p.fail(err)
	}
	var seatAssignments []SeatAssignment
	if sched != nil {
		seatAssignments, err = p.ledger.SeatAssignments(ctx, labID, sched.ID)
		if err != nil {
			return p.fail(err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	var selected *ClassSummary
	for i := range p.classes {
		if p.classes[i].ID == classID {
			c := p.classes[i]
			selected = &c
			break
		}
	}
	if selected == nil {
		selected = &ClassSummary{ID: classID}
	}
	p.class = selected
	p.roster = roster
	p.schedule = sched
	p.applyAssignmentsLocked(seatAssignments, computerAssignments)
	return nil
}

func (p *Planner) applyAssignmentsLocked(seatAssignments []SeatAssignment, computerAssignments []ComputerAssignment) {
	p.seatAssignments = make(map[uint64]SeatAssignment, len(seatAssignments))
	for _, a := range seatAssignments {
		p.seatAssignments[a.SeatID] = a
	}
	p.computerAssignments = make(map[uint64]ComputerAssignment, len(computerAssignments))
	for _, a := range computerAssignments {
		p.computerAssignments[a.ComputerID] = a
	}
}

// RefreshAssignments re-fetches both assignment views for the current
// selection.  A result arriving after the selection has moved on is
// discarded rather than applied to the wrong view.
func (p *Planner) RefreshAssignments(ctx context.Context) error {
	p.mu.Lock()
	if p.lab == nil || p.class == nil {
		p.mu.Unlock()
		return errors.New("no class selected")
	}
	gen := p.gen
	labID := p.lab.ID
	classID := p.class.ID
	var scheduleID uint64
	if p.schedule != nil {
		scheduleID = p.schedule.ID
	}
	p.mu.Unlock()

	computerAssignments, err := p.ledger.ComputerAssignments(ctx, classID, labID)
	if err != nil {
		return p.fail(err)
	}
	var seatAssignments []SeatAssignment
	if scheduleID != 0 {
		seatAssignments, err = p.ledger.SeatAssignments(ctx, labID, scheduleID)
		if err != nil {
			return p.fail(err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		// Selection changed while the request was in flight.
		return nil
	}
	p.applyAssignmentsLocked(seatAssignments, computerAssignments)
	return nil
}

// ensureSchedule returns the schedule anchoring the current selection,
// resolving (creating if missing) one on first mutation.  Resolution
// failure aborts the enclosing action before any assignment mutation.
func (p *Planner) ensureSchedule(ctx context.Context) (Schedule, error) {
	p.mu.Lock()
	if p.lab == nil || p.class == nil {
		p.mu.Unlock()
		return Schedule{}, errors.New("no class selected")
	}
	if p.schedule != nil {
		s := *p.schedule
		p.mu.Unlock()
		return s, nil
	}
	labID := p.lab.ID
	classID := p.class.ID
	gen := p.gen
	p.mu.Unlock()

	sched, err := p.scheduler.Resolve(ctx, classID, labID)
	if err != nil {
		return Schedule{}, p.fail(err)
	}

	p.mu.Lock()
	if p.gen == gen && p.schedule == nil {
		s := sched
		p.schedule = &s
	}
	p.mu.Unlock()
	return sched, nil
}

// AssignSeat assigns a student to a seat under the resolved schedule.
func (p *Planner) AssignSeat(ctx context.Context, studentID, seatID uint64) error {
	sched, err := p.ensureSchedule(ctx)
	if err != nil {
		return err
	}
	a, err := p.ledger.AssignSeat(ctx, sched.ID, seatID, studentID)
	if err != nil {
		return p.fail(err)
	}
	p.notifier.Info(fmt.Sprintf("assigned student %d to seat %d", studentID, seatID))
	if err := p.RefreshAssignments(ctx); err != nil {
		// The assignment exists; only the view refresh failed.
		p.mu.Lock()
		p.seatAssignments[a.SeatID] = a
		p.mu.Unlock()
	}
	return nil
}

// AssignComputerToGroup assigns a group to a computer under the
// resolved schedule.
func (p *Planner) AssignComputerToGroup(ctx context.Context, groupID, computerID uint64) error {
	sched, err := p.ensureSchedule(ctx)
	if err != nil {
		return err
	}
	a, err := p.ledger.AssignComputerToGroup(ctx, sched.ID, computerID, groupID)
	if err != nil {
		return p.fail(err)
	}
	p.notifier.Info(fmt.Sprintf("assigned group %d to computer %d", groupID, computerID))
	if err := p.RefreshAssignments(ctx); err != nil {
		p.mu.Lock()
		p.computerAssignments[a.ComputerID] = a
		p.mu.Unlock()
	}
	return nil
}

// UnassignSeat releases one seat assignment after user confirmation.
// Declining the confirmation aborts with no side effects.  A 404 from
// the server means someone else already released it; that is treated
// as success.
func (p *Planner) UnassignSeat(ctx context.Context, assignmentID uint64) error {
	if !p.confirmer.Confirm(fmt.Sprintf("release seat assignment %d?", assignmentID)) {
		return nil
	}
	if err := p.ledger.DeleteSeatAssignment(ctx, assignmentID); err != nil && !isNotFound(err) {
		return p.fail(err)
	}
	p.notifier.Info(fmt.Sprintf("released seat assignment %d", assignmentID))
	return p.RefreshAssignments(ctx)
}

// UnassignComputerFromGroup releases the computer assignment held by
// the group, if any, after user confirmation.
func (p *Planner) UnassignComputerFromGroup(ctx context.Context, groupID uint64) error {
	p.mu.Lock()
	var target *ComputerAssignment
	for _, a := range p.computerAssignments {
		if a.GroupID != nil && *a.GroupID == groupID {
			found := a
			target = &found
			break
		}
	}
	p.mu.Unlock()
	if target == nil {
		p.notifier.Warn(fmt.Sprintf("group %d has no computer assignment", groupID))
		return nil
	}
	if !p.confirmer.Confirm(fmt.Sprintf("release %s from group %d?", target.ComputerName, groupID)) {
		return nil
	}
	if err := p.ledger.DeleteComputerAssignment(ctx, target.ID); err != nil && !isNotFound(err) {
		return p.fail(err)
	}
	p.notifier.Info(fmt.Sprintf("released computer assignment %d", target.ID))
	return p.RefreshAssignments(ctx)
}

func isNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// SeatStatus derives the display status of a seat.  The maintenance
// flag wins over an existing assignment; an assigned seat that is also
// flagged unavailable shows as maintenance.
func (p *Planner) SeatStatus(seatID uint64) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	seat, ok := p.seatsByID[seatID]
	if !ok {
		return StatusAvailable
	}
	if !seat.IsAvailable {
		return StatusMaintenance
	}
	if _, assigned := p.seatAssignments[seatID]; assigned {
		return StatusReserved
	}
	return StatusAvailable
}

// AvailableComputers returns functional computers with no assignment
// in the current view, matched by computer id.
func (p *Planner) AvailableComputers() []Computer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Computer, 0, len(p.computers))
	for _, cp := range p.computers {
		if !cp.IsFunctional {
			continue
		}
		if _, taken := p.computerAssignments[cp.ID]; taken {
			continue
		}
		out = append(out, cp)
	}
	return out
}

// UnassignedStudents returns the students of the selected class with
// no seat under the current schedule.  The set difference is computed
// server-side.
func (p *Planner) UnassignedStudents(ctx context.Context) ([]Student, error) {
	p.mu.Lock()
	if p.lab == nil || p.class == nil {
		p.mu.Unlock()
		return nil, errors.New("no class selected")
	}
	labID := p.lab.ID
	classID := p.class.ID
	var scheduleID uint64
	if p.schedule != nil {
		scheduleID = p.schedule.ID
	}
	p.mu.Unlock()

	students, err := p.ledger.UnassignedStudents(ctx, classID, labID, scheduleID)
	if err != nil {
		return nil, p.fail(err)
	}
	return students, nil
}

// Lab returns the current lab selection, nil when none.
func (p *Planner) Lab() *Lab {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lab == nil {
		return nil
	}
	l := *p.lab
	return &l
}

// Class returns the current class selection, nil when none.
func (p *Planner) Class() *ClassSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.class == nil {
		return nil
	}
	c := *p.class
	return &c
}

// Schedule returns the resolved schedule, nil when none exists yet.
func (p *Planner) Schedule() *Schedule {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.schedule == nil {
		return nil
	}
	s := *p.schedule
	return &s
}

// Classes returns the classes loaded for the current lab.
func (p *Planner) Classes() []ClassSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ClassSummary, len(p.classes))
	copy(out, p.classes)
	return out
}

// Seats returns the seats of the current lab in sequence order.
func (p *Planner) Seats() []Seat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Seat, len(p.seats))
	copy(out, p.seats)
	return out
}

// Computers returns the computers of the current lab in sequence order.
func (p *Planner) Computers() []Computer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Computer, len(p.computers))
	copy(out, p.computers)
	return out
}

// Roster returns the membership view of the selected class.
func (p *Planner) Roster() Roster {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roster
}

// SeatAssignments returns the seat assignment for each occupied seat,
// keyed by seat id.
func (p *Planner) SeatAssignments() map[uint64]SeatAssignment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[uint64]SeatAssignment, len(p.seatAssignments))
	for k, v := range p.seatAssignments {
		out[k] = v
	}
	return out
}

// ComputerAssignments returns the assignment for each occupied
// computer, keyed by computer id.
func (p *Planner) ComputerAssignments() map[uint64]ComputerAssignment {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[uint64]ComputerAssignment, len(p.computerAssignments))
	for k, v := range p.computerAssignments {
		out[k] = v
	}
	return out
}
