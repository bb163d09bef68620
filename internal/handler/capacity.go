package handler

// capacity.go implements the capacity planning mutations: assigning
// students to seats and groups or students to computers, releasing
// those assignments, and the unassigned-student view.  Every mutation
// publishes an event to the broker and broadcasts it on the lab's
// live feed; both are best-effort and never fail the request.

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/queue"
	"github.com/labsyncpro/labsyncpro/internal/repository"
	queuepub "github.com/labsyncpro/labsyncpro/internal/service"
	"github.com/labsyncpro/labsyncpro/internal/ws"
)

// CapacityHandler groups the repositories needed for assignment
// mutations and the live feed hub.  Hub may be nil when the feed is
// disabled.
type CapacityHandler struct {
	SeatAssignRepo     *repository.SeatAssignmentRepo
	ComputerAssignRepo *repository.ComputerAssignmentRepo
	ScheduleRepo       *repository.ScheduleRepo
	LabRepo            *repository.LabRepo
	ClassRepo          *repository.ClassRepo
	SeatRepo           *repository.SeatRepo
	ComputerRepo       *repository.ComputerRepo
	GroupRepo          *repository.GroupRepo
	UserRepo           *repository.UserRepo
	Hub                *ws.Hub
}

// NewCapacityHandler constructs a CapacityHandler.  The hub is
// optional; every repository must be non-nil.
func NewCapacityHandler(
	seatAssignRepo *repository.SeatAssignmentRepo,
	computerAssignRepo *repository.ComputerAssignmentRepo,
	scheduleRepo *repository.ScheduleRepo,
	labRepo *repository.LabRepo,
	classRepo *repository.ClassRepo,
	seatRepo *repository.SeatRepo,
	computerRepo *repository.ComputerRepo,
	groupRepo *repository.GroupRepo,
	userRepo *repository.UserRepo,
	hub *ws.Hub,
) *CapacityHandler {
	if seatAssignRepo == nil || computerAssignRepo == nil || scheduleRepo == nil ||
		labRepo == nil || classRepo == nil || seatRepo == nil ||
		computerRepo == nil || groupRepo == nil || userRepo == nil {
		panic("nil repository passed to NewCapacityHandler")
	}
	return &CapacityHandler{
		SeatAssignRepo:     seatAssignRepo,
		ComputerAssignRepo: computerAssignRepo,
		ScheduleRepo:       scheduleRepo,
		LabRepo:            labRepo,
		ClassRepo:          classRepo,
		SeatRepo:           seatRepo,
		ComputerRepo:       computerRepo,
		GroupRepo:          groupRepo,
		UserRepo:           userRepo,
		Hub:                hub,
	}
}

// ListSeatAssignments handles GET /v1/capacity/labs/:id/seat-assignments.
// Without schedule_id the unscoped lab-wide view is returned.
func (h *CapacityHandler) ListSeatAssignments(c echo.Context) error {
	labID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	scheduleID, err := queryID(c, "schedule_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule_id"})
	}
	items, err := h.SeatAssignRepo.ListByLab(c.Request().Context(), labID, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateSeatAssignment handles POST /v1/capacity/seat-assignments.
// The database unique keys decide winners under concurrency; a losing
// request observes 409 with a message naming which invariant tripped.
func (h *CapacityHandler) CreateSeatAssignment(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var body struct {
		ScheduleID uint64 `json:"schedule_id"`
		SeatID     uint64 `json:"seat_id"`
		UserID     uint64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ScheduleID == 0 || body.SeatID == 0 || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id, seat_id and user_id are required"})
	}
	ctx := c.Request().Context()
	sched, err := h.ScheduleRepo.GetByID(ctx, body.ScheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	a := &model.SeatAssignment{
		ScheduleID: body.ScheduleID,
		SeatID:     body.SeatID,
		UserID:     body.UserID,
	}
	if err := h.SeatAssignRepo.Create(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		case errors.Is(err, repository.ErrSeatUnderMaintenance):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "seat is under maintenance"})
		case errors.Is(err, repository.ErrSeatTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat is already assigned in this schedule"})
		case errors.Is(err, repository.ErrStudentSeated):
			return c.JSON(http.StatusConflict, echo.Map{"error": "student already has a seat in this schedule"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create assignment"})
	}

	ev := h.seatEvent(ctx, actorID, a, sched)
	go func() { _ = queuepub.PublishAssigned(context.Background(), ev) }()
	h.broadcast(sched.LabID, "seat.assigned", ev)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":          a.ID,
		"schedule_id": a.ScheduleID,
		"seat_id":     a.SeatID,
		"user_id":     a.UserID,
	})
}

// DeleteSeatAssignment handles DELETE /v1/capacity/seat-assignments/:id.
func (h *CapacityHandler) DeleteSeatAssignment(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	a, err := h.SeatAssignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.SeatAssignRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	sched, schedErr := h.ScheduleRepo.GetByID(ctx, a.ScheduleID)
	if schedErr == nil {
		ev := h.seatEvent(ctx, actorID, a, sched)
		go func() { _ = queuepub.PublishReleased(context.Background(), ev) }()
		h.broadcast(sched.LabID, "seat.released", ev)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateComputerAssignment handles POST /v1/assignments.  Exactly one
// of group_id and user_id must be set; the assignment type is derived
// from which one is present.
func (h *CapacityHandler) CreateComputerAssignment(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var body struct {
		ScheduleID uint64  `json:"schedule_id"`
		ComputerID uint64  `json:"computer_id"`
		GroupID    *uint64 `json:"group_id"`
		UserID     *uint64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ScheduleID == 0 || body.ComputerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "schedule_id and computer_id are required"})
	}
	if (body.GroupID == nil) == (body.UserID == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of group_id and user_id is required"})
	}
	ctx := c.Request().Context()
	sched, err := h.ScheduleRepo.GetByID(ctx, body.ScheduleID)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	a := &model.ComputerAssignment{
		ScheduleID:     body.ScheduleID,
		ComputerID:     body.ComputerID,
		GroupID:        body.GroupID,
		UserID:         body.UserID,
		AssignmentType: model.AssignmentIndividual,
	}
	if body.GroupID != nil {
		a.AssignmentType = model.AssignmentGroup
		if _, err := h.GroupRepo.GetByID(ctx, *body.GroupID); err != nil {
			if errors.Is(err, repository.ErrGroupNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}
	if err := h.ComputerAssignRepo.Create(ctx, a); err != nil {
		switch {
		case errors.Is(err, repository.ErrComputerNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "computer not found"})
		case errors.Is(err, repository.ErrComputerNotFunctional):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "computer is not functional"})
		case errors.Is(err, repository.ErrComputerTaken):
			return c.JSON(http.StatusConflict, echo.Map{"error": "computer is already assigned in this schedule"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create assignment"})
	}

	ev := h.computerEvent(ctx, actorID, a, sched)
	go func() { _ = queuepub.PublishAssigned(context.Background(), ev) }()
	h.broadcast(sched.LabID, "computer.assigned", ev)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":              a.ID,
		"schedule_id":     a.ScheduleID,
		"computer_id":     a.ComputerID,
		"group_id":        a.GroupID,
		"user_id":         a.UserID,
		"assignment_type": a.AssignmentType,
	})
}

// DeleteComputerAssignment handles DELETE /v1/capacity/computer-assignments/:id.
func (h *CapacityHandler) DeleteComputerAssignment(c echo.Context) error {
	actorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	a, err := h.ComputerAssignRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.ComputerAssignRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	sched, schedErr := h.ScheduleRepo.GetByID(ctx, a.ScheduleID)
	if schedErr == nil {
		ev := h.computerEvent(ctx, actorID, a, sched)
		go func() { _ = queuepub.PublishReleased(context.Background(), ev) }()
		h.broadcast(sched.LabID, "computer.released", ev)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListComputerAssignments handles GET /v1/classes/:id/assignments?lab_id=.
func (h *CapacityHandler) ListComputerAssignments(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	labID, err := queryID(c, "lab_id")
	if err != nil || labID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lab_id is required"})
	}
	items, err := h.ComputerAssignRepo.ListByClassAndLab(c.Request().Context(), classID, labID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListUnassignedStudents handles
// GET /v1/capacity/unassigned-students/:class_id/:lab_id?schedule_id=.
// Without schedule_id no assignments narrow the set, so the full
// enrollment of the class is returned.
func (h *CapacityHandler) ListUnassignedStudents(c echo.Context) error {
	classID, err := pathID(c, "class_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid class_id"})
	}
	if _, err := pathID(c, "lab_id"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lab_id"})
	}
	scheduleID, err := queryID(c, "schedule_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule_id"})
	}
	students, err := h.SeatAssignRepo.UnassignedStudents(c.Request().Context(), classID, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": students})
}

// seatEvent denormalises a seat assignment into an AssignmentEvent.
// Lookups are best-effort: a missing name leaves the field empty
// rather than failing the mutation that already succeeded.
func (h *CapacityHandler) seatEvent(ctx context.Context, actorID uint64, a *model.SeatAssignment, sched *model.Schedule) queue.AssignmentEvent {
	ev := queue.NewAssignmentEvent(queue.KindSeat)
	ev.AssignmentID = a.ID
	ev.ScheduleID = a.ScheduleID
	ev.LabID = sched.LabID
	ev.ClassID = sched.ClassID
	ev.ResourceID = a.SeatID
	uid := a.UserID
	ev.UserID = &uid
	ev.ActorID = actorID
	if lab, err := h.LabRepo.GetByID(ctx, sched.LabID); err == nil {
		ev.LabName = lab.Name
	}
	if cl, err := h.ClassRepo.GetByID(ctx, sched.ClassID); err == nil {
		ev.ClassName = cl.Name
	}
	if seat, err := h.SeatRepo.GetByID(ctx, a.SeatID); err == nil {
		ev.ResourceName = fmt.Sprintf("Seat %d", seat.SeqNumber)
	}
	if u, err := h.UserRepo.GetByID(ctx, a.UserID); err == nil {
		ev.UserName = u.FullName
	}
	return ev
}

// computerEvent denormalises a computer assignment into an
// AssignmentEvent.  Same best-effort lookup semantics as seatEvent.
func (h *CapacityHandler) computerEvent(ctx context.Context, actorID uint64, a *model.ComputerAssignment, sched *model.Schedule) queue.AssignmentEvent {
	ev := queue.NewAssignmentEvent(queue.KindComputer)
	ev.AssignmentID = a.ID
	ev.ScheduleID = a.ScheduleID
	ev.LabID = sched.LabID
	ev.ClassID = sched.ClassID
	ev.ResourceID = a.ComputerID
	ev.GroupID = a.GroupID
	ev.UserID = a.UserID
	ev.ActorID = actorID
	if lab, err := h.LabRepo.GetByID(ctx, sched.LabID); err == nil {
		ev.LabName = lab.Name
	}
	if cl, err := h.ClassRepo.GetByID(ctx, sched.ClassID); err == nil {
		ev.ClassName = cl.Name
	}
	if comp, err := h.ComputerRepo.GetByID(ctx, a.ComputerID); err == nil {
		ev.ResourceName = comp.Name
	}
	if a.GroupID != nil {
		if g, err := h.GroupRepo.GetByID(ctx, *a.GroupID); err == nil {
			ev.GroupName = g.Name
		}
	}
	if a.UserID != nil {
		if u, err := h.UserRepo.GetByID(ctx, *a.UserID); err == nil {
			ev.UserName = u.FullName
		}
	}
	return ev
}

// broadcast pushes the event onto the lab's live feed when the hub is
// enabled.
func (h *CapacityHandler) broadcast(labID uint64, eventType string, ev queue.AssignmentEvent) {
	if h.Hub == nil {
		return
	}
	h.Hub.Broadcast(labID, echo.Map{"type": eventType, "payload": ev})
}
