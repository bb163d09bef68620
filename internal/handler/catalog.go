package handler

// catalog.go exposes the read-only resource catalog and class directory
// consumed by capacity planning clients: labs with their computers and
// seats, classes with derived counts, and class rosters.

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/repository"
)

// CatalogHandler groups the repositories backing the read views.
type CatalogHandler struct {
	LabRepo      *repository.LabRepo
	ComputerRepo *repository.ComputerRepo
	SeatRepo     *repository.SeatRepo
	ClassRepo    *repository.ClassRepo
	GroupRepo    *repository.GroupRepo
}

// NewCatalogHandler constructs a CatalogHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewCatalogHandler(labRepo *repository.LabRepo, computerRepo *repository.ComputerRepo, seatRepo *repository.SeatRepo, classRepo *repository.ClassRepo, groupRepo *repository.GroupRepo) *CatalogHandler {
	if labRepo == nil || computerRepo == nil || seatRepo == nil || classRepo == nil || groupRepo == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{
		LabRepo:      labRepo,
		ComputerRepo: computerRepo,
		SeatRepo:     seatRepo,
		ClassRepo:    classRepo,
		GroupRepo:    groupRepo,
	}
}

// labJSON shapes a lab for API responses.  The model structs carry no
// json tags, so handlers own the wire representation.
func labJSON(l *model.Lab) echo.Map {
	return echo.Map{
		"id":             l.ID,
		"name":           l.Name,
		"code":           l.Code,
		"location":       l.Location,
		"computer_count": l.ComputerCount,
		"seat_count":     l.SeatCount,
	}
}

func computerJSON(cp *model.Computer) echo.Map {
	return echo.Map{
		"id":            cp.ID,
		"lab_id":        cp.LabID,
		"name":          cp.Name,
		"seq_number":    cp.SeqNumber,
		"is_functional": cp.IsFunctional,
		"spec":          cp.Spec,
	}
}

func seatJSON(s *model.Seat) echo.Map {
	return echo.Map{
		"id":           s.ID,
		"lab_id":       s.LabID,
		"seq_number":   s.SeqNumber,
		"is_available": s.IsAvailable,
	}
}

// ListLabs handles GET /v1/labs.
func (h *CatalogHandler) ListLabs(c echo.Context) error {
	labs, err := h.LabRepo.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]echo.Map, 0, len(labs))
	for _, l := range labs {
		items = append(items, labJSON(l))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetLab handles GET /v1/labs/:id and returns the lab together with
// its computers and seats.
func (h *CatalogHandler) GetLab(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	lab, err := h.LabRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLabNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	computers, err := h.ComputerRepo.ListByLab(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	seats, err := h.SeatRepo.ListByLab(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	computerItems := make([]echo.Map, 0, len(computers))
	for i := range computers {
		computerItems = append(computerItems, computerJSON(&computers[i]))
	}
	seatItems := make([]echo.Map, 0, len(seats))
	for i := range seats {
		seatItems = append(seatItems, seatJSON(&seats[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lab":       labJSON(lab),
		"computers": computerItems,
		"seats":     seatItems,
	})
}

// ListClasses handles GET /v1/classes?lab_id=.  With lab_id the list is
// narrowed to classes already scheduled in that lab.
func (h *CatalogHandler) ListClasses(c echo.Context) error {
	labID, err := queryID(c, "lab_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lab_id"})
	}
	classes, err := h.ClassRepo.List(c.Request().Context(), labID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	items := make([]echo.Map, 0, len(classes))
	for _, cl := range classes {
		items = append(items, echo.Map{
			"id":            cl.ID,
			"name":          cl.Name,
			"grade":         cl.Grade,
			"stream":        cl.Stream,
			"group_count":   cl.GroupCount,
			"student_count": cl.StudentCount,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRoster handles GET /v1/capacity/classes/:id/roster and returns
// the students and groups-with-members of a class in one response.
func (h *CatalogHandler) GetRoster(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	if _, err := h.ClassRepo.GetByID(ctx, classID); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	students, err := h.ClassRepo.ListStudents(ctx, classID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	groups, err := h.GroupRepo.ListByClassWithMembers(ctx, classID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"students": students,
		"groups":   groups,
	})
}
