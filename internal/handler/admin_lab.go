package handler // handler package contains admin-facing lab management endpoints

import (
	"database/sql" // sentinel errors from repositories
	"errors"       // comparing sentinels
	"net/http"     // status code constants
	"strings"      // trimming text input

	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/repository"
)

// AdminHandler bundles repositories used by administrators to manage
// the resource catalog and the class directory.
type AdminHandler struct {
	LabRepo      *repository.LabRepo
	ComputerRepo *repository.ComputerRepo
	SeatRepo     *repository.SeatRepo
	ClassRepo    *repository.ClassRepo
	GroupRepo    *repository.GroupRepo
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil.
func NewAdminHandler(labRepo *repository.LabRepo, computerRepo *repository.ComputerRepo, seatRepo *repository.SeatRepo, classRepo *repository.ClassRepo, groupRepo *repository.GroupRepo) *AdminHandler {
	if labRepo == nil || computerRepo == nil || seatRepo == nil || classRepo == nil || groupRepo == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{
		LabRepo:      labRepo,
		ComputerRepo: computerRepo,
		SeatRepo:     seatRepo,
		ClassRepo:    classRepo,
		GroupRepo:    groupRepo,
	}
}

// CreateLab handles POST /v1/labs.  Creating a lab also generates its
// computers and seats in bulk from the declared counts, so the catalog
// is immediately usable for capacity planning.
func (h *AdminHandler) CreateLab(c echo.Context) error {
	var body struct {
		Name          string `json:"name"`
		Code          string `json:"code"`
		Location      string `json:"location"`
		ComputerCount uint32 `json:"computer_count"`
		SeatCount     uint32 `json:"seat_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	body.Code = strings.ToUpper(strings.TrimSpace(body.Code))
	if body.Name == "" || body.Code == "" || body.ComputerCount == 0 || body.SeatCount == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "name, code, computer_count and seat_count are required and must be greater than zero",
		})
	}
	lab := &model.Lab{
		Name:          body.Name,
		Code:          body.Code,
		Location:      strings.TrimSpace(body.Location),
		ComputerCount: body.ComputerCount,
		SeatCount:     body.SeatCount,
	}
	ctx := c.Request().Context()
	if err := h.LabRepo.Create(ctx, lab); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lab name or code already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create lab"})
	}
	if err := h.ComputerRepo.CreateBulk(ctx, buildComputers(lab)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create computers"})
	}
	if err := h.SeatRepo.CreateBulk(ctx, buildSeats(lab)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create seats"})
	}
	return c.JSON(http.StatusCreated, labJSON(lab))
}

// UpdateLab handles PUT/PATCH /v1/labs/:id.  When the declared counts
// change, the computers or seats are regenerated; this is refused while
// the lab still has live assignments.
func (h *AdminHandler) UpdateLab(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	cur, err := h.LabRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLabNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		Name          *string `json:"name"`
		Location      *string `json:"location"`
		ComputerCount *uint32 `json:"computer_count"`
		SeatCount     *uint32 `json:"seat_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	upd := *cur
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		upd.Name = strings.TrimSpace(*body.Name)
	}
	if body.Location != nil {
		upd.Location = strings.TrimSpace(*body.Location)
	}
	if body.ComputerCount != nil {
		if *body.ComputerCount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "computer_count must be greater than zero"})
		}
		upd.ComputerCount = *body.ComputerCount
	}
	if body.SeatCount != nil {
		if *body.SeatCount == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_count must be greater than zero"})
		}
		upd.SeatCount = *body.SeatCount
	}
	if err := h.LabRepo.Update(ctx, &upd); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lab name already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	// Regenerate machines/seats when the declared counts changed.
	if upd.ComputerCount != cur.ComputerCount {
		if err := h.ComputerRepo.DeleteByLab(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete old computers"})
		}
		if err := h.ComputerRepo.CreateBulk(ctx, buildComputers(&upd)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create new computers"})
		}
	}
	if upd.SeatCount != cur.SeatCount {
		if err := h.SeatRepo.DeleteByLab(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete old seats"})
		}
		if err := h.SeatRepo.CreateBulk(ctx, buildSeats(&upd)); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create new seats"})
		}
	}
	fresh, _ := h.LabRepo.GetByID(ctx, id)
	return c.JSON(http.StatusOK, labJSON(fresh))
}

// DeleteLab handles DELETE /v1/labs/:id.  Labs with live assignments
// cannot be removed.
func (h *AdminHandler) DeleteLab(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.LabRepo.Delete(c.Request().Context(), id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "lab still has active assignments"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateComputer handles PATCH /v1/computers/:id (functional flag and spec).
func (h *AdminHandler) UpdateComputer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		IsFunctional *bool   `json:"is_functional"`
		Spec         *string `json:"spec"`
	}
	if err := c.Bind(&body); err != nil || body.IsFunctional == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_functional is required"})
	}
	if err := h.ComputerRepo.SetFunctional(c.Request().Context(), id, *body.IsFunctional, body.Spec); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "computer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fresh, err := h.ComputerRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, computerJSON(fresh))
}

// UpdateSeat handles PATCH /v1/seats/:id (maintenance flag).
func (h *AdminHandler) UpdateSeat(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		IsAvailable *bool `json:"is_available"`
	}
	if err := c.Bind(&body); err != nil || body.IsAvailable == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_available is required"})
	}
	if err := h.SeatRepo.SetAvailability(c.Request().Context(), id, *body.IsAvailable); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fresh, err := h.SeatRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, seatJSON(fresh))
}
