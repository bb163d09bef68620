package handler

// export.go renders the capacity state of a lab as an xlsx workbook
// with one sheet for seats and one for computers.

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/repository"
)

// ExportHandler serves GET /v1/capacity/labs/:id/export.
type ExportHandler struct {
	LabRepo            *repository.LabRepo
	SeatRepo           *repository.SeatRepo
	ComputerRepo       *repository.ComputerRepo
	SeatAssignRepo     *repository.SeatAssignmentRepo
	ComputerAssignRepo *repository.ComputerAssignmentRepo
}

// NewExportHandler constructs an ExportHandler.  All dependencies
// must be non-nil.
func NewExportHandler(labRepo *repository.LabRepo, seatRepo *repository.SeatRepo, computerRepo *repository.ComputerRepo,
	seatAssignRepo *repository.SeatAssignmentRepo, computerAssignRepo *repository.ComputerAssignmentRepo) *ExportHandler {
	if labRepo == nil || seatRepo == nil || computerRepo == nil || seatAssignRepo == nil || computerAssignRepo == nil {
		panic("nil repository passed to NewExportHandler")
	}
	return &ExportHandler{
		LabRepo:            labRepo,
		SeatRepo:           seatRepo,
		ComputerRepo:       computerRepo,
		SeatAssignRepo:     seatAssignRepo,
		ComputerAssignRepo: computerAssignRepo,
	}
}

// Export handles GET /v1/capacity/labs/:id/export?schedule_id=.
// Without schedule_id the seat sheet reflects the unscoped lab-wide
// view and the computer sheet is limited to occupancy flags only.
func (h *ExportHandler) Export(c echo.Context) error {
	labID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	scheduleID, err := queryID(c, "schedule_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule_id"})
	}
	ctx := c.Request().Context()
	lab, err := h.LabRepo.GetByID(ctx, labID)
	if err != nil {
		if errors.Is(err, repository.ErrLabNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "lab not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	seats, err := h.SeatRepo.ListByLab(ctx, labID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	computers, err := h.ComputerRepo.ListByLab(ctx, labID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	seatAssignments, err := h.SeatAssignRepo.ListByLab(ctx, labID, scheduleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var computerAssignments []repository.ComputerAssignmentDetail
	if scheduleID != 0 {
		computerAssignments, err = h.ComputerAssignRepo.ListBySchedule(ctx, scheduleID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}

	f, err := BuildCapacityWorkbook(lab, seats, computers, seatAssignments, computerAssignments)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not build workbook"})
	}

	fileName := fmt.Sprintf("capacity_%s_%s.xlsx", lab.Code, time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	if err := f.Write(c.Response()); err != nil {
		return err
	}
	return nil
}

// BuildCapacityWorkbook lays the lab's seats and computers out on two
// sheets.  Seat rows carry the occupying student when one is assigned;
// computer rows carry the assignee and functional state.
func BuildCapacityWorkbook(lab *model.Lab, seats []model.Seat, computers []model.Computer,
	seatAssignments []repository.SeatAssignmentDetail, computerAssignments []repository.ComputerAssignmentDetail) (*excelize.File, error) {
	f := excelize.NewFile()

	const seatSheet = "Seats"
	index, err := f.NewSheet(seatSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	seatHeaders := []string{"Seat", "Status", "Student"}
	for i, header := range seatHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(seatSheet, cell, header)
	}
	bySeat := make(map[uint64]repository.SeatAssignmentDetail, len(seatAssignments))
	for _, a := range seatAssignments {
		bySeat[a.SeatID] = a
	}
	for i, s := range seats {
		row := i + 2
		f.SetCellValue(seatSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("Seat %d", s.SeqNumber))
		// Maintenance wins over an existing assignment, matching the
		// seat status shown by the API.
		status := "available"
		student := ""
		if a, ok := bySeat[s.ID]; ok {
			status = "reserved"
			student = a.StudentName
		}
		if !s.IsAvailable {
			status = "maintenance"
		}
		f.SetCellValue(seatSheet, fmt.Sprintf("B%d", row), status)
		f.SetCellValue(seatSheet, fmt.Sprintf("C%d", row), student)
	}

	const computerSheet = "Computers"
	if _, err := f.NewSheet(computerSheet); err != nil {
		return nil, err
	}
	computerHeaders := []string{"Computer", "Functional", "Assigned To"}
	for i, header := range computerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(computerSheet, cell, header)
	}
	byComputer := make(map[uint64]repository.ComputerAssignmentDetail, len(computerAssignments))
	for _, a := range computerAssignments {
		byComputer[a.ComputerID] = a
	}
	for i, cp := range computers {
		row := i + 2
		f.SetCellValue(computerSheet, fmt.Sprintf("A%d", row), cp.Name)
		f.SetCellValue(computerSheet, fmt.Sprintf("B%d", row), cp.IsFunctional)
		assignee := ""
		if a, ok := byComputer[cp.ID]; ok {
			if a.GroupName != nil {
				assignee = *a.GroupName
			} else if a.StudentName != nil {
				assignee = *a.StudentName
			}
		}
		f.SetCellValue(computerSheet, fmt.Sprintf("C%d", row), assignee)
	}

	return f, nil
}
