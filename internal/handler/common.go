package handler // handler defines http handlers

import (
	"errors"  // sentinel values used in getUserID
	"fmt"     // formatting generated computer names
	"strconv" // converting strings to numeric types

	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter, rejecting zero.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// queryID parses an optional numeric query parameter; absent means zero.
func queryID(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// classJSON shapes a class for API responses.
func classJSON(cl *model.Class) echo.Map {
	return echo.Map{
		"id":     cl.ID,
		"name":   cl.Name,
		"grade":  cl.Grade,
		"stream": cl.Stream,
	}
}

// groupJSON shapes a group for API responses.
func groupJSON(g *model.Group) echo.Map {
	return echo.Map{
		"id":          g.ID,
		"class_id":    g.ClassID,
		"name":        g.Name,
		"max_members": g.MaxMembers,
		"description": g.Description,
	}
}

// computerName derives the display name of a computer from the lab
// code and the machine's 1-based position, e.g. "CL2-PC-003".
func computerName(labCode string, seq uint32) string {
	return fmt.Sprintf("%s-PC-%03d", labCode, seq)
}

// buildComputers generates the machine rows for a lab with the given
// declared count.  Sequence numbers start from 1.
func buildComputers(lab *model.Lab) []model.Computer {
	out := make([]model.Computer, 0, lab.ComputerCount)
	for i := uint32(1); i <= lab.ComputerCount; i++ {
		out = append(out, model.Computer{
			LabID:     lab.ID,
			Name:      computerName(lab.Code, i),
			SeqNumber: i,
		})
	}
	return out
}

// buildSeats generates the seat rows for a lab with the given declared
// count.  Sequence numbers start from 1.
func buildSeats(lab *model.Lab) []model.Seat {
	out := make([]model.Seat, 0, lab.SeatCount)
	for i := uint32(1); i <= lab.SeatCount; i++ {
		out = append(out, model.Seat{LabID: lab.ID, SeqNumber: i})
	}
	return out
}
