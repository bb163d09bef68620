package handler // handler package contains admin-facing class directory endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/model"
	"github.com/labsyncpro/labsyncpro/internal/repository"
)

// CreateClass handles POST /v1/classes.
func (h *AdminHandler) CreateClass(c echo.Context) error {
	var body struct {
		Name   string `json:"name"`
		Grade  string `json:"grade"`
		Stream string `json:"stream"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	cl := &model.Class{
		Name:   body.Name,
		Grade:  strings.TrimSpace(body.Grade),
		Stream: strings.TrimSpace(body.Stream),
	}
	if err := h.ClassRepo.Create(c.Request().Context(), cl); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "class name already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create class"})
	}
	return c.JSON(http.StatusCreated, classJSON(cl))
}

// CreateGroup handles POST /v1/classes/:id/groups.
func (h *AdminHandler) CreateGroup(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if _, err := h.ClassRepo.GetByID(c.Request().Context(), classID); err != nil {
		if errors.Is(err, repository.ErrClassNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "class not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		Name        string  `json:"name"`
		MaxMembers  uint32  `json:"max_members"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" || body.MaxMembers == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and max_members are required"})
	}
	g := &model.Group{
		ClassID:     classID,
		Name:        body.Name,
		MaxMembers:  body.MaxMembers,
		Description: body.Description,
	}
	if err := h.GroupRepo.Create(c.Request().Context(), g); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "group name already in use for this class"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create group"})
	}
	return c.JSON(http.StatusCreated, groupJSON(g))
}

// UpdateGroup handles PUT /v1/groups/:id (group metadata only).
func (h *AdminHandler) UpdateGroup(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	cur, err := h.GroupRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var body struct {
		Name        *string `json:"name"`
		MaxMembers  *uint32 `json:"max_members"`
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
		cur.Name = strings.TrimSpace(*body.Name)
	}
	if body.MaxMembers != nil {
		if *body.MaxMembers == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_members must be greater than zero"})
		}
		cur.MaxMembers = *body.MaxMembers
	}
	if body.Description != nil {
		s := strings.TrimSpace(*body.Description)
		if s == "" {
			cur.Description = nil
		} else {
			cur.Description = &s
		}
	}
	if err := h.GroupRepo.Update(ctx, cur); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "group name already in use for this class"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, groupJSON(cur))
}

// AddGroupMember handles POST /v1/groups/:id/members.
func (h *AdminHandler) AddGroupMember(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		UserID uint64 `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	role := strings.ToUpper(strings.TrimSpace(body.Role))
	if role != "LEADER" {
		role = "MEMBER"
	}
	if err := h.GroupRepo.AddMember(c.Request().Context(), id, body.UserID, role); err != nil {
		switch {
		case errors.Is(err, repository.ErrGroupNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "group not found"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "group is full or student already a member"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not add member"})
		}
	}
	return c.NoContent(http.StatusCreated)
}

// EnrollStudent handles POST /v1/classes/:id/enrollments.
func (h *AdminHandler) EnrollStudent(c echo.Context) error {
	classID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		UserID uint64 `json:"user_id"`
	}
	if err := c.Bind(&body); err != nil || body.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	if err := h.ClassRepo.Enroll(c.Request().Context(), classID, body.UserID); err != nil {
		switch {
		case err == sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "only students can be enrolled"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "student already enrolled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not enroll student"})
		}
	}
	return c.NoContent(http.StatusCreated)
}
