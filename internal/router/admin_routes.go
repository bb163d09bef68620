package router

import (
	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/handler"
	"github.com/labsyncpro/labsyncpro/internal/middleware"
)

// RegisterAdmin registers the resource administration endpoints under
// /v1.  All routes require a valid JWT and the ADMIN role.  Admins
// manage labs (computers and seats are generated from the declared
// counts), classes, groups and enrollments.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	g.POST("/labs", h.CreateLab)
	g.PUT("/labs/:id", h.UpdateLab)
	g.DELETE("/labs/:id", h.DeleteLab)
	g.PATCH("/computers/:id", h.UpdateComputer)
	g.PATCH("/seats/:id", h.UpdateSeat)

	g.POST("/classes", h.CreateClass)
	g.POST("/classes/:id/groups", h.CreateGroup)
	g.PUT("/groups/:id", h.UpdateGroup)
	g.POST("/groups/:id/members", h.AddGroupMember)
	g.POST("/classes/:id/enrollments", h.EnrollStudent)
}
