package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/labsyncpro/labsyncpro/internal/config"
	"github.com/labsyncpro/labsyncpro/internal/handler"
	"github.com/labsyncpro/labsyncpro/internal/middleware"
	"github.com/labsyncpro/labsyncpro/internal/ws"
)

// RegisterCapacity registers the capacity planning endpoints under /v1.
// All routes require a valid JWT with the ADMIN or INSTRUCTOR role and
// are rate limited per user.  Catalog reads additionally go through the
// Redis response cache; both middlewares degrade to no-ops when rdb is
// nil so the API keeps working without Redis.
func RegisterCapacity(
	e *echo.Echo,
	catalog *handler.CatalogHandler,
	schedule *handler.ScheduleHandler,
	capacity *handler.CapacityHandler,
	export *handler.ExportHandler,
	hub *ws.Hub,
	jwtSecret string,
	rdb *redis.Client,
) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "INSTRUCTOR"),
		rl,
	)

	// Catalog reads.  Cached; the catalog changes rarely compared to
	// how often planning clients poll it.
	g.GET("/labs", catalog.ListLabs, cache)
	g.GET("/labs/:id", catalog.GetLab, cache)
	g.GET("/classes", catalog.ListClasses, cache)
	g.GET("/capacity/classes/:id/roster", catalog.GetRoster, cache)

	// Schedules.
	g.GET("/schedules", schedule.List)
	g.POST("/schedules", schedule.Create)
	g.POST("/schedules/resolve", schedule.Resolve)
	g.GET("/schedules/:id/ical", schedule.ExportICal)

	// Assignment state.  Never cached: planners act on what they see.
	g.GET("/capacity/labs/:id/seat-assignments", capacity.ListSeatAssignments)
	g.POST("/capacity/seat-assignments", capacity.CreateSeatAssignment)
	g.DELETE("/capacity/seat-assignments/:id", capacity.DeleteSeatAssignment)
	g.POST("/assignments", capacity.CreateComputerAssignment)
	g.DELETE("/capacity/computer-assignments/:id", capacity.DeleteComputerAssignment)
	g.GET("/classes/:id/assignments", capacity.ListComputerAssignments)
	g.GET("/capacity/unassigned-students/:class_id/:lab_id", capacity.ListUnassignedStudents)

	// Export and live feed.
	g.GET("/capacity/labs/:id/export", export.Export)
	if hub != nil {
		g.GET("/capacity/labs/:id/stream", hub.Stream)
	}
}
