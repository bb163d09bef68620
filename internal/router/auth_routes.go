package router

import (
	"github.com/labstack/echo/v4"

	"github.com/labsyncpro/labsyncpro/internal/handler"
	"github.com/labsyncpro/labsyncpro/internal/middleware"
)

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations live under /v1/auth; /v1/me requires a
// valid access token and is open to every known role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; a new pair is returned.
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a bearer token or a refresh token in the
	// body and revokes the session.  No JWT middleware so that expired
	// access tokens can still log out with their refresh token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "INSTRUCTOR", "STUDENT"))
	auth.GET("/me", a.Me)
}
