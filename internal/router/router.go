package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication and
// are not versioned.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers the session endpoints.  Register, login and both
// refresh flavours are public; logout and /v1/me need an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)

	authed := middleware.JWTAuth(jwtSecret)
	g.POST("/logout", a.Logout, authed)
	e.GET("/v1/me", a.Me, authed, middleware.RequireRole(model.RoleAdmin, model.RoleClient))
}

// RegisterProfile registers GET /v1/me/client for the caller's own
// client record.
func RegisterProfile(e *echo.Echo, c *handler.ClientHandler, jwtSecret string) {
	e.GET("/v1/me/client", c.Mine, middleware.JWTAuth(jwtSecret), middleware.RequireRole(model.RoleAdmin, model.RoleClient))
}

// RegisterPublic registers the catalog reads, package itineraries
// included.  cache fronts every route and is purged by the admin writes
// in RegisterAdmin.
func RegisterPublic(e *echo.Echo, p *handler.PackageHandler, it *handler.ItineraryHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/packages", cache)
	g.GET("", p.List)
	g.GET("/:id", p.Get)
	g.GET("/:id/itinerary", it.ForPackage)

	e.GET("/v1/itineraries/:id", it.Get, cache)
}
