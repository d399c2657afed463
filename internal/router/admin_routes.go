package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// AdminHandlers groups the handlers behind the ADMIN role.
type AdminHandlers struct {
	Packages     *handler.PackageHandler
	Itineraries  *handler.ItineraryHandler
	Clients      *handler.ClientHandler
	Reservations *handler.ReservationHandler
	Payments     *handler.PaymentHandler
}

// RegisterAdmin registers catalog and itinerary writes, client CRUD and the
// administrative reservation and payment operations.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		limit,
	)

	g.POST("/packages", h.Packages.Create)
	g.PUT("/packages/:id", h.Packages.Update)
	g.DELETE("/packages/:id", h.Packages.Delete)

	g.GET("/itineraries", h.Itineraries.List)
	g.POST("/itineraries", h.Itineraries.Create)
	g.PUT("/itineraries/:id", h.Itineraries.Update)
	g.DELETE("/itineraries/:id", h.Itineraries.Delete)

	g.GET("/clients", h.Clients.List)
	g.POST("/clients", h.Clients.Create)
	g.GET("/clients/:id", h.Clients.Get)
	g.PUT("/clients/:id", h.Clients.Update)
	g.DELETE("/clients/:id", h.Clients.Delete)

	g.GET("/reservations", h.Reservations.List)
	g.PATCH("/reservations/:id", h.Reservations.Update)
	g.PUT("/reservations/:id/status", h.Reservations.SetStatus)
	g.POST("/reservations/:id/confirm", h.Reservations.Confirm)
	g.DELETE("/reservations/:id", h.Reservations.Delete)

	g.GET("/payments", h.Payments.List)
	g.POST("/payments/reconcile", h.Payments.Reconcile)
	g.PATCH("/payments/:id", h.Payments.Update)
	g.PUT("/payments/:id/status", h.Payments.SetStatus)
	g.DELETE("/payments/:id", h.Payments.Delete)
}
