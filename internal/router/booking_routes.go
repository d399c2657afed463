package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
)

// RegisterBookings registers the reservation and payment routes open to
// any authenticated user.  Handlers restrict a CLIENT to their own
// records.  limit is the per-user rate limiter.
func RegisterBookings(e *echo.Echo, r *handler.ReservationHandler, p *handler.PaymentHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleClient),
		limit,
	)
	g.POST("/reservations", r.Create)
	g.GET("/reservations/:id", r.Get)
	g.GET("/reservations/:id/payment-status", r.PaymentStatus)
	g.GET("/clients/:id/reservations", r.ListByClient)

	g.POST("/reservations/:id/payment", p.Create)
	g.GET("/reservations/:id/payment", p.ForReservation)
	g.GET("/payments/:id", p.Get)
}
