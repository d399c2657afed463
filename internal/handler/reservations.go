package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

// ReservationHandler serves bookings.  Clients act on their own
// reservations only; anything else answers 404 so ids do not leak.
type ReservationHandler struct {
	Reservations *service.ReservationService
	log          *logrus.Entry
}

func NewReservationHandler(reservations *service.ReservationService, log *logrus.Logger) *ReservationHandler {
	if reservations == nil {
		panic("nil reservation service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations, log: log.WithField("handler", "reservations")}
}

type createReservationReq struct {
	ClientID   uint64  `json:"client_id"`
	PackageID  uint64  `json:"package_id"`
	TravelDate string  `json:"travel_date"`
	Headcount  int     `json:"headcount"`
	Notes      *string `json:"notes"`
}

type updateReservationReq struct {
	ClientID   *uint64 `json:"client_id"`
	TravelDate *string `json:"travel_date"`
	Headcount  *int    `json:"headcount"`
	Notes      *string `json:"notes"`
}

type statusReq struct {
	Status string `json:"status"`
}

// load fetches a reservation the caller is allowed to see.
func (h *ReservationHandler) load(c echo.Context, id uint64) (*model.ReservationDetail, error) {
	ctx, cancel := withTimeout(c)
	defer cancel()
	det, err := h.Reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !owns(caller(c), det.ClientID) {
		return nil, service.ErrNotFound
	}
	return det, nil
}

// Create handles POST /v1/reservations.  A CLIENT always books for
// their own profile; an ADMIN names the client in the body.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	who := caller(c)
	if who.Role != model.RoleAdmin {
		if who.ClientID == 0 {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no client profile"})
		}
		if req.ClientID != 0 && req.ClientID != who.ClientID {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot book for another client"})
		}
		req.ClientID = who.ClientID
	}
	if req.ClientID == 0 || req.PackageID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_id and package_id are required"})
	}
	date, err := parseDate(strings.TrimSpace(req.TravelDate))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "travel_date must be YYYY-MM-DD"})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	det, err := h.Reservations.Create(ctx, service.CreateReservationInput{
		ClientID:   req.ClientID,
		PackageID:  req.PackageID,
		TravelDate: date,
		Headcount:  req.Headcount,
		Notes:      req.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusCreated, det)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	det, err := h.load(c, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, det)
}

// PaymentStatus handles GET /v1/reservations/:id/payment-status.
func (h *ReservationHandler) PaymentStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	if _, err := h.load(c, id); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	st, err := h.Reservations.PaymentStatus(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, st)
}

// List handles GET /v1/reservations (admin).
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Reservations.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, list)
}

// ListByClient handles GET /v1/clients/:id/reservations.
func (h *ReservationHandler) ListByClient(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "client")
	}
	if !owns(caller(c), id) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "client not found"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Reservations.ListByClient(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, list)
}

// Update handles PATCH /v1/reservations/:id (admin).
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	upd := model.ReservationUpdate{ClientID: req.ClientID, Headcount: req.Headcount, Notes: req.Notes}
	if req.TravelDate != nil {
		d, err := parseDate(strings.TrimSpace(*req.TravelDate))
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "travel_date must be YYYY-MM-DD"})
		}
		upd.TravelDate = &d
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	det, err := h.Reservations.Update(ctx, id, upd)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, det)
}

// SetStatus handles PUT /v1/reservations/:id/status (admin override).
func (h *ReservationHandler) SetStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	status := model.ReservationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	det, err := h.Reservations.OverrideStatus(ctx, id, status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, det)
}

// Confirm handles POST /v1/reservations/:id/confirm (admin).  Confirming
// twice is not an error.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Reservations.Confirm(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}
	det, err := h.Reservations.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, det)
}

// Delete handles DELETE /v1/reservations/:id (admin).
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Reservations.Delete(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

