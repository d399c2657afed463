package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
)

// PaymentHandler records and administers payments.  Reservation-scoped
// routes reuse the reservation ownership check.
type PaymentHandler struct {
	Payments     *service.PaymentService
	Reservations *ReservationHandler
	log          *logrus.Entry
}

func NewPaymentHandler(payments *service.PaymentService, reservations *ReservationHandler, log *logrus.Logger) *PaymentHandler {
	if payments == nil || reservations == nil {
		panic("nil dependency passed to NewPaymentHandler")
	}
	return &PaymentHandler{Payments: payments, Reservations: reservations, log: log.WithField("handler", "payments")}
}

type createPaymentReq struct {
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
	Status      string `json:"status"`
}

type updatePaymentReq struct {
	Method *string `json:"method"`
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Create handles POST /v1/reservations/:id/payment.  Only an ADMIN may
// create a payment that is already approved or rejected.
func (h *PaymentHandler) Create(c echo.Context) error {
	rid, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	var req createPaymentReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	status := model.PaymentStatus(normalize(req.Status))
	if status != "" && status != model.PaymentPending && caller(c).Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only admins may set a payment status"})
	}
	if _, err := h.Reservations.load(c, rid); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	det, err := h.Payments.CreateForReservation(ctx, service.CreatePaymentInput{
		ReservationID: rid,
		AmountCents:   req.AmountCents,
		Method:        model.PaymentMethod(normalize(req.Method)),
		Status:        status,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusCreated, det)
}

// ForReservation handles GET /v1/reservations/:id/payment.  A reservation
// without a payment answers 200 with a null item.
func (h *PaymentHandler) ForReservation(c echo.Context) error {
	rid, ok := pathID(c, "id")
	if !ok {
		return badID(c, "reservation")
	}
	if _, err := h.Reservations.load(c, rid); err != nil {
		return respondError(c, h.log, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	det, found, err := h.Payments.FindByReservation(ctx, rid)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if !found {
		return c.JSON(http.StatusOK, echo.Map{"item": nil, "found": false})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det, "found": true})
}

// Get handles GET /v1/payments/:id.  Payments whose reservation is gone
// are visible to admins only.
func (h *PaymentHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "payment")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	det, err := h.Payments.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	who := caller(c)
	if who.Role != model.RoleAdmin && (det.Reservation == nil || !owns(who, det.Reservation.ClientID)) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
	}
	return item(c, http.StatusOK, det)
}

// List handles GET /v1/payments (admin).
func (h *PaymentHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Payments.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, list)
}

// Update handles PATCH /v1/payments/:id (admin).  Only the method is
// editable.
func (h *PaymentHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "payment")
	}
	var req updatePaymentReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	var upd service.PaymentUpdate
	if req.Method != nil {
		m := model.PaymentMethod(normalize(*req.Method))
		upd.Method = &m
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	det, err := h.Payments.Update(ctx, id, upd)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, det)
}

// SetStatus handles PUT /v1/payments/:id/status (admin).  Approving
// confirms the reservation in the same transaction.
func (h *PaymentHandler) SetStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "payment")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	det, err := h.Payments.UpdateStatus(ctx, id, model.PaymentStatus(normalize(req.Status)))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, det)
}

// Delete handles DELETE /v1/payments/:id (admin).
func (h *PaymentHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "payment")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Payments.Delete(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reconcile handles POST /v1/payments/reconcile (admin).
func (h *PaymentHandler) Reconcile(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	ids, err := h.Payments.Reconcile(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, echo.Map{"repaired": ids, "count": len(ids)})
}
