package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/service"
)

// ItineraryHandler serves package schedules.  Reads are public and cached;
// writes are admin only and purge the cache like package writes do.
type ItineraryHandler struct {
	Itineraries *service.ItineraryService
	Cache       CachePurger
	log         *logrus.Entry
}

func NewItineraryHandler(svc *service.ItineraryService, cache CachePurger, log *logrus.Logger) *ItineraryHandler {
	if svc == nil {
		panic("nil itinerary service passed to NewItineraryHandler")
	}
	return &ItineraryHandler{Itineraries: svc, Cache: cache, log: log.WithField("handler", "itineraries")}
}

type itineraryReq struct {
	PackageID   uint64   `json:"package_id"`
	Day         int      `json:"day"`
	Activities  []string `json:"activities"`
	Description string   `json:"description"`
}

func (r itineraryReq) input() service.ItineraryInput {
	return service.ItineraryInput{
		PackageID:   r.PackageID,
		Day:         r.Day,
		Activities:  r.Activities,
		Description: r.Description,
	}
}

// ForPackage handles GET /v1/packages/:id/itinerary.
func (h *ItineraryHandler) ForPackage(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "package")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	days, err := h.Itineraries.ListByPackage(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, days)
}

// Get handles GET /v1/itineraries/:id.
func (h *ItineraryHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "itinerary")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	it, err := h.Itineraries.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, it)
}

// List handles GET /v1/itineraries.
func (h *ItineraryHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Itineraries.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, list)
}

// Create handles POST /v1/itineraries.
func (h *ItineraryHandler) Create(c echo.Context) error {
	var req itineraryReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	it, err := h.Itineraries.Create(ctx, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	purge(ctx, h.Cache, h.log)
	return item(c, http.StatusCreated, it)
}

// Update handles PUT /v1/itineraries/:id.  package_id in the body is
// ignored.
func (h *ItineraryHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "itinerary")
	}
	var req itineraryReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	it, err := h.Itineraries.Update(ctx, id, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	purge(ctx, h.Cache, h.log)
	return item(c, http.StatusOK, it)
}

// Delete handles DELETE /v1/itineraries/:id.
func (h *ItineraryHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "itinerary")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Itineraries.Delete(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}
	purge(ctx, h.Cache, h.log)
	return c.NoContent(http.StatusNoContent)
}
