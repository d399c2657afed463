package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/service"
)

// CachePurger drops cached catalog responses after a write.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// PackageHandler serves the tour catalog.  Reads are public, writes are
// admin only and purge the response cache.
type PackageHandler struct {
	Catalog *service.CatalogService
	Cache   CachePurger
	log     *logrus.Entry
}

func NewPackageHandler(catalog *service.CatalogService, cache CachePurger, log *logrus.Logger) *PackageHandler {
	if catalog == nil {
		panic("nil catalog service passed to NewPackageHandler")
	}
	return &PackageHandler{Catalog: catalog, Cache: cache, log: log.WithField("handler", "packages")}
}

type packageReq struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Destination  string   `json:"destination"`
	DurationDays int      `json:"duration_days"`
	PriceCents   int64    `json:"price_cents"`
	Includes     []string `json:"includes"`
	Excludes     []string `json:"excludes"`
	Active       *bool    `json:"active"`
	Available    *bool    `json:"available"`
}

func (r packageReq) input() service.PackageInput {
	return service.PackageInput{
		Name:         r.Name,
		Description:  r.Description,
		Destination:  r.Destination,
		DurationDays: r.DurationDays,
		PriceCents:   r.PriceCents,
		Includes:     r.Includes,
		Excludes:     r.Excludes,
		Active:       r.Active,
		Available:    r.Available,
	}
}

// List handles GET /v1/packages?destination=&bookable=true.
func (h *PackageHandler) List(c echo.Context) error {
	f := repository.PackageFilter{Destination: strings.TrimSpace(c.QueryParam("destination"))}
	if v := c.QueryParam("bookable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bookable must be a boolean"})
		}
		f.OnlyBookable = b
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Catalog.List(ctx, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, list)
}

// Get handles GET /v1/packages/:id.
func (h *PackageHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "package")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, p)
}

// Create handles POST /v1/packages.
func (h *PackageHandler) Create(c echo.Context) error {
	var req packageReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.Catalog.Create(ctx, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.purge(ctx)
	return item(c, http.StatusCreated, p)
}

// Update handles PUT /v1/packages/:id.  The body replaces every editable
// field; omitted active/available keep their current values.
func (h *PackageHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "package")
	}
	var req packageReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	p, err := h.Catalog.Update(ctx, id, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	h.purge(ctx)
	return item(c, http.StatusOK, p)
}

// Delete handles DELETE /v1/packages/:id.  Existing reservations keep
// their stored total.
func (h *PackageHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "package")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Catalog.Delete(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}
	h.purge(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *PackageHandler) purge(ctx context.Context) { purge(ctx, h.Cache, h.log) }

// purge drops cached catalog reads after a write.  Failures are logged.
func purge(ctx context.Context, cache CachePurger, log *logrus.Entry) {
	if cache == nil {
		return
	}
	if err := cache.Purge(ctx); err != nil {
		log.WithError(err).Warn("catalog cache purge failed")
	}
}
