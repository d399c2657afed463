package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/service"
)

// ClientHandler is the admin CRUD over client records.
type ClientHandler struct {
	Clients *service.ClientService
	log     *logrus.Entry
}

func NewClientHandler(clients *service.ClientService, log *logrus.Logger) *ClientHandler {
	if clients == nil {
		panic("nil client service passed to NewClientHandler")
	}
	return &ClientHandler{Clients: clients, log: log.WithField("handler", "clients")}
}

type clientReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r clientReq) input() service.ClientInput {
	return service.ClientInput{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

// List handles GET /v1/clients.
func (h *ClientHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	list, err := h.Clients.List(ctx)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return items(c, list)
}

// Get handles GET /v1/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "client")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	cl, err := h.Clients.Get(ctx, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, cl)
}

// Create handles POST /v1/clients.  Staff-created clients have no login.
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	cl, err := h.Clients.Create(ctx, req.input(), nil)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusCreated, cl)
}

// Update handles PUT /v1/clients/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "client")
	}
	var req clientReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	cl, err := h.Clients.Update(ctx, id, req.input())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, cl)
}

// Delete handles DELETE /v1/clients/:id.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c, "client")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Clients.Delete(ctx, id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine handles GET /v1/me/client: the caller's own client profile.
// Admins without a profile get 404.
func (h *ClientHandler) Mine(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	cl, err := h.Clients.ForUser(ctx, caller(c).UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return item(c, http.StatusOK, cl)
}
