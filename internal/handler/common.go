package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/middleware"
	"github.com/iliyamo/tour-booking/internal/model"
	"github.com/iliyamo/tour-booking/internal/service"
	"github.com/iliyamo/tour-booking/internal/utils"
)

// requestTimeout bounds the store work of a single request.
const requestTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// respondError maps the service error taxonomy onto HTTP.  Unexpected
// errors are logged and reported as 500 without detail.
func respondError(c echo.Context, log *logrus.Entry, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnavailable):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
	}
	log.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Request().URL.Path,
	}).Error("request failed")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func badID(c echo.Context, what string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + what + " id"})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}

func item(c echo.Context, status int, v any) error {
	return c.JSON(status, echo.Map{"item": v})
}

func items[T any](c echo.Context, list []T) error {
	if list == nil {
		list = []T{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list, "count": len(list)})
}

// caller returns the identity set by JWTAuth.  Handlers behind JWTAuth
// can rely on it being present.
func caller(c echo.Context) utils.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// owns reports whether the caller may see data of clientID.  Admins see
// everything; a client only their own records.
func owns(id utils.Identity, clientID uint64) bool {
	if id.Role == model.RoleAdmin {
		return true
	}
	return id.ClientID != 0 && id.ClientID == clientID
}

// dateLayout is the wire format of travel dates.
const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
