package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/tour-booking/internal/handler"
	"github.com/iliyamo/tour-booking/internal/queue"
	"github.com/iliyamo/tour-booking/internal/repository/memory"
	"github.com/iliyamo/tour-booking/internal/service"
)

const jwtSecret = "router-test-secret"

type nopPublisher struct{ n int }

func (p *nopPublisher) PublishReservationConfirmed(context.Context, queue.ReservationConfirmedEvent) error {
	p.n++
	return nil
}

type api struct {
	t      *testing.T
	e      *echo.Echo
	events *nopPublisher
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	st := memory.New()
	events := &nopPublisher{}
	auth := service.NewAuthService(service.AuthConfig{
		JWTSecret: jwtSecret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4,
	}, st.Users(), st.Tokens(), st.Clients(), log)
	catalog := service.NewCatalogService(st.Packages(), log)
	itineraries := service.NewItineraryService(st.Itineraries(), st.Packages(), log)
	clients := service.NewClientService(st.Clients())
	bookings := service.NewReservationService(st, st.Reservations(), st.Clients(), st.Packages(), log)
	payments := service.NewPaymentService(st, st.Payments(), st.Reservations(), bookings, events, log)

	created, err := auth.SeedAdmin(context.Background(), "admin@tours.test", "admin-password")
	require.NoError(t, err)
	require.True(t, created)

	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	resH := handler.NewReservationHandler(bookings, log)
	payH := handler.NewPaymentHandler(payments, resH, log)
	pkgH := handler.NewPackageHandler(catalog, nil, log)
	itH := handler.NewItineraryHandler(itineraries, nil, log)
	cliH := handler.NewClientHandler(clients, log)

	e := echo.New()
	RegisterRoutes(e, handler.NewHealthHandler(nil))
	RegisterAuth(e, handler.NewAuthHandler(auth, log), jwtSecret)
	RegisterProfile(e, cliH, jwtSecret)
	RegisterPublic(e, pkgH, itH, pass)
	RegisterBookings(e, resH, payH, jwtSecret, pass)
	RegisterAdmin(e, AdminHandlers{
		Packages:     pkgH,
		Itineraries:  itH,
		Clients:      cliH,
		Reservations: resH,
		Payments:     payH,
	}, jwtSecret, pass)
	return &api{t: t, e: e, events: events}
}

// do sends a JSON request and decodes the JSON response into a map.
func (a *api) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func (a *api) login(email, password string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code, body)
	return body["access"].(map[string]any)["token"].(string)
}

func (a *api) register(email string) (token string, clientID float64) {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/v1/auth/register", "", echo.Map{
		"email": email, "password": "s3cret-pass", "name": "Camila Soto", "phone": "+56 2 2345 6789",
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	user := body["user"].(map[string]any)
	return body["access"].(map[string]any)["token"].(string), user["client_id"].(float64)
}

func itemOf(body map[string]any) map[string]any {
	m, _ := body["item"].(map[string]any)
	return m
}

func (a *api) createPackage(admin string, price int) float64 {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/v1/packages", admin, echo.Map{
		"name": "Atacama Stars", "destination": "San Pedro de Atacama",
		"duration_days": 4, "price_cents": price, "includes": []string{"transfer", "hostel"},
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	return itemOf(body)["id"].(float64)
}

func TestHealth(t *testing.T) {
	a := newAPI(t)
	code, body := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestBookingAndPaymentFlow(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@tours.test", "admin-password")
	pkgID := a.createPackage(admin, 45000)

	code, body := a.do(http.MethodGet, "/v1/packages", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])

	client, clientID := a.register("camila@example.com")

	code, body = a.do(http.MethodPost, "/v1/reservations", client, echo.Map{
		"package_id": pkgID, "travel_date": "2026-12-01", "headcount": 3,
	})
	require.Equal(t, http.StatusCreated, code, body)
	res := itemOf(body)
	assert.EqualValues(t, 135000, res["total_cents"])
	assert.Equal(t, "pending", res["status"])
	assert.Equal(t, clientID, res["client_id"])
	resPath := "/v1/reservations/" + jsonID(res["id"])

	code, body = a.do(http.MethodGet, resPath+"/payment", client, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["found"])
	assert.Nil(t, body["item"])

	code, body = a.do(http.MethodPost, resPath+"/payment", client, echo.Map{"amount_cents": 134999, "method": "card"})
	assert.Equal(t, http.StatusBadRequest, code, body)

	code, body = a.do(http.MethodPost, resPath+"/payment", client, echo.Map{"amount_cents": 135000, "method": "card", "status": "approved"})
	assert.Equal(t, http.StatusForbidden, code, body)

	code, body = a.do(http.MethodPost, resPath+"/payment", client, echo.Map{"amount_cents": 135000, "method": "card"})
	require.Equal(t, http.StatusCreated, code, body)
	pay := itemOf(body)
	assert.Equal(t, "pending", pay["status"])
	payPath := "/v1/payments/" + jsonID(pay["id"])

	code, _ = a.do(http.MethodPost, resPath+"/payment", client, echo.Map{"amount_cents": 135000, "method": "cash"})
	assert.Equal(t, http.StatusConflict, code)

	code, body = a.do(http.MethodGet, resPath+"/payment-status", client, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pending", itemOf(body)["payment_state"])

	code, _ = a.do(http.MethodPut, payPath+"/status", client, echo.Map{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, code)

	code, body = a.do(http.MethodPut, payPath+"/status", admin, echo.Map{"status": "approved"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "confirmed", itemOf(body)["reservation"].(map[string]any)["status"])
	assert.Equal(t, 1, a.events.n)

	code, body = a.do(http.MethodGet, resPath+"/payment-status", client, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "paid", itemOf(body)["payment_state"])

	code, body = a.do(http.MethodGet, "/v1/clients/"+jsonID(clientID)+"/reservations", client, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
}

func TestClientCannotSeeOtherClients(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@tours.test", "admin-password")
	pkgID := a.createPackage(admin, 1000)

	owner, _ := a.register("owner@example.com")
	other, otherID := a.register("other@example.com")

	code, body := a.do(http.MethodPost, "/v1/reservations", owner, echo.Map{
		"package_id": pkgID, "travel_date": "2026-11-15", "headcount": 1,
	})
	require.Equal(t, http.StatusCreated, code, body)
	resPath := "/v1/reservations/" + jsonID(itemOf(body)["id"])

	code, _ = a.do(http.MethodGet, resPath, other, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodPost, resPath+"/payment", other, echo.Map{"amount_cents": 1000, "method": "cash"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/v1/reservations", owner, echo.Map{
		"client_id": otherID, "package_id": pkgID, "travel_date": "2026-11-15", "headcount": 1,
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, "/v1/reservations", owner, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, resPath, admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestReservationValidation(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@tours.test", "admin-password")
	pkgID := a.createPackage(admin, 1000)
	client, _ := a.register("v@example.com")

	cases := []struct {
		name string
		body echo.Map
		want int
	}{
		{"zero headcount", echo.Map{"package_id": pkgID, "travel_date": "2026-11-15", "headcount": 0}, http.StatusBadRequest},
		{"bad date", echo.Map{"package_id": pkgID, "travel_date": "15/11/2026", "headcount": 1}, http.StatusBadRequest},
		{"unknown package", echo.Map{"package_id": 999, "travel_date": "2026-11-15", "headcount": 1}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := a.do(http.MethodPost, "/v1/reservations", client, tc.body)
			assert.Equal(t, tc.want, code, body)
		})
	}

	code, _ := a.do(http.MethodPut, "/v1/packages/"+jsonID(pkgID), admin, echo.Map{
		"name": "Atacama Stars", "destination": "San Pedro de Atacama",
		"duration_days": 4, "price_cents": 1000, "available": false,
	})
	require.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodPost, "/v1/reservations", client, echo.Map{"package_id": pkgID, "travel_date": "2026-11-15", "headcount": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestAuthRequired(t *testing.T) {
	a := newAPI(t)
	code, _ := a.do(http.MethodGet, "/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(http.MethodPost, "/v1/packages", "", echo.Map{"name": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)

	token, _ := a.register("me@example.com")
	code, body := a.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "me@example.com", body["user"].(map[string]any)["email"])

	code, body = a.do(http.MethodGet, "/v1/me/client", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Camila Soto", itemOf(body)["name"])

	admin := a.login("admin@tours.test", "admin-password")
	code, _ = a.do(http.MethodGet, "/v1/me/client", admin, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/v1/auth/login", "", echo.Map{"email": "me@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func jsonID(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}

func TestPackageItinerary(t *testing.T) {
	a := newAPI(t)
	admin := a.login("admin@tours.test", "admin-password")
	pkgID := a.createPackage(admin, 5000)

	for _, day := range []int{2, 1} {
		code, body := a.do(http.MethodPost, "/v1/itineraries", admin, echo.Map{
			"package_id": pkgID, "day": day, "activities": []string{"stargazing"}, "description": "night tour",
		})
		require.Equal(t, http.StatusCreated, code, body)
	}

	code, body := a.do(http.MethodGet, "/v1/packages/"+jsonID(pkgID)+"/itinerary", "", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(2), body["count"])
	days := body["items"].([]any)
	first := days[0].(map[string]any)
	assert.Equal(t, float64(1), first["day"])
	assert.Equal(t, float64(2), days[1].(map[string]any)["day"])
	assert.Equal(t, "Atacama Stars", first["package"].(map[string]any)["name"])

	code, body = a.do(http.MethodGet, "/v1/itineraries/"+jsonID(first["id"]), "", nil)
	assert.Equal(t, http.StatusOK, code, body)

	code, _ = a.do(http.MethodGet, "/v1/packages/999/itinerary", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/v1/itineraries", admin, echo.Map{"package_id": pkgID, "day": 1})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = a.do(http.MethodPost, "/v1/itineraries", admin, echo.Map{"package_id": pkgID, "day": 9})
	assert.Equal(t, http.StatusBadRequest, code)

	client, _ := a.register("viajera@example.com")
	code, _ = a.do(http.MethodPost, "/v1/itineraries", client, echo.Map{"package_id": pkgID, "day": 3})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPost, "/v1/itineraries", "", echo.Map{"package_id": pkgID, "day": 3})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodDelete, "/v1/itineraries/"+jsonID(first["id"]), admin, nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, body = a.do(http.MethodGet, "/v1/packages/"+jsonID(pkgID)+"/itinerary", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])
}
