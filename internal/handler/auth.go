package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/tour-booking/internal/service"
)

// AuthHandler exposes registration and session endpoints.
type AuthHandler struct {
	Auth *service.AuthService
	log  *logrus.Entry
}

func NewAuthHandler(auth *service.AuthService, log *logrus.Logger) *AuthHandler {
	if auth == nil {
		panic("nil auth service passed to NewAuthHandler")
	}
	return &AuthHandler{Auth: auth, log: log.WithField("handler", "auth")}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    service.SessionUser `json:"user"`
	Access  tokenPart           `json:"access"`
	Refresh tokenPart           `json:"refresh"`
}

func sessionResp(s *service.Session) authResp {
	return authResp{
		User:    s.User,
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp},
	}
}

// Register handles POST /v1/auth/register.  The new user is always a
// CLIENT with a client profile built from the same body.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, sessionResp(s))
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// Refresh handles POST /v1/auth/refresh and rotates the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, sessionResp(s))
}

// RefreshAccess handles POST /v1/auth/refresh-access.  The refresh token
// stays valid.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	access, err := h.Auth.RefreshAccess(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access": tokenPart{Token: access.Token, Expires: access.Exp}})
}

// Logout handles POST /v1/auth/logout.  With a refresh_token in the body
// only that token is revoked, otherwise every token of the caller.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, caller(c).UserID, req.RefreshToken); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Auth.Me(ctx, caller(c).UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
