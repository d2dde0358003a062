package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/api/metrics"
	"github.com/monitorpelanggan/billing-monitor/internal/api/middleware"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// CookieOptions controls the session cookie set on login.
type CookieOptions struct {
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieOptions
}

func NewAuthHandler(authService ports.AuthService, cookie CookieOptions) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Login authenticates a user, sets the session cookie and returns the user.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()

	c.SetCookie(h.sessionCookie(token, h.cookie.TTL))
	return c.JSON(http.StatusOK, loginResponse{Message: "Login successful", Token: token, User: user})
}

// Logout revokes the current session and clears the cookie.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), who.SessionID); err != nil {
		return err
	}

	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// Me returns the logged-in user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	who, err := identity(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Me(c.Request().Context(), who.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// sessionCookie builds the session cookie. A negative ttl deletes it.
func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	switch {
	case ttl < 0:
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
	case ttl > 0:
		ck.MaxAge = int(ttl.Seconds())
	}
	return ck
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInactiveUser):
		return "inactive"
	}
	return "error"
}
