package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/api/middleware"
	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// identity extracts the caller injected by the Auth middleware. A missing or
// incomplete identity means the route was mounted without Auth.
func identity(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get(middleware.KeyIdentity).(domain.Identity)
	if !ok || id.UserID == "" || id.Role == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}

// queryInt reads a non-negative integer query parameter. Anything else is 0.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
