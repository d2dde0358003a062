package middleware

import (
	"fmt"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// RBAC lets through callers whose role is one of roles. It reads the identity
// set by Auth; without one the request is unauthenticated.
func RBAC(roles ...string) echo.MiddlewareFunc {
	roles = slices.Clone(roles)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(KeyIdentity).(domain.Identity)
			if !ok {
				return domain.ErrUnauthenticated
			}
			if !slices.Contains(roles, id.Role) {
				return fmt.Errorf("%w: role %q may not %s %s", domain.ErrForbidden, id.Role, c.Request().Method, c.Path())
			}
			return next(c)
		}
	}
}

// Managers admits admins and superadmins.
func Managers() echo.MiddlewareFunc {
	return RBAC(domain.RoleAdmin, domain.RoleSuperAdmin)
}
