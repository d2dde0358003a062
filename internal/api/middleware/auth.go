package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "session"

// Context keys set by Auth.
const (
	KeyIdentity  = "identity"
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyRole      = "role"
	KeyName      = "name"
	KeySessionID = "session_id"
)

// Authenticator verifies a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// Auth accepts the session cookie or an Authorization bearer token and
// injects the caller identity into the context.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := tokenFrom(c)
			if err != nil {
				return err
			}

			id, err := authn.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
				}
				return err
			}

			c.Set(KeyIdentity, id)
			c.Set(KeyUserID, id.UserID)
			c.Set(KeyUsername, id.Username)
			c.Set(KeyRole, id.Role)
			c.Set(KeyName, id.Name)
			c.Set(KeySessionID, id.SessionID)

			return next(c)
		}
	}
}

func tokenFrom(c echo.Context) (string, error) {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
		}
		return parts[1], nil
	}
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
}
