package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schooldesk/schooldesk/models"
)

// RoleSatisfies is the single place where the administrator override lives:
// an admin passes every role check.
func RoleSatisfies(have, want string) bool {
	return have == want || have == models.RoleAdmin
}

// RequireRole gates a route group by role. The response carries no detail
// about why access was denied.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := GetIdentity(c)
			if !ok {
				return unauthenticated(c)
			}
			if !RoleSatisfies(ident.Role, role) {
				return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "FORBIDDEN"})
			}
			return next(c)
		}
	}
}
