package middlewares

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const csrfHeader = "X-CSRF-Token"

// CSRFOK compares a supplied token against the session-bound one in constant
// time. Empty supplied tokens never match.
func CSRFOK(supplied, want string) bool {
	if supplied == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(supplied), []byte(want)) == 1
}

// RequireCSRF rejects mutating requests whose CSRF token does not match the
// one bound to the session. The token is taken from the X-CSRF-Token header
// or, for form posts, the csrf_token field. Fails closed.
func RequireCSRF() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			ident, ok := GetIdentity(c)
			if !ok {
				return unauthenticated(c)
			}
			supplied := c.Request().Header.Get(csrfHeader)
			if supplied == "" {
				supplied = c.FormValue("csrf_token")
			}
			if !CSRFOK(supplied, ident.CSRFToken) {
				return echo.NewHTTPError(http.StatusForbidden, map[string]any{"error": "CSRF_TOKEN_MISMATCH"})
			}
			return next(c)
		}
	}
}
