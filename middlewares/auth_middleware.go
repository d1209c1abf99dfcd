package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/schooldesk/schooldesk/session"
)

const identityKey = "identity"

// Identity is the explicit per-request authentication context. Handlers read
// it via GetIdentity instead of touching the session store.
type Identity struct {
	UserID    uint
	Username  string
	Role      string
	CSRFToken string
	SessionID string
}

// GetIdentity returns the identity attached by RequireSession.
func GetIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	return id, ok
}

// SetIdentity attaches an identity to the request context. RequireSession
// calls this; tests use it to impersonate a caller.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

func unauthenticated(c echo.Context) error {
	// preserve the originally requested resource for post-login redirect
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]any{
		"error": "UNAUTHENTICATED",
		"next":  c.Request().RequestURI,
	})
}

// RequireSession resolves the session cookie, enforces the idle timeout and
// attaches the caller's Identity to the request context. A rotated session id
// is re-set on the response cookie transparently.
func RequireSession(mgr *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(mgr.CookieName())
			if err != nil || cookie.Value == "" {
				return unauthenticated(c)
			}

			id, data, err := mgr.Resolve(c.Request().Context(), cookie.Value)
			if err == session.ErrNoSession || err == session.ErrExpired {
				c.SetCookie(mgr.ExpiredCookie())
				return unauthenticated(c)
			}
			if err != nil {
				c.Logger().Error(err)
				return echo.NewHTTPError(http.StatusInternalServerError, map[string]any{"error": "STORAGE_UNAVAILABLE"})
			}
			if id != cookie.Value {
				c.SetCookie(mgr.Cookie(id))
			}

			SetIdentity(c, Identity{
				UserID:    data.UserID,
				Username:  data.Username,
				Role:      data.Role,
				CSRFToken: data.CSRFToken,
				SessionID: id,
			})
			return next(c)
		}
	}
}
